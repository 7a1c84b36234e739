package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finance_tracker_bot/internal/domain/company"

	"github.com/sirupsen/logrus"
)

// CompanyService manages users, their companies and the selected company.
type CompanyService struct {
	repo company.Repository
	log  *logrus.Entry
}

func NewCompanyService(repo company.Repository, log *logrus.Entry) *CompanyService {
	return &CompanyService{repo: repo, log: log}
}

// Register makes sure the user exists. A new user gets a personal company,
// which becomes the selected one. created reports whether the user is new.
func (s *CompanyService) Register(ctx context.Context, telegramID int64, firstName, lastName string) (u *company.User, created bool, err error) {
	u, err = s.repo.GetUser(ctx, telegramID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, company.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	u = &company.User{TelegramID: telegramID, FirstName: firstName}
	if lastName != "" {
		u.LastName = sql.NullString{String: lastName, Valid: true}
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	personal := &company.Company{Name: company.PersonalName, OwnerID: telegramID}
	if err := s.repo.Create(ctx, personal); err != nil {
		return nil, false, fmt.Errorf("failed to create personal company: %w", err)
	}
	if err := s.repo.SelectCompany(ctx, telegramID, personal.ID); err != nil {
		return nil, false, fmt.Errorf("failed to select personal company: %w", err)
	}
	u.SelectedCompanyID = sql.NullInt64{Int64: personal.ID, Valid: true}

	s.log.WithFields(logrus.Fields{"user_id": telegramID, "company_id": personal.ID}).Info("User registered")
	return u, true, nil
}

// Create adds a company owned by the user and selects it.
func (s *CompanyService) Create(ctx context.Context, userID int64, name string) (*company.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, company.ErrEmptyName
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	c := &company.Company{Name: name, OwnerID: userID}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	if err := s.repo.SelectCompany(ctx, userID, c.ID); err != nil {
		return nil, fmt.Errorf("failed to select company: %w", err)
	}
	return c, nil
}

// List returns the user's companies and the ID of the selected one (0 if none).
func (s *CompanyService) List(ctx context.Context, userID int64) ([]*company.Company, int64, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	companies, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	var selected int64
	if u.SelectedCompanyID.Valid {
		selected = u.SelectedCompanyID.Int64
	}
	return companies, selected, nil
}

func (s *CompanyService) Select(ctx context.Context, userID, companyID int64) (*company.Company, error) {
	if err := s.Authorize(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if err := s.repo.SelectCompany(ctx, userID, companyID); err != nil {
		return nil, fmt.Errorf("failed to select company: %w", err)
	}
	return s.repo.GetByID(ctx, companyID)
}

// AddMember lets the owner share a company with another registered user.
func (s *CompanyService) AddMember(ctx context.Context, ownerID, companyID, memberID int64) (*company.Company, error) {
	c, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, company.ErrNotOwner
	}
	if _, err := s.repo.GetUser(ctx, memberID); err != nil {
		return nil, err
	}
	if err := s.repo.AddMember(ctx, companyID, memberID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return c, nil
}

// Current returns the company the user works in.
func (s *CompanyService) Current(ctx context.Context, userID int64) (*company.Company, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.SelectedCompanyID.Valid {
		return nil, company.ErrNoCompany
	}
	return s.repo.GetByID(ctx, u.SelectedCompanyID.Int64)
}

// Authorize fails with company.ErrNotMember unless the user belongs to the company.
func (s *CompanyService) Authorize(ctx context.Context, userID, companyID int64) error {
	ok, err := s.repo.IsMember(ctx, companyID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return company.ErrNotMember
	}
	return nil
}

func (s *CompanyService) Members(ctx context.Context, companyID int64) ([]int64, error) {
	return s.repo.ListMembers(ctx, companyID)
}

func (s *CompanyService) All(ctx context.Context) ([]*company.Company, error) {
	return s.repo.ListAll(ctx)
}
