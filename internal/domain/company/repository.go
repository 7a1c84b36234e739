package company

import "context"

// Repository persists users, companies and memberships.
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, telegramID int64) (*User, error)
	SelectCompany(ctx context.Context, telegramID, companyID int64) error

	// Create stores the company and makes its owner a member.
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id int64) (*Company, error)
	ListForUser(ctx context.Context, telegramID int64) ([]*Company, error)
	ListAll(ctx context.Context) ([]*Company, error)

	AddMember(ctx context.Context, companyID, telegramID int64) error
	IsMember(ctx context.Context, companyID, telegramID int64) (bool, error)
	ListMembers(ctx context.Context, companyID int64) ([]int64, error)
}
