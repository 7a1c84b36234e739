package app

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker_bot/internal/domain/operation"

	"github.com/sirupsen/logrus"
)

// RegularService drives the daily jobs: it spawns today's instances of
// regular operations and reminds members about unconfirmed receipts.
type RegularService struct {
	templates operation.TemplateStore
	instances operation.InstanceStore
	companies *CompanyService
	spawner   *spawner
	notifier  Notifier
	clock     Clock
	log       *logrus.Entry
}

func NewRegularService(
	templates operation.TemplateStore,
	instances operation.InstanceStore,
	companies *CompanyService,
	suggester operation.CategorySuggester,
	notifier Notifier,
	clock Clock,
	log *logrus.Entry,
) *RegularService {
	return &RegularService{
		templates: templates,
		instances: instances,
		companies: companies,
		spawner:   &spawner{instances: instances, suggester: suggester, log: log},
		notifier:  notifier,
		clock:     clock,
		log:       log,
	}
}

// MaterializeAll creates today's instance for every template whose rule fires
// today and that has not produced one yet. Running it twice a day is harmless.
// It returns the number of created instances; per-template failures are
// logged, joined and returned after the sweep.
func (s *RegularService) MaterializeAll(ctx context.Context) (int, error) {
	now := s.clock.Now()
	from := startOfDay(now)
	to := from.AddDate(0, 0, 1)

	companies, err := s.companies.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list companies: %w", err)
	}

	var (
		created int
		errs    []error
	)
	for _, comp := range companies {
		tpls, err := s.templates.ListTemplates(ctx, comp.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("company %d: %w", comp.ID, err))
			continue
		}
		for _, tpl := range tpls {
			logCtx := s.log.WithFields(logrus.Fields{"company_id": comp.ID, "template_id": tpl.ID})

			draft, fires := operation.Materialize(*tpl, now)
			if !fires {
				continue
			}
			exists, err := s.instances.HasTemplateInstance(ctx, tpl.ID, from, to)
			if err != nil {
				errs = append(errs, fmt.Errorf("template %d: %w", tpl.ID, err))
				continue
			}
			if exists {
				logCtx.Debug("Instance for today already exists, skipping")
				continue
			}

			p, err := s.spawner.start(ctx, draft)
			if err != nil {
				logCtx.WithError(err).Error("Failed to materialize regular operation")
				errs = append(errs, fmt.Errorf("template %d: %w", tpl.ID, err))
				continue
			}
			created++
			logCtx.WithField("operation_id", p.Instance.ID).Info("Regular operation materialized")
			s.notifyMembers(ctx, comp.ID, *p)
		}
	}
	return created, errors.Join(errs...)
}

// SendReceiptReminders re-sends the receipt question for today's regular
// instances that are still waiting for it.
func (s *RegularService) SendReceiptReminders(ctx context.Context) (int, error) {
	pending, err := s.instances.ListAwaitingReceipt(ctx, startOfDay(s.clock.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to list operations awaiting receipt: %w", err)
	}
	for _, inst := range pending {
		s.notifyMembers(ctx, inst.CompanyID, s.spawner.prompt(ctx, inst))
	}
	return len(pending), nil
}

func (s *RegularService) notifyMembers(ctx context.Context, companyID int64, p Prompt) {
	members, err := s.companies.Members(ctx, companyID)
	if err != nil {
		s.log.WithError(err).WithField("company_id", companyID).Error("Failed to list company members")
		return
	}
	for _, chatID := range members {
		if err := s.notifier.Notify(ctx, chatID, p); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"chat_id":      chatID,
				"operation_id": p.Instance.ID,
			}).Warn("Failed to deliver notification")
		}
	}
}
