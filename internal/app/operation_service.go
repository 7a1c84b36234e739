package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finance_tracker_bot/internal/domain/operation"
	"finance_tracker_bot/internal/domain/pagination"

	"github.com/sirupsen/logrus"
)

// ReceiptAnswer is the user's answer to "was the money received?".
type ReceiptAnswer int

const (
	ReceivedFull ReceiptAnswer = iota
	ReceivedPartial
	ReceivedNone
)

// Created is the outcome of a text command. Template is set for regular
// operations; Prompt is set when an instance was stored.
type Created struct {
	Template *operation.Template
	Prompt   *Prompt
}

// Page is one page of a paginated list plus its navigation buttons.
type Page[T any] struct {
	Items   []T
	Number  int
	MaxPage int
	Total   int
	Buttons []pagination.Button
}

// CategoryTotal is the received amount of one expense category.
type CategoryTotal struct {
	Category operation.Category
	Amount   int64
}

// CurrencySummary holds the month totals of one currency.
type CurrencySummary struct {
	Currency    operation.Currency
	Income      int64
	Expense     int64
	ByCategory  []CategoryTotal
	DailyBudget int64 // balance spread over the days left in the month
}

func (cs CurrencySummary) Balance() int64 {
	return cs.Income - cs.Expense
}

// Summary is the month-to-date report of a company.
type Summary struct {
	From       time.Time
	To         time.Time
	DaysLeft   int // today included
	Currencies []CurrencySummary
}

// OperationService runs chat commands against operations of the user's
// selected company.
type OperationService struct {
	templates operation.TemplateStore
	instances operation.InstanceStore
	companies *CompanyService
	spawner   *spawner
	clock     Clock
	windower  *pagination.Windower
	pageSize  int
	log       *logrus.Entry
}

func NewOperationService(
	templates operation.TemplateStore,
	instances operation.InstanceStore,
	companies *CompanyService,
	suggester operation.CategorySuggester,
	clock Clock,
	windower *pagination.Windower,
	pageSize int,
	log *logrus.Entry,
) *OperationService {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &OperationService{
		templates: templates,
		instances: instances,
		companies: companies,
		spawner:   &spawner{instances: instances, suggester: suggester, log: log},
		clock:     clock,
		windower:  windower,
		pageSize:  pageSize,
		log:       log,
	}
}

// CreateFromText handles a free-text message. ok is false when the text is
// not an operation at all; such messages are ignored.
func (s *OperationService) CreateFromText(ctx context.Context, userID int64, text string) (res Created, ok bool, err error) {
	parsed, ok, err := operation.ParseText(text)
	if !ok {
		return Created{}, false, nil
	}
	if err != nil {
		return Created{}, true, err
	}

	comp, err := s.companies.Current(ctx, userID)
	if err != nil {
		return Created{}, true, err
	}
	now := s.clock.Now()
	logCtx := s.log.WithFields(logrus.Fields{"user_id": userID, "company_id": comp.ID})

	if !parsed.IsRegular() {
		p, err := s.spawner.start(ctx, operation.NewInstance(comp.ID, userID, parsed, now))
		if err != nil {
			return Created{}, true, err
		}
		logCtx.WithField("operation_id", p.Instance.ID).Info("Operation created")
		return Created{Prompt: p}, true, nil
	}

	tpl := operation.NewTemplate(comp.ID, userID, parsed, now)
	if err := s.templates.CreateTemplate(ctx, &tpl); err != nil {
		return Created{}, true, fmt.Errorf("failed to store regular operation: %w", err)
	}
	logCtx.WithFields(logrus.Fields{"template_id": tpl.ID, "rule": tpl.Rule.Kind}).Info("Regular operation created")

	res = Created{Template: &tpl}
	if draft, fires := operation.Materialize(tpl, now); fires {
		p, err := s.spawner.start(ctx, draft)
		if err != nil {
			return res, true, err
		}
		res.Prompt = p
	}
	return res, true, nil
}

// SelectCategory resolves a pending category and returns the next prompt.
func (s *OperationService) SelectCategory(ctx context.Context, userID, instanceID int64, slug string) (*Prompt, error) {
	inst, err := s.modify(ctx, userID, instanceID, func(i operation.Instance) (operation.Instance, error) {
		return operation.SelectCategory(i, operation.Category(slug))
	})
	if err != nil {
		return nil, err
	}
	p := s.spawner.prompt(ctx, inst)
	return &p, nil
}

// MoreCategories lists the categories not offered yet for a pending instance.
func (s *OperationService) MoreCategories(ctx context.Context, userID, instanceID int64, shown []operation.Category) (*operation.Instance, []operation.Category, error) {
	inst, err := s.GetInstance(ctx, userID, instanceID)
	if err != nil {
		return nil, nil, err
	}
	if inst.Status != operation.StatusPendingCategory {
		return nil, nil, fmt.Errorf("%w: operation %d already has a category", operation.ErrInvalidTransition, inst.ID)
	}
	return inst, operation.RemainingCategories(inst.Type, shown), nil
}

// Receive applies the answer to the receipt question.
func (s *OperationService) Receive(ctx context.Context, userID, instanceID int64, answer ReceiptAnswer) (*operation.Instance, error) {
	var fn func(operation.Instance) (operation.Instance, error)
	switch answer {
	case ReceivedFull:
		fn = operation.ReceiveFull
	case ReceivedPartial:
		fn = operation.ReceivePartial
	case ReceivedNone:
		fn = operation.ReceiveNone
	default:
		return nil, fmt.Errorf("unknown receipt answer %d", answer)
	}
	return s.modify(ctx, userID, instanceID, fn)
}

// TopUp adds a reply amount to a partially received instance.
func (s *OperationService) TopUp(ctx context.Context, userID, instanceID int64, text string) (*operation.Instance, error) {
	amount, err := operation.ParseTopUp(text)
	if err != nil {
		return nil, err
	}
	at := s.clock.Now()
	return s.modify(ctx, userID, instanceID, func(i operation.Instance) (operation.Instance, error) {
		return operation.TopUp(i, amount, at)
	})
}

// Reject declines a fresh instance and removes it.
func (s *OperationService) Reject(ctx context.Context, userID, instanceID int64) error {
	return s.remove(ctx, userID, instanceID, operation.Reject)
}

// DeleteInstance removes an instance from the history.
func (s *OperationService) DeleteInstance(ctx context.Context, userID, instanceID int64) error {
	return s.remove(ctx, userID, instanceID, operation.Delete)
}

func (s *OperationService) remove(ctx context.Context, userID, instanceID int64, fn func(operation.Instance) (operation.Instance, error)) error {
	if _, err := s.modify(ctx, userID, instanceID, fn); err != nil {
		return err
	}
	if err := s.instances.DeleteInstance(ctx, instanceID); err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "operation_id": instanceID}).Info("Operation removed")
	return nil
}

func (s *OperationService) GetInstance(ctx context.Context, userID, instanceID int64) (*operation.Instance, error) {
	inst, err := s.instances.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if err := s.companies.Authorize(ctx, userID, inst.CompanyID); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *OperationService) GetTemplate(ctx context.Context, userID, templateID int64) (*operation.Template, error) {
	tpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if err := s.companies.Authorize(ctx, userID, tpl.CompanyID); err != nil {
		return nil, err
	}
	return tpl, nil
}

// DeleteTemplate stops a regular operation. Instances it already produced stay.
func (s *OperationService) DeleteTemplate(ctx context.Context, userID, templateID int64) error {
	if _, err := s.GetTemplate(ctx, userID, templateID); err != nil {
		return err
	}
	if err := s.templates.DeleteTemplate(ctx, templateID); err != nil {
		return fmt.Errorf("failed to delete regular operation: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "template_id": templateID}).Info("Regular operation removed")
	return nil
}

// ListInstances pages through the history of the selected company, newest first.
func (s *OperationService) ListInstances(ctx context.Context, userID int64, page int) (*Page[*operation.Instance], error) {
	comp, err := s.companies.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.instances.CountInstances(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count operations: %w", err)
	}
	p := s.page(total, page)
	items, err := s.instances.ListInstancesPage(ctx, comp.ID, s.pageSize, (p.Number-1)*s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return &Page[*operation.Instance]{Items: items, Number: p.Number, MaxPage: p.MaxPage, Total: total, Buttons: p.Buttons}, nil
}

// ListTemplates pages through the regular operations of the selected company.
func (s *OperationService) ListTemplates(ctx context.Context, userID int64, page int) (*Page[*operation.Template], error) {
	comp, err := s.companies.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.templates.CountTemplates(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count regular operations: %w", err)
	}
	p := s.page(total, page)
	items, err := s.templates.ListTemplatesPage(ctx, comp.ID, s.pageSize, (p.Number-1)*s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list regular operations: %w", err)
	}
	return &Page[*operation.Template]{Items: items, Number: p.Number, MaxPage: p.MaxPage, Total: total, Buttons: p.Buttons}, nil
}

type pageInfo struct {
	Number  int
	MaxPage int
	Buttons []pagination.Button
}

func (s *OperationService) page(total, requested int) pageInfo {
	maxPage, offset := pagination.Paginate(total, s.pageSize, requested)
	number := offset/s.pageSize + pagination.MinPage
	info := pageInfo{Number: number, MaxPage: maxPage}
	if maxPage > pagination.MinPage {
		info.Buttons = s.windower.Window(number, maxPage)
	}
	return info
}

// Future forecasts the regular operations of the rest of the month.
func (s *OperationService) Future(ctx context.Context, userID int64) ([]operation.Instance, error) {
	comp, err := s.companies.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	tpls, err := s.templates.ListTemplates(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list regular operations: %w", err)
	}
	values := make([]operation.Template, 0, len(tpls))
	for _, tpl := range tpls {
		values = append(values, *tpl)
	}
	return operation.ProjectAll(values, s.clock.Now()), nil
}

// Today lists the instances created today.
func (s *OperationService) Today(ctx context.Context, userID int64) ([]*operation.Instance, error) {
	comp, err := s.companies.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := startOfDay(s.clock.Now())
	items, err := s.instances.ListInstancesBetween(ctx, comp.ID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list today's operations: %w", err)
	}
	return items, nil
}

// Stats sums the received amounts of the current month per currency.
func (s *OperationService) Stats(ctx context.Context, userID int64) (*Summary, error) {
	comp, err := s.companies.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	from := startOfMonth(now)
	to := from.AddDate(0, 1, 0)
	items, err := s.instances.ListInstancesBetween(ctx, comp.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list month operations: %w", err)
	}
	summary := summarize(items)
	summary.From, summary.To = from, to
	summary.DaysLeft = daysLeftInMonth(now)
	for i := range summary.Currencies {
		cs := &summary.Currencies[i]
		cs.DailyBudget = cs.Balance() / int64(summary.DaysLeft)
	}
	return summary, nil
}

func summarize(items []*operation.Instance) *Summary {
	byCurrency := make(map[operation.Currency]*CurrencySummary)
	byCategory := make(map[operation.Currency]map[operation.Category]int64)
	for _, inst := range items {
		received := inst.Received()
		if received == 0 {
			continue
		}
		cs, ok := byCurrency[inst.Currency]
		if !ok {
			cs = &CurrencySummary{Currency: inst.Currency}
			byCurrency[inst.Currency] = cs
			byCategory[inst.Currency] = make(map[operation.Category]int64)
		}
		if inst.Type == operation.TypeIncome {
			cs.Income += received
			continue
		}
		cs.Expense += received
		byCategory[inst.Currency][inst.Category] += received
	}

	summary := &Summary{}
	for cur, cs := range byCurrency {
		for c, amount := range byCategory[cur] {
			cs.ByCategory = append(cs.ByCategory, CategoryTotal{Category: c, Amount: amount})
		}
		sort.Slice(cs.ByCategory, func(i, j int) bool {
			a, b := cs.ByCategory[i], cs.ByCategory[j]
			if a.Amount != b.Amount {
				return a.Amount > b.Amount
			}
			return a.Category < b.Category
		})
		summary.Currencies = append(summary.Currencies, *cs)
	}
	sort.Slice(summary.Currencies, func(i, j int) bool {
		return summary.Currencies[i].Currency < summary.Currencies[j].Currency
	})
	return summary
}

// modify checks membership, then applies fn through the store's atomic update.
func (s *OperationService) modify(ctx context.Context, userID, instanceID int64, fn func(operation.Instance) (operation.Instance, error)) (*operation.Instance, error) {
	if _, err := s.GetInstance(ctx, userID, instanceID); err != nil {
		return nil, err
	}
	return s.instances.Modify(ctx, instanceID, fn)
}
