package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"finance_tracker_bot/internal/domain/company"
	"finance_tracker_bot/internal/domain/operation"

	"github.com/sirupsen/logrus"
)

var kyiv = time.FixedZone("EET", 2*60*60)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type memCompanies struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]*company.User
	companies map[int64]*company.Company
	members   map[int64][]int64
}

func newMemCompanies() *memCompanies {
	return &memCompanies{
		users:     make(map[int64]*company.User),
		companies: make(map[int64]*company.Company),
		members:   make(map[int64][]int64),
	}
}

func (r *memCompanies) CreateUser(_ context.Context, u *company.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.TelegramID] = &cp
	return nil
}

func (r *memCompanies) GetUser(_ context.Context, telegramID int64) (*company.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[telegramID]
	if !ok {
		return nil, company.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memCompanies) SelectCompany(_ context.Context, telegramID, companyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[telegramID]
	if !ok {
		return company.ErrUserNotFound
	}
	u.SelectedCompanyID.Int64, u.SelectedCompanyID.Valid = companyID, true
	return nil
}

func (r *memCompanies) Create(_ context.Context, c *company.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.companies[c.ID] = &cp
	r.members[c.ID] = append(r.members[c.ID], c.OwnerID)
	return nil
}

func (r *memCompanies) GetByID(_ context.Context, id int64) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCompanies) ListForUser(_ context.Context, telegramID int64) ([]*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*company.Company
	for id, members := range r.members {
		for _, m := range members {
			if m == telegramID {
				cp := *r.companies[id]
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCompanies) ListAll(_ context.Context) ([]*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*company.Company, 0, len(r.companies))
	for _, c := range r.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCompanies) AddMember(_ context.Context, companyID, telegramID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[companyID] {
		if m == telegramID {
			return nil
		}
	}
	r.members[companyID] = append(r.members[companyID], telegramID)
	return nil
}

func (r *memCompanies) IsMember(_ context.Context, companyID, telegramID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[companyID] {
		if m == telegramID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCompanies) ListMembers(_ context.Context, companyID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.members[companyID]...), nil
}

type memOperations struct {
	mu        sync.Mutex
	nextID    int64
	templates map[int64]*operation.Template
	instances map[int64]*operation.Instance
}

func newMemOperations() *memOperations {
	return &memOperations{
		templates: make(map[int64]*operation.Template),
		instances: make(map[int64]*operation.Instance),
	}
}

func (s *memOperations) CreateTemplate(_ context.Context, tpl *operation.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	tpl.ID = s.nextID
	cp := *tpl
	s.templates[tpl.ID] = &cp
	return nil
}

func (s *memOperations) GetTemplate(_ context.Context, id int64) (*operation.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[id]
	if !ok {
		return nil, operation.ErrTemplateNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (s *memOperations) DeleteTemplate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return operation.ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}

func (s *memOperations) ListTemplates(_ context.Context, companyID int64) ([]*operation.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*operation.Template
	for _, tpl := range s.templates {
		if tpl.CompanyID == companyID {
			cp := *tpl
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memOperations) ListTemplatesPage(ctx context.Context, companyID int64, limit, offset int) ([]*operation.Template, error) {
	all, _ := s.ListTemplates(ctx, companyID)
	return window(all, limit, offset), nil
}

func (s *memOperations) CountTemplates(ctx context.Context, companyID int64) (int, error) {
	all, _ := s.ListTemplates(ctx, companyID)
	return len(all), nil
}

func (s *memOperations) CreateInstance(_ context.Context, inst *operation.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	inst.ID = s.nextID
	cp := *inst
	s.instances[inst.ID] = &cp
	return nil
}

func (s *memOperations) GetInstance(_ context.Context, id int64) (*operation.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, operation.ErrInstanceNotFound
	}
	cp := *inst
	return &cp, nil
}

func (s *memOperations) Modify(_ context.Context, id int64, fn func(operation.Instance) (operation.Instance, error)) (*operation.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, operation.ErrInstanceNotFound
	}
	next, err := fn(*inst)
	if err != nil {
		return nil, err
	}
	s.instances[id] = &next
	cp := next
	return &cp, nil
}

func (s *memOperations) DeleteInstance(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[id]; !ok {
		return operation.ErrInstanceNotFound
	}
	delete(s.instances, id)
	return nil
}

func (s *memOperations) listInstances(match func(*operation.Instance) bool) []*operation.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*operation.Instance
	for _, inst := range s.instances {
		if match(inst) {
			cp := *inst
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memOperations) ListInstancesPage(_ context.Context, companyID int64, limit, offset int) ([]*operation.Instance, error) {
	all := s.listInstances(func(i *operation.Instance) bool { return i.CompanyID == companyID })
	return window(all, limit, offset), nil
}

func (s *memOperations) CountInstances(_ context.Context, companyID int64) (int, error) {
	return len(s.listInstances(func(i *operation.Instance) bool { return i.CompanyID == companyID })), nil
}

func (s *memOperations) ListInstancesBetween(_ context.Context, companyID int64, from, to time.Time) ([]*operation.Instance, error) {
	return s.listInstances(func(i *operation.Instance) bool {
		return i.CompanyID == companyID && !i.CreatedAt.Before(from) && i.CreatedAt.Before(to)
	}), nil
}

func (s *memOperations) HasTemplateInstance(_ context.Context, templateID int64, from, to time.Time) (bool, error) {
	found := s.listInstances(func(i *operation.Instance) bool {
		return i.TemplateID.Valid && i.TemplateID.Int64 == templateID && !i.CreatedAt.Before(from) && i.CreatedAt.Before(to)
	})
	return len(found) > 0, nil
}

func (s *memOperations) ListAwaitingReceipt(_ context.Context, createdFrom time.Time) ([]*operation.Instance, error) {
	return s.listInstances(func(i *operation.Instance) bool {
		return i.TemplateID.Valid && i.Status == operation.StatusPendingReceipt && !i.CreatedAt.Before(createdFrom)
	}), nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type stubSuggester struct {
	ranked []operation.Category
	err    error
}

func (s stubSuggester) Suggest(context.Context, string, operation.Type) ([]operation.Category, error) {
	return s.ranked, s.err
}

type sentPrompt struct {
	chatID int64
	prompt Prompt
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentPrompt
}

func (n *recordingNotifier) Notify(_ context.Context, chatID int64, p Prompt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentPrompt{chatID: chatID, prompt: p})
	return nil
}
