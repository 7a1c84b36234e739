package operation

import (
	"context"
	"time"
)

// TemplateStore persists regular operations.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, tpl *Template) error
	GetTemplate(ctx context.Context, id int64) (*Template, error)
	DeleteTemplate(ctx context.Context, id int64) error
	ListTemplates(ctx context.Context, companyID int64) ([]*Template, error)
	ListTemplatesPage(ctx context.Context, companyID int64, limit, offset int) ([]*Template, error)
	CountTemplates(ctx context.Context, companyID int64) (int, error)
}

// InstanceStore persists concrete operations.
type InstanceStore interface {
	CreateInstance(ctx context.Context, inst *Instance) error
	GetInstance(ctx context.Context, id int64) (*Instance, error)
	// Modify loads the instance, applies fn and stores the result as one atomic
	// read-modify-write. When fn fails nothing is written.
	Modify(ctx context.Context, id int64, fn func(Instance) (Instance, error)) (*Instance, error)
	DeleteInstance(ctx context.Context, id int64) error
	ListInstancesPage(ctx context.Context, companyID int64, limit, offset int) ([]*Instance, error)
	CountInstances(ctx context.Context, companyID int64) (int, error)
	ListInstancesBetween(ctx context.Context, companyID int64, from, to time.Time) ([]*Instance, error)
	// HasTemplateInstance reports whether the template already spawned an
	// instance created in [from, to).
	HasTemplateInstance(ctx context.Context, templateID int64, from, to time.Time) (bool, error)
	// ListAwaitingReceipt returns template-spawned instances still waiting for
	// receipt confirmation, across all companies.
	ListAwaitingReceipt(ctx context.Context, createdFrom time.Time) ([]*Instance, error)
}
