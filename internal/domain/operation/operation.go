package operation

import (
	"database/sql"
	"fmt"
	"time"

	"finance_tracker_bot/internal/domain/recurrence"
)

// Type is the direction of money flow.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// TypeOf derives the operation type from a signed amount.
func TypeOf(signedAmount int64) Type {
	if signedAmount >= 0 {
		return TypeIncome
	}
	return TypeExpense
}

// Sign returns "+" for income and "-" for expense.
func (t Type) Sign() string {
	if t == TypeExpense {
		return "-"
	}
	return "+"
}

// Template is a regular operation: it spawns dated instances according to Rule.
// Corresponds to the 'operation_templates' table.
type Template struct {
	ID          int64
	CompanyID   int64
	CreatorID   int64 // Telegram chat ID of the author
	Amount      int64
	Currency    Currency
	Type        Type
	Description string
	Category    Category // empty when not chosen
	Rule        recurrence.Rule
	CreatedAt   time.Time
}

// Instance is a concrete, approvable transaction.
// Corresponds to the 'operations' table.
type Instance struct {
	ID             int64
	CompanyID      int64
	CreatorID      int64
	Amount         int64
	ReceivedAmount sql.NullInt64
	Currency       Currency
	Type           Type
	Description    string
	Category       Category
	IsApproved     bool
	Status         Status
	TemplateID     sql.NullInt64 // display only
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Received returns the received amount, zero when unset.
func (i Instance) Received() int64 {
	if !i.ReceivedAmount.Valid {
		return 0
	}
	return i.ReceivedAmount.Int64
}

// Validate reports invariant violations. A failure here is a programming error.
func (i Instance) Validate() error {
	if i.Amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvariant, i.Amount)
	}
	if i.ReceivedAmount.Valid {
		if i.ReceivedAmount.Int64 < 0 {
			return fmt.Errorf("%w: negative received amount %d", ErrInvariant, i.ReceivedAmount.Int64)
		}
		if i.ReceivedAmount.Int64 > i.Amount {
			return fmt.Errorf("%w: received %d exceeds amount %d", ErrInvariant, i.ReceivedAmount.Int64, i.Amount)
		}
	}
	if i.Status == StatusApproved && (!i.IsApproved || i.Received() != i.Amount) {
		return fmt.Errorf("%w: approved operation %d is not fully received", ErrInvariant, i.ID)
	}
	return nil
}

// NewInstance builds a draft instance from parsed text.
func NewInstance(companyID, creatorID int64, p Parsed, now time.Time) Instance {
	return Instance{
		CompanyID:   companyID,
		CreatorID:   creatorID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Type:        p.Type,
		Description: p.Description,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTemplate builds a template from parsed text carrying a recurrence rule.
func NewTemplate(companyID, creatorID int64, p Parsed, now time.Time) Template {
	return Template{
		CompanyID:   companyID,
		CreatorID:   creatorID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Type:        p.Type,
		Description: p.Description,
		Rule:        p.Rule,
		CreatedAt:   now,
	}
}
