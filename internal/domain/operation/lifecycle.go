package operation

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle state of an instance.
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusPendingCategory   Status = "PENDING_CATEGORY"
	StatusPendingReceipt    Status = "PENDING_RECEIPT"
	StatusPartiallyReceived Status = "PARTIALLY_RECEIVED"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusDeleted           Status = "DELETED"
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusDeleted:
		return true
	}
	return false
}

// Begin moves a draft to its first persisted state: expenses without a
// category wait for one, everything else waits for receipt confirmation.
func Begin(inst Instance) (Instance, error) {
	if inst.Status != StatusDraft && inst.Status != "" {
		return inst, transitionError(inst, "begin")
	}
	if inst.Type == TypeExpense && inst.Category == "" {
		inst.Status = StatusPendingCategory
	} else {
		inst.Status = StatusPendingReceipt
	}
	return checked(inst)
}

// SelectCategory resolves a pending category.
func SelectCategory(inst Instance, c Category) (Instance, error) {
	if inst.Status != StatusPendingCategory {
		return inst, transitionError(inst, "select category")
	}
	if _, err := ParseCategory(inst.Type, string(c)); err != nil {
		return inst, err
	}
	inst.Category = c
	inst.Status = StatusPendingReceipt
	return checked(inst)
}

// ReceiveFull marks the whole amount as received.
func ReceiveFull(inst Instance) (Instance, error) {
	if inst.Status != StatusPendingReceipt && inst.Status != StatusPartiallyReceived {
		return inst, transitionError(inst, "receive full")
	}
	inst.ReceivedAmount = sql.NullInt64{Int64: inst.Amount, Valid: true}
	inst.IsApproved = true
	inst.Status = StatusApproved
	return checked(inst)
}

// ReceivePartial switches to collecting numeric top-ups. Repeating it keeps
// the already collected total.
func ReceivePartial(inst Instance) (Instance, error) {
	if inst.Status != StatusPendingReceipt && inst.Status != StatusPartiallyReceived {
		return inst, transitionError(inst, "receive partial")
	}
	inst.Status = StatusPartiallyReceived
	return checked(inst)
}

// ReceiveNone records that nothing arrived; the instance stays pending and unapproved.
func ReceiveNone(inst Instance) (Instance, error) {
	if inst.Status != StatusPendingReceipt {
		return inst, transitionError(inst, "receive none")
	}
	inst.IsApproved = false
	return checked(inst)
}

// TopUpDeadline is the last moment a top-up for inst is accepted:
// 23:59:59 of its creation day in the creation time zone.
func TopUpDeadline(inst Instance) time.Time {
	c := inst.CreatedAt
	return time.Date(c.Year(), c.Month(), c.Day(), 23, 59, 59, 0, c.Location())
}

// TopUp adds amount to the received total. Reaching the full amount approves
// the instance.
func TopUp(inst Instance, amount int64, at time.Time) (Instance, error) {
	if inst.Status != StatusPartiallyReceived {
		return inst, transitionError(inst, "top up")
	}
	if at.After(TopUpDeadline(inst)) {
		return inst, ErrTopUpTooLate
	}
	if amount <= 0 {
		return inst, ErrInvalidTopUp
	}
	total := inst.Received() + amount
	if total > inst.Amount {
		return inst, fmt.Errorf("%w: %d left", ErrTopUpExceedsAmount, inst.Amount-inst.Received())
	}

	inst.ReceivedAmount = sql.NullInt64{Int64: total, Valid: true}
	if total == inst.Amount {
		inst.IsApproved = true
		inst.Status = StatusApproved
	}
	return checked(inst)
}

// ParseTopUp reads a top-up reply. Only positive integers are accepted.
func ParseTopUp(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrInvalidTopUp
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, ErrInvalidTopUp
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidTopUp
	}
	return n, nil
}

// Reject declines a freshly created operation.
func Reject(inst Instance) (Instance, error) {
	if inst.Status != StatusPendingCategory && inst.Status != StatusPendingReceipt {
		return inst, transitionError(inst, "reject")
	}
	inst.Status = StatusRejected
	return checked(inst)
}

// Delete is allowed from any non-terminal state and also from StatusApproved,
// so confirmed operations can be removed from the history.
func Delete(inst Instance) (Instance, error) {
	if inst.Status.IsTerminal() && inst.Status != StatusApproved {
		return inst, transitionError(inst, "delete")
	}
	inst.Status = StatusDeleted
	return inst, nil
}

func transitionError(inst Instance, action string) error {
	return fmt.Errorf("%w: cannot %s operation %d in state %s", ErrInvalidTransition, action, inst.ID, inst.Status)
}

func checked(inst Instance) (Instance, error) {
	if err := inst.Validate(); err != nil {
		return inst, err
	}
	return inst, nil
}
