package operation

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kyiv = time.FixedZone("EET", 2*60*60)

func draft(t Type, amount int64, category Category) Instance {
	return Instance{
		ID:          1,
		Amount:      amount,
		Type:        t,
		Currency:    CurrencyUAH,
		Description: "test",
		Category:    category,
		Status:      StatusDraft,
		CreatedAt:   time.Date(2024, time.March, 5, 9, 0, 0, 0, kyiv),
	}
}

func TestBegin(t *testing.T) {
	tests := []struct {
		name string
		inst Instance
		want Status
	}{
		{"expense without category", draft(TypeExpense, 100, ""), StatusPendingCategory},
		{"expense with category", draft(TypeExpense, 100, CategoryFood), StatusPendingReceipt},
		{"income without category", draft(TypeIncome, 100, ""), StatusPendingReceipt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Begin(tt.inst)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.False(t, got.IsApproved)
		})
	}

	_, err := Begin(Instance{Status: StatusApproved})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelectCategory(t *testing.T) {
	inst, err := Begin(draft(TypeExpense, 100, ""))
	require.NoError(t, err)

	_, err = SelectCategory(inst, CategorySalary)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	got, err := SelectCategory(inst, CategoryFood)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReceipt, got.Status)
	assert.Equal(t, CategoryFood, got.Category)

	_, err = SelectCategory(got, CategoryHealth)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func pendingReceipt(t *testing.T, amount int64) Instance {
	t.Helper()
	inst, err := Begin(draft(TypeExpense, amount, CategoryHouse))
	require.NoError(t, err)
	require.Equal(t, StatusPendingReceipt, inst.Status)
	return inst
}

func TestReceiveFull(t *testing.T) {
	got, err := ReceiveFull(pendingReceipt(t, 250))
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.True(t, got.IsApproved)
	assert.Equal(t, sql.NullInt64{Int64: 250, Valid: true}, got.ReceivedAmount)

	_, err = ReceiveFull(got)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReceiveNone(t *testing.T) {
	inst := pendingReceipt(t, 250)
	got, err := ReceiveNone(inst)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReceipt, got.Status)
	assert.False(t, got.IsApproved)
	assert.False(t, got.ReceivedAmount.Valid)
}

func TestTopUp_ReachesAmount(t *testing.T) {
	inst, err := ReceivePartial(pendingReceipt(t, 100))
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyReceived, inst.Status)
	assert.False(t, inst.ReceivedAmount.Valid)

	at := inst.CreatedAt.Add(time.Hour)
	for i, amount := range []int64{30, 30, 40} {
		inst, err = TopUp(inst, amount, at)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, StatusPartiallyReceived, inst.Status)
			assert.False(t, inst.IsApproved)
		}
	}

	assert.Equal(t, StatusApproved, inst.Status)
	assert.True(t, inst.IsApproved)
	assert.Equal(t, int64(100), inst.Received())
}

func TestTopUp_Failures(t *testing.T) {
	inst, err := ReceivePartial(pendingReceipt(t, 100))
	require.NoError(t, err)
	inst, err = TopUp(inst, 30, inst.CreatedAt)
	require.NoError(t, err)

	tests := []struct {
		name    string
		amount  int64
		at      time.Time
		wantErr error
	}{
		{"after midnight", 10, time.Date(2024, time.March, 6, 0, 0, 0, 0, kyiv), ErrLateModification},
		{"one second after cutoff", 10, time.Date(2024, time.March, 5, 23, 59, 59, 0, kyiv).Add(time.Second), ErrLateModification},
		{"cutoff in another zone", 10, time.Date(2024, time.March, 5, 22, 30, 0, 0, time.UTC), ErrLateModification},
		{"zero", 0, inst.CreatedAt, ErrInvalidTopUp},
		{"negative", -5, inst.CreatedAt, ErrValidation},
		{"exceeds amount", 71, inst.CreatedAt, ErrTopUpExceedsAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TopUp(inst, tt.amount, tt.at)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int64(30), inst.Received())
			assert.Equal(t, StatusPartiallyReceived, inst.Status)
		})
	}

	got, err := TopUp(inst, 10, time.Date(2024, time.March, 5, 23, 59, 59, 0, kyiv))
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.Received())
}

func TestTopUp_RequiresPartialState(t *testing.T) {
	_, err := TopUp(pendingReceipt(t, 100), 10, time.Date(2024, time.March, 5, 10, 0, 0, 0, kyiv))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParseTopUp(t *testing.T) {
	tests := []struct {
		text    string
		want    int64
		wantErr bool
	}{
		{"30", 30, false},
		{" 40 ", 40, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"3.5", 0, true},
		{"сто", 0, true},
		{"", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseTopUp(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTopUp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRejectAndDelete(t *testing.T) {
	pending, err := Begin(draft(TypeExpense, 100, ""))
	require.NoError(t, err)

	rejected, err := Reject(pending)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)

	_, err = Delete(rejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	deleted := pending
	deleted.Status = StatusDeleted
	_, err = Delete(deleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, status := range []Status{StatusPendingCategory, StatusPendingReceipt, StatusPartiallyReceived, StatusApproved} {
		inst := pending
		inst.Status = status
		got, err := Delete(inst)
		require.NoError(t, err, status)
		assert.Equal(t, StatusDeleted, got.Status)
	}
}

func TestValidate_Invariant(t *testing.T) {
	inst := draft(TypeIncome, 100, "")
	inst.ReceivedAmount = sql.NullInt64{Int64: 101, Valid: true}
	assert.ErrorIs(t, inst.Validate(), ErrInvariant)

	inst.ReceivedAmount = sql.NullInt64{Int64: 100, Valid: true}
	assert.NoError(t, inst.Validate())

	inst.Status = StatusApproved
	assert.ErrorIs(t, inst.Validate(), ErrInvariant)
	inst.IsApproved = true
	assert.NoError(t, inst.Validate())
}
