package operation

import (
	"testing"

	"finance_tracker_bot/internal/domain/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Parsed
	}{
		{
			name: "plain expense with connector",
			text: "-1300 грн за продукты",
			want: Parsed{Amount: 1300, Type: TypeExpense, Currency: CurrencyUAH, Description: "продукты", Rule: recurrence.None()},
		},
		{
			name: "plain income",
			text: "+25000 usd зарплата",
			want: Parsed{Amount: 25000, Type: TypeIncome, Currency: CurrencyUSD, Description: "зарплата", Rule: recurrence.None()},
		},
		{
			name: "currency with dot and upper case",
			text: "-50 ГРН. кофе",
			want: Parsed{Amount: 50, Type: TypeExpense, Currency: CurrencyUAH, Description: "кофе", Rule: recurrence.None()},
		},
		{
			name: "currency with diacritics",
			text: "-10 éur такси",
			want: Parsed{Amount: 10, Type: TypeExpense, Currency: CurrencyEUR, Description: "такси", Rule: recurrence.None()},
		},
		{
			name: "space after sign",
			text: "- 300 uah заправка",
			want: Parsed{Amount: 300, Type: TypeExpense, Currency: CurrencyUAH, Description: "заправка", Rule: recurrence.None()},
		},
		{
			name: "monthly regular",
			text: "-8000 грн каждое 10 число за аренду квартиры",
			want: Parsed{
				Amount: 8000, Type: TypeExpense, Currency: CurrencyUAH, Description: "аренду квартиры",
				Rule: recurrence.Rule{Kind: recurrence.KindMonthly, Anchors: []int{10}},
			},
		},
		{
			name: "daily regular",
			text: "-60 грн каждый день за обед",
			want: Parsed{
				Amount: 60, Type: TypeExpense, Currency: CurrencyUAH, Description: "обед",
				Rule: recurrence.Rule{Kind: recurrence.KindDaily, Anchors: []int{}},
			},
		},
		{
			name: "weekly regular",
			text: "+500 usd каждую неделю в пятницу за фриланс",
			want: Parsed{
				Amount: 500, Type: TypeIncome, Currency: CurrencyUSD, Description: "фриланс",
				Rule: recurrence.Rule{Kind: recurrence.KindWeekly, Anchors: []int{4}},
			},
		},
		{
			name: "unrecognised clause falls through to plain shape",
			text: "-200 грн иногда за цветы",
			want: Parsed{Amount: 200, Type: TypeExpense, Currency: CurrencyUAH, Description: "иногда за цветы", Rule: recurrence.None()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseText(tt.text)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseText_NotACommand(t *testing.T) {
	for _, text := range []string{
		"привет",
		"1300 грн продукты",
		"-1300грн продукты",
		"",
	} {
		_, ok, err := ParseText(text)
		assert.False(t, ok, text)
		assert.NoError(t, err, text)
	}
}

func TestParseText_Failures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
		family  error
	}{
		{"unknown currency", "-100 abc продукты", ErrUnknownCurrency, ErrValidation},
		{"zero amount", "-0 usd ничего", ErrInvalidAmount, ErrValidation},
		{"overflow", "+99999999999999999999 usd много", ErrInvalidAmount, ErrValidation},
		{"min int64 has no absolute value", "-9223372036854775808 грн кофе", ErrInvalidAmount, ErrValidation},
		{"empty weekly schedule", "-100 грн каждое утро за кофе", ErrEmptySchedule, ErrParse},
		{"day out of range", "-100 грн каждое 32 число за кофе", ErrInvalidSchedule, ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := ParseText(tt.text)
			assert.True(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.family)
		})
	}
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("BTC")
	require.NoError(t, err)
	assert.Equal(t, CurrencyBTC, c)
	assert.Equal(t, "BTC", c.Code())

	_, err = ParseCurrency("руб")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}
