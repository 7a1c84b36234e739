package operation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"finance_tracker_bot/internal/domain/recurrence"
)

var (
	// +/-{amount} {currency: 3 letters} {recurrence} за {description}
	regularAddRx = regexp.MustCompile(`^(?P<amount>[+-] ?\d+) (?P<currency>\p{L}{3}\.?) (?P<repeat>\S.*?) (?i:за) (?P<description>\S.*)$`)
	// +/-{amount} {currency: 3 letters} [за] {description}
	plainAddRx = regexp.MustCompile(`^(?P<amount>[+-] ?\d+) (?P<currency>\p{L}{3}\.?) (?:(?i:за) )?(?P<description>.*)$`)
)

// Parsed is the result of reading an operation command.
type Parsed struct {
	Amount      int64 // absolute value
	Type        Type
	Currency    Currency
	Description string
	Rule        recurrence.Rule
}

// IsRegular reports whether the command defines a template.
func (p Parsed) IsRegular() bool {
	return !p.Rule.IsNone()
}

// ParseText reads "-1300 грн продукты" or "-8000 грн каждое 10 число за аренду".
// ok is false when text is not an operation command at all; such messages are
// ignored by the caller. err is set when the text looks like a command but
// cannot be accepted.
func ParseText(text string) (Parsed, bool, error) {
	text = strings.TrimSpace(text)

	if m := regularAddRx.FindStringSubmatch(text); m != nil {
		if rule, ok := recurrence.ParsePhrase(m[3]); ok {
			p, err := build(m[1], m[2], m[4], rule)
			return p, true, err
		}
	}

	if m := plainAddRx.FindStringSubmatch(text); m != nil {
		p, err := build(m[1], m[2], m[3], recurrence.None())
		return p, true, err
	}

	return Parsed{}, false, nil
}

func build(amountToken, currencyToken, description string, rule recurrence.Rule) (Parsed, error) {
	signed, err := strconv.ParseInt(strings.ReplaceAll(amountToken, " ", ""), 10, 64)
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amountToken)
	}
	if signed == math.MinInt64 {
		return Parsed{}, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, amountToken)
	}
	amount := signed
	if amount < 0 {
		amount = -amount
	}
	if amount == 0 {
		return Parsed{}, fmt.Errorf("%w: amount must not be zero", ErrInvalidAmount)
	}

	currency, err := ParseCurrency(currencyToken)
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %q", err, currencyToken)
	}

	if err := rule.Validate(); err != nil {
		if errors.Is(err, recurrence.ErrInvalidRule) {
			return Parsed{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		return Parsed{}, err
	}
	if (rule.Kind == recurrence.KindWeekly || rule.Kind == recurrence.KindMonthly) && len(rule.Anchors) == 0 {
		return Parsed{}, ErrEmptySchedule
	}

	return Parsed{
		Amount:      amount,
		Type:        TypeOf(signed),
		Currency:    currency,
		Description: strings.TrimSpace(description),
		Rule:        rule,
	}, nil
}
