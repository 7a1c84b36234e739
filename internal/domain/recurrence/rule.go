package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is how often a rule repeats.
type Kind string

const (
	KindNone    Kind = "NO_REPEAT"
	KindDaily   Kind = "EVERY_DAY"
	KindWeekly  Kind = "EVERY_WEEK"
	KindMonthly Kind = "EVERY_MONTH"
)

// LastDay is the monthly anchor meaning "the final calendar day of the month".
const LastDay = -1

const lastDayToken = "last"

var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule is a parsed recurrence. Anchors are weekday indices 0(Mon)..6(Sun) for
// KindWeekly and days of month 1..31 or LastDay for KindMonthly.
type Rule struct {
	Kind    Kind
	Anchors []int
}

// None returns the rule of a one-off operation.
func None() Rule {
	return Rule{Kind: KindNone}
}

func (r Rule) IsNone() bool {
	return r.Kind == KindNone || r.Kind == ""
}

// Validate checks the kind/anchor invariants.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindNone, KindDaily:
		if len(r.Anchors) != 0 {
			return fmt.Errorf("%w: %s rule must not have anchors", ErrInvalidRule, r.Kind)
		}
	case KindWeekly:
		for _, a := range r.Anchors {
			if a < 0 || a > 6 {
				return fmt.Errorf("%w: weekday anchor %d out of range", ErrInvalidRule, a)
			}
		}
	case KindMonthly:
		for _, a := range r.Anchors {
			if a != LastDay && (a < 1 || a > 31) {
				return fmt.Errorf("%w: day anchor %d out of range", ErrInvalidRule, a)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}
	return nil
}

// FormatAnchors renders anchors for storage ("last" for LastDay).
func FormatAnchors(anchors []int) []string {
	out := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if a == LastDay {
			out = append(out, lastDayToken)
			continue
		}
		out = append(out, strconv.Itoa(a))
	}
	return out
}

// ParseAnchors is the inverse of FormatAnchors.
func ParseAnchors(values []string) ([]int, error) {
	out := make([]int, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == lastDayToken {
			out = append(out, LastDay)
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: bad anchor %q", ErrInvalidRule, v)
		}
		out = append(out, n)
	}
	return out, nil
}
