package recurrence

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dailyRx      = regexp.MustCompile(`^\S.* день`)
	weeklyAtRx   = regexp.MustCompile(`^\S.* неделю (?:в|во) (\S.*)`)
	weeklyBareRx = regexp.MustCompile(`^(?:каждый|каждую|каждое) (\D+?)[, и]*$`)
	monthlyRxs   = []*regexp.Regexp{
		regexp.MustCompile(`^каждое (\S.*) (?:числа|число)`),
		regexp.MustCompile(`^\S.* месяц (\S.*) (?:числа|число)`),
	}
	dayOfMonthMarkRx = regexp.MustCompile(`(?:числа|число)[, ]*$`)
)

// weekdayStems is ordered by weekday index. Stems tolerate grammatical case:
// "среду", "пятницу", "субботам" all contain their stem.
var weekdayStems = [7]string{
	"понедельник",
	"вторник",
	"сред",
	"четверг",
	"пятниц",
	"суббот",
	"воскресень",
}

const lastDayStem = "последн"

// ParsePhrase parses the recurrence clause of a regular operation command,
// e.g. "каждую неделю в пятницу" or "каждое 1 и последнее число".
// It reports false when no pattern family matches.
func ParsePhrase(clause string) (Rule, bool) {
	clause = strings.ToLower(strings.TrimSpace(clause))
	if clause == "" {
		return Rule{}, false
	}

	if dailyRx.MatchString(clause) {
		return Rule{Kind: KindDaily, Anchors: []int{}}, true
	}
	if m := weeklyAtRx.FindStringSubmatch(clause); m != nil {
		return Rule{Kind: KindWeekly, Anchors: weekdays(m[1])}, true
	}
	// "каждое последнее число" has no digits but is a monthly phrase.
	if !dayOfMonthMarkRx.MatchString(clause) {
		if m := weeklyBareRx.FindStringSubmatch(clause); m != nil {
			return Rule{Kind: KindWeekly, Anchors: weekdays(m[1])}, true
		}
	}
	for _, rx := range monthlyRxs {
		if m := rx.FindStringSubmatch(clause); m != nil {
			return Rule{Kind: KindMonthly, Anchors: monthDays(m[1])}, true
		}
	}
	return Rule{}, false
}

func weekdays(list string) []int {
	out := []int{}
	for _, token := range strings.Fields(list) {
		for idx, stem := range weekdayStems {
			if strings.Contains(token, stem) {
				out = append(out, idx)
				break
			}
		}
	}
	return out
}

func monthDays(list string) []int {
	out := []int{}
	for _, token := range strings.Fields(list) {
		token = strings.TrimSpace(strings.ReplaceAll(token, ",", ""))
		switch {
		case token == "":
		case isDigits(token):
			n, err := strconv.Atoi(token)
			if err != nil {
				// Longer than int; keep it out of range so Validate rejects it.
				n = 1 << 30
			}
			out = append(out, n)
		case strings.Contains(token, lastDayStem):
			out = append(out, LastDay)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
