package operation

import (
	"database/sql"
	"sort"
	"time"

	"finance_tracker_bot/internal/domain/recurrence"
)

// ProjectionHour is the time of day given to projected instances.
const ProjectionHour = 8

// Materialize emits today's instance of tpl when its rule fires on now's date.
// The returned instance is a draft; callers run Begin before persisting it.
func Materialize(tpl Template, now time.Time) (Instance, bool) {
	if !recurrence.Fires(tpl.Rule, now) {
		return Instance{}, false
	}
	return spawn(tpl, now), true
}

// Project forecasts the instances tpl would produce for the rest of now's
// month, strictly after today. Nothing is persisted.
func Project(tpl Template, now time.Time) []Instance {
	days := recurrence.Occurrences(tpl.Rule, now)
	out := make([]Instance, 0, len(days))
	for _, d := range days {
		at := time.Date(now.Year(), now.Month(), d, ProjectionHour, 0, 0, 0, now.Location())
		out = append(out, spawn(tpl, at))
	}
	return out
}

// ProjectAll merges the projections of several templates in chronological order.
func ProjectAll(tpls []Template, now time.Time) []Instance {
	var out []Instance
	for _, tpl := range tpls {
		out = append(out, Project(tpl, now)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func spawn(tpl Template, at time.Time) Instance {
	return Instance{
		CompanyID:   tpl.CompanyID,
		CreatorID:   tpl.CreatorID,
		Amount:      tpl.Amount,
		Currency:    tpl.Currency,
		Type:        tpl.Type,
		Description: tpl.Description,
		Category:    tpl.Category,
		IsApproved:  false,
		Status:      StatusDraft,
		TemplateID:  sql.NullInt64{Int64: tpl.ID, Valid: tpl.ID != 0},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}
