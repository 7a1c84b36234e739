// Package suggester ranks operation categories by keywords found in the
// description. It stands in for the external classifier.
package suggester

import (
	"context"
	"sort"
	"strings"

	"finance_tracker_bot/internal/domain/operation"
)

// DefaultKeywords maps categories to lower-case word stems.
var DefaultKeywords = map[operation.Category][]string{
	operation.CategoryBadHabits:     {"сигарет", "пиво", "алкогол", "вино", "кальян", "табак"},
	operation.CategoryEducation:     {"курс", "книг", "школ", "универ", "репетитор", "обучени"},
	operation.CategoryEntertainment: {"кино", "театр", "концерт", "игр", "бар", "клуб", "отпуск"},
	operation.CategoryFood:          {"продукт", "еда", "обед", "ужин", "завтрак", "кафе", "ресторан", "кофе", "доставк", "магазин"},
	operation.CategoryHealth:        {"аптек", "врач", "лекарств", "стоматолог", "анализ", "спортзал"},
	operation.CategoryHouse:         {"аренд", "квартир", "коммунал", "свет", "газ", "вода", "интернет", "дом"},
	operation.CategoryPersonal:      {"одежд", "обув", "стрижк", "косметик", "подарок"},
	operation.CategoryPet:           {"корм", "ветеринар", "кот", "собак"},
	operation.CategorySubscriptions: {"подписк", "netflix", "spotify", "youtube", "icloud"},
	operation.CategoryVehicle:       {"такси", "бензин", "заправк", "метро", "автобус", "парковк", "uber", "bolt"},
	operation.CategoryRenovation:    {"ремонт", "краск", "плитк", "мебел", "инструмент"},
	operation.CategorySalary:        {"зарплат", "зп", "аванс", "преми", "гонорар"},
}

// Keywords suggests categories whose stems occur in the description.
type Keywords struct {
	stems map[operation.Category][]string
}

func NewKeywords(stems map[operation.Category][]string) *Keywords {
	if stems == nil {
		stems = DefaultKeywords
	}
	return &Keywords{stems: stems}
}

// Suggest orders the categories of t by the number of matching stems. Only
// categories with at least one match are returned.
func (k *Keywords) Suggest(_ context.Context, description string, t operation.Type) ([]operation.Category, error) {
	words := strings.Fields(strings.ToLower(description))

	type scored struct {
		category operation.Category
		score    int
		order    int
	}
	var ranked []scored
	for i, c := range operation.Categories(t) {
		score := 0
		for _, stem := range k.stems[c] {
			for _, w := range words {
				if strings.HasPrefix(w, stem) {
					score++
				}
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{category: c, score: score, order: i})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	out := make([]operation.Category, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.category)
	}
	return out, nil
}
