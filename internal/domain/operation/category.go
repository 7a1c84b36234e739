package operation

import (
	"context"
	"strings"
)

// Category is a category slug, e.g. "food" or "salary".
type Category string

const (
	CategoryBadHabits     Category = "bad_habits"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryFood          Category = "food"
	CategoryHealth        Category = "health"
	CategoryHouse         Category = "house"
	CategoryPersonal      Category = "personal"
	CategoryPet           Category = "pet"
	CategorySubscriptions Category = "subscriptions"
	CategoryVehicle       Category = "vehicle"
	CategoryRenovation    Category = "renovation"
	CategorySalary        Category = "salary"
	CategoryOther         Category = "other"
)

var expenseCategories = []Category{
	CategoryBadHabits,
	CategoryEducation,
	CategoryEntertainment,
	CategoryFood,
	CategoryHealth,
	CategoryHouse,
	CategoryPersonal,
	CategoryPet,
	CategorySubscriptions,
	CategoryVehicle,
	CategoryRenovation,
	CategoryOther,
}

var incomeCategories = []Category{
	CategorySalary,
	CategoryOther,
}

var categoryTitles = map[Category]string{
	CategoryBadHabits:     "🚬 Вредные привычки",
	CategoryEducation:     "📚 Образование",
	CategoryEntertainment: "🎾 Развлечения",
	CategoryFood:          "🍕 Еда",
	CategoryHealth:        "❤️ Здоровье",
	CategoryHouse:         "🏠 Дом",
	CategoryPersonal:      "👤 Личные расходы",
	CategoryPet:           "🐶 Домашние животные",
	CategorySubscriptions: "💰 Подписки",
	CategoryVehicle:       "🚙 Транспорт",
	CategoryRenovation:    "🛠 Ремонт",
	CategorySalary:        "💰 Зарплата",
	CategoryOther:         "🗃 Другое",
}

// Categories lists every category available for the operation type, in display order.
func Categories(t Type) []Category {
	src := expenseCategories
	if t == TypeIncome {
		src = incomeCategories
	}
	out := make([]Category, len(src))
	copy(out, src)
	return out
}

// ParseCategory validates a slug against the categories of the given type.
func ParseCategory(t Type, slug string) (Category, error) {
	for _, c := range Categories(t) {
		if string(c) == slug {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// Title is the human readable label.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	if c == "" {
		return ""
	}
	s := strings.ReplaceAll(string(c), "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// Icon is the leading emoji of the title, or a note icon when unset.
func (c Category) Icon() string {
	if c == "" {
		return "📝"
	}
	title := c.Title()
	if idx := strings.IndexByte(title, ' '); idx > 0 {
		return title[:idx]
	}
	return title
}

// RemainingCategories returns the categories of t not present in shown,
// used for the "show more" choice after the suggestions.
func RemainingCategories(t Type, shown []Category) []Category {
	skip := make(map[Category]struct{}, len(shown))
	for _, c := range shown {
		skip[c] = struct{}{}
	}
	var out []Category
	for _, c := range Categories(t) {
		if _, ok := skip[c]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CategorySuggester ranks likely categories for a description. It is backed
// by an external classifier; the engine only consumes its ranked output.
type CategorySuggester interface {
	Suggest(ctx context.Context, description string, t Type) ([]Category, error)
}
