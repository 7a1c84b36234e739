package telegram

import (
	"fmt"
	"strings"

	"finance_tracker_bot/internal/app"
	"finance_tracker_bot/internal/domain/company"
	"finance_tracker_bot/internal/domain/operation"
	"finance_tracker_bot/internal/domain/pagination"
	"finance_tracker_bot/internal/domain/recurrence"

	"gopkg.in/telebot.v3"
)

const dateLayout = "02.01.2006 15:04"

var statusTitles = map[operation.Status]string{
	operation.StatusPendingCategory:   "ожидает категорию",
	operation.StatusPendingReceipt:    "ожидает подтверждения",
	operation.StatusPartiallyReceived: "получена частично",
	operation.StatusApproved:          "подтверждена",
}

var weekdayShort = [7]string{"пн", "вт", "ср", "чт", "пт", "сб", "вс"}

// operationLine is the one-line summary used in lists.
func operationLine(amount int64, t operation.Type, c operation.Currency, category operation.Category, description string) string {
	line := fmt.Sprintf("%s %s%d %s", category.Icon(), t.Sign(), amount, c.Code())
	if description != "" {
		line += " " + description
	}
	return line
}

func instanceLine(inst *operation.Instance) string {
	return operationLine(inst.Amount, inst.Type, inst.Currency, inst.Category, inst.Description)
}

func instanceText(inst *operation.Instance) string {
	var b strings.Builder
	b.WriteString(instanceLine(inst))
	if inst.Category != "" {
		b.WriteString("\nКатегория: " + inst.Category.Title())
	}
	if title, ok := statusTitles[inst.Status]; ok {
		b.WriteString("\nСтатус: " + title)
	}
	if inst.Status == operation.StatusPartiallyReceived || inst.ReceivedAmount.Valid {
		fmt.Fprintf(&b, "\nПолучено: %d из %d", inst.Received(), inst.Amount)
	}
	if inst.TemplateID.Valid {
		b.WriteString("\n🔁 Регулярная операция")
	}
	b.WriteString("\n" + inst.CreatedAt.Format(dateLayout))
	return b.String()
}

func describeRule(r recurrence.Rule) string {
	switch r.Kind {
	case recurrence.KindDaily:
		return "каждый день"
	case recurrence.KindWeekly:
		days := make([]string, 0, len(r.Anchors))
		for _, a := range r.Anchors {
			if a >= 0 && a < len(weekdayShort) {
				days = append(days, weekdayShort[a])
			}
		}
		return "каждую неделю: " + strings.Join(days, ", ")
	case recurrence.KindMonthly:
		days := make([]string, 0, len(r.Anchors))
		for _, a := range r.Anchors {
			if a == recurrence.LastDay {
				days = append(days, "последнее")
				continue
			}
			days = append(days, fmt.Sprint(a))
		}
		return "каждый месяц: " + strings.Join(days, ", ") + " число"
	}
	return "без повторения"
}

func templateLine(tpl *operation.Template) string {
	return operationLine(tpl.Amount, tpl.Type, tpl.Currency, tpl.Category, tpl.Description) + "\n   🔁 " + describeRule(tpl.Rule)
}

// promptView renders what the user is asked about an instance.
func promptView(p app.Prompt) (string, *telebot.ReplyMarkup) {
	inst := p.Instance
	text := instanceText(inst)
	id := itoa(inst.ID)
	m := &telebot.ReplyMarkup{}

	switch inst.Status {
	case operation.StatusPendingCategory:
		text += "\n\nВыберите категорию:"
		m.Inline(categoryRows(m, inst.ID, p.Suggestions, true)...)
	case operation.StatusPendingReceipt:
		text += "\n\nДеньги получены?"
		m.Inline(
			m.Row(m.Data("✅ Полностью", cbReceiveFull, id), m.Data("🌓 Частично", cbReceivePartial, id)),
			m.Row(m.Data("⏳ Ещё нет", cbReceiveNone, id), m.Data("🗑 Отменить", cbReject, id)),
		)
	case operation.StatusPartiallyReceived:
		text += "\n\nОтветьте на это сообщение суммой, которая поступила."
		// The first button carries the ID that top-up replies are matched by.
		m.Inline(m.Row(m.Data("✅ Получено полностью", cbReceiveRest, id)))
	case operation.StatusApproved:
		text += "\n\n✅ Операция подтверждена"
	}
	return text, m
}

func categoryRows(m *telebot.ReplyMarkup, instanceID int64, categories []operation.Category, withMore bool) []telebot.Row {
	id := itoa(instanceID)
	rows := make([]telebot.Row, 0, len(categories)/2+2)
	var row []telebot.Btn
	shown := make([]string, 0, len(categories))
	for _, c := range categories {
		row = append(row, m.Data(c.Title(), cbCategory, id, string(c)))
		shown = append(shown, string(c))
		if len(row) == 2 {
			rows = append(rows, m.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, m.Row(row...))
	}
	last := []telebot.Btn{m.Data("🗑 Отменить", cbReject, id)}
	if withMore {
		last = append([]telebot.Btn{m.Data("Ещё категории", cbMoreCategories, id, strings.Join(shown, ","))}, last...)
	}
	return append(rows, m.Row(last...))
}

// paginationRow turns window buttons into inline buttons sending unique|page.
func paginationRow(m *telebot.ReplyMarkup, unique string, buttons []pagination.Button) telebot.Row {
	btns := make([]telebot.Btn, 0, len(buttons))
	for _, b := range buttons {
		btns = append(btns, m.Data(pageLabel(b), unique, fmt.Sprint(b.Page)))
	}
	return m.Row(btns...)
}

func pageLabel(b pagination.Button) string {
	switch b.Kind {
	case pagination.KindCurrent:
		return fmt.Sprintf("·%d·", b.Page)
	case pagination.KindFirst:
		return fmt.Sprintf("« %d", b.Page)
	case pagination.KindLast:
		return fmt.Sprintf("%d »", b.Page)
	}
	return fmt.Sprint(b.Page)
}

func instancesView(page *app.Page[*operation.Instance]) (string, *telebot.ReplyMarkup) {
	m := &telebot.ReplyMarkup{}
	if len(page.Items) == 0 {
		return "Операций пока нет.", m
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Операции (страница %d из %d):\n", page.Number, page.MaxPage)
	rows := make([]telebot.Row, 0, len(page.Items)+1)
	for _, inst := range page.Items {
		fmt.Fprintf(&b, "\n%s  %s", inst.CreatedAt.Format("02.01"), instanceLine(inst))
		rows = append(rows, m.Row(m.Data(instanceLine(inst), cbInstanceDetail, itoa(inst.ID), fmt.Sprint(page.Number))))
	}
	if len(page.Buttons) > 0 {
		rows = append(rows, paginationRow(m, cbInstancesPage, page.Buttons))
	}
	m.Inline(rows...)
	return b.String(), m
}

func instanceDetailView(inst *operation.Instance, page int) (string, *telebot.ReplyMarkup) {
	m := &telebot.ReplyMarkup{}
	p := fmt.Sprint(page)
	m.Inline(m.Row(
		m.Data("⬅️ Назад", cbInstancesPage, p),
		m.Data("🗑 Удалить", cbInstanceDelete, itoa(inst.ID), p),
	))
	return instanceText(inst), m
}

func templatesView(page *app.Page[*operation.Template]) (string, *telebot.ReplyMarkup) {
	m := &telebot.ReplyMarkup{}
	if len(page.Items) == 0 {
		return "Регулярных операций пока нет.", m
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Регулярные операции (страница %d из %d):\n", page.Number, page.MaxPage)
	rows := make([]telebot.Row, 0, len(page.Items)+1)
	for i, tpl := range page.Items {
		fmt.Fprintf(&b, "\n%d. %s", i+1, templateLine(tpl))
		rows = append(rows, m.Row(m.Data(fmt.Sprintf("🗑 %d. %s", i+1, tpl.Description), cbTemplateDelete, itoa(tpl.ID), fmt.Sprint(page.Number))))
	}
	if len(page.Buttons) > 0 {
		rows = append(rows, paginationRow(m, cbTemplatesPage, page.Buttons))
	}
	m.Inline(rows...)
	return b.String(), m
}

func futureText(items []operation.Instance) string {
	if len(items) == 0 {
		return "До конца месяца регулярных операций не запланировано."
	}
	var b strings.Builder
	b.WriteString("Запланировано до конца месяца:\n")
	for i := range items {
		fmt.Fprintf(&b, "\n%s  %s", items[i].CreatedAt.Format("02.01"), instanceLine(&items[i]))
	}
	return b.String()
}

func todayText(items []*operation.Instance) string {
	if len(items) == 0 {
		return "Сегодня операций не было."
	}
	var b strings.Builder
	b.WriteString("Операции за сегодня:\n")
	for _, inst := range items {
		fmt.Fprintf(&b, "\n%s  %s", inst.CreatedAt.Format("15:04"), instanceLine(inst))
		if title, ok := statusTitles[inst.Status]; ok && inst.Status != operation.StatusApproved {
			b.WriteString(" (" + title + ")")
		}
	}
	return b.String()
}

func statsText(s *app.Summary) string {
	if len(s.Currencies) == 0 {
		return "В этом месяце ещё нет подтверждённых операций."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Итоги с %s:\n", s.From.Format("02.01.2006"))
	for _, cs := range s.Currencies {
		code := cs.Currency.Code()
		fmt.Fprintf(&b, "\n%s\n  Доходы: +%d\n  Расходы: -%d\n  Баланс: %+d\n", code, cs.Income, cs.Expense, cs.Balance())
		if s.DaysLeft > 0 {
			fmt.Fprintf(&b, "  Дневной бюджет: %+d (дней до конца месяца: %d)\n", cs.DailyBudget, s.DaysLeft)
		}
		for _, ct := range cs.ByCategory {
			title := ct.Category.Title()
			if title == "" {
				title = operation.Category("").Icon() + " Без категории"
			}
			fmt.Fprintf(&b, "    %s: %d\n", title, ct.Amount)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func companiesView(list []*company.Company, selected int64) (string, *telebot.ReplyMarkup) {
	m := &telebot.ReplyMarkup{}
	if len(list) == 0 {
		return "У вас пока нет компаний. Создайте: /company_new <название>", m
	}
	rows := make([]telebot.Row, 0, len(list))
	for _, c := range list {
		label := c.Name
		if c.ID == selected {
			label = "✅ " + label
		}
		rows = append(rows, m.Row(m.Data(label, cbCompanySelect, itoa(c.ID))))
	}
	m.Inline(rows...)
	return "Ваши компании. Нажмите, чтобы выбрать:", m
}
