package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"finance_tracker_bot/internal/app"
	"finance_tracker_bot/internal/domain/operation"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const helpText = `Отправьте операцию одним сообщением:
  -300 грн кофе
  +1500 usd зарплата
  -8000 грн каждое 10 число за аренду
  +20000 грн каждый пн, пт за консультации

Команды:
/operations - все операции
/regular - регулярные операции
/future - запланировано до конца месяца
/today - операции за сегодня
/stats - итоги месяца
/companies - ваши компании
/company_new <название> - новая компания
/company_add <telegram_id> - добавить участника в текущую компанию`

type commandHandler func(ctx context.Context, c telebot.Context) error

// Handlers wires chat commands and inline buttons to the services.
type Handlers struct {
	ops       *app.OperationService
	companies *app.CompanyService
	log       *logrus.Entry
}

func NewHandlers(ops *app.OperationService, companies *app.CompanyService, log *logrus.Entry) *Handlers {
	return &Handlers{ops: ops, companies: companies, log: log}
}

func (h *Handlers) commands() map[string]commandHandler {
	return map[string]commandHandler{
		"/start":       h.onStart,
		"/help":        h.onHelp,
		"/operations":  h.onOperations,
		"/regular":     h.onRegular,
		"/future":      h.onFuture,
		"/today":       h.onToday,
		"/stats":       h.onStats,
		"/companies":   h.onCompanies,
		"/company_new": h.onCompanyNew,
		"/company_add": h.onCompanyAdd,
	}
}

func (h *Handlers) callbacks() map[string]callbackHandler {
	return map[string]callbackHandler{
		cbCategory:       h.onCategory,
		cbMoreCategories: h.onMoreCategories,
		cbReceiveFull:    h.onReceive(app.ReceivedFull),
		cbReceiveRest:    h.onReceive(app.ReceivedFull),
		cbReceivePartial: h.onReceive(app.ReceivedPartial),
		cbReceiveNone:    h.onReceive(app.ReceivedNone),
		cbReject:         h.onReject,
		cbInstancesPage:  h.onInstancesPage,
		cbInstanceDetail: h.onInstanceDetail,
		cbInstanceDelete: h.onInstanceDelete,
		cbTemplatesPage:  h.onTemplatesPage,
		cbTemplateDelete: h.onTemplateDelete,
		cbCompanySelect:  h.onCompanySelect,
	}
}

// Register attaches every command, the callback dispatcher and the free-text
// handler to the bot.
func (h *Handlers) Register(ctx context.Context, b *telebot.Bot) {
	for command, handle := range h.commands() {
		command, handle := command, handle
		b.Handle(command, func(c telebot.Context) error {
			logger := h.log.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			logger.Debug("Command received")
			if err := handle(ctx, c); err != nil {
				return h.fail(c, logger, err)
			}
			return nil
		})
	}

	callbacks := h.callbacks()
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		unique, args := decodeCallback(c.Callback().Data)
		logger := h.log.WithFields(logrus.Fields{
			"handler":   unique,
			"sender_id": c.Sender().ID,
			"args":      args,
		})
		handle, ok := callbacks[unique]
		if !ok {
			logger.Warn("Unknown callback")
			return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
		}
		if err := handle(ctx, c, args); err != nil {
			msg, expected := userMessage(err)
			h.logFailure(logger, err, expected)
			return c.Respond(&telebot.CallbackResponse{Text: msg})
		}
		return c.Respond()
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		logger := h.log.WithFields(logrus.Fields{
			"handler":   "text",
			"sender_id": c.Sender().ID,
		})
		if err := h.onText(ctx, c); err != nil {
			return h.fail(c, logger, err)
		}
		return nil
	})
}

func (h *Handlers) fail(c telebot.Context, logger *logrus.Entry, err error) error {
	msg, expected := userMessage(err)
	h.logFailure(logger, err, expected)
	return c.Send(msg)
}

func (h *Handlers) logFailure(logger *logrus.Entry, err error, expected bool) {
	if expected {
		logger.WithError(err).Info("Request rejected")
		return
	}
	logger.WithError(err).Error("Request failed")
}

// edit replaces the message under the pressed button. Re-rendering the same
// content is not an error.
func edit(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	var err error
	if markup == nil {
		err = c.Edit(text)
	} else {
		err = c.Edit(text, markup)
	}
	if errors.Is(err, telebot.ErrSameMessageContent) {
		return nil
	}
	return err
}

func (h *Handlers) onStart(ctx context.Context, c telebot.Context) error {
	sender := c.Sender()
	_, created, err := h.companies.Register(ctx, sender.ID, sender.FirstName, sender.LastName)
	if err != nil {
		return err
	}
	greeting := "С возвращением!"
	if created {
		greeting = fmt.Sprintf("Привет, %s! Для вас создана компания «Личные финансы».", sender.FirstName)
	}
	return c.Send(greeting + "\n\n" + helpText)
}

func (h *Handlers) onHelp(_ context.Context, c telebot.Context) error {
	return c.Send(helpText)
}

func (h *Handlers) onOperations(ctx context.Context, c telebot.Context) error {
	page, err := h.ops.ListInstances(ctx, c.Sender().ID, 1)
	if err != nil {
		return err
	}
	text, markup := instancesView(page)
	return c.Send(text, markup)
}

func (h *Handlers) onRegular(ctx context.Context, c telebot.Context) error {
	page, err := h.ops.ListTemplates(ctx, c.Sender().ID, 1)
	if err != nil {
		return err
	}
	text, markup := templatesView(page)
	return c.Send(text, markup)
}

func (h *Handlers) onFuture(ctx context.Context, c telebot.Context) error {
	items, err := h.ops.Future(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return c.Send(futureText(items))
}

func (h *Handlers) onToday(ctx context.Context, c telebot.Context) error {
	items, err := h.ops.Today(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return c.Send(todayText(items))
}

func (h *Handlers) onStats(ctx context.Context, c telebot.Context) error {
	summary, err := h.ops.Stats(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return c.Send(statsText(summary))
}

func (h *Handlers) onCompanies(ctx context.Context, c telebot.Context) error {
	list, selected, err := h.companies.List(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	text, markup := companiesView(list, selected)
	return c.Send(text, markup)
}

func (h *Handlers) onCompanyNew(ctx context.Context, c telebot.Context) error {
	comp, err := h.companies.Create(ctx, c.Sender().ID, c.Message().Payload)
	if err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("Компания «%s» создана и выбрана.", comp.Name))
}

func (h *Handlers) onCompanyAdd(ctx context.Context, c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Используйте: /company_add <telegram_id>")
	}
	memberID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("Telegram ID должен быть числом.")
	}
	current, err := h.companies.Current(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	comp, err := h.companies.AddMember(ctx, c.Sender().ID, current.ID, memberID)
	if err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("Пользователь %d добавлен в компанию «%s».", memberID, comp.Name))
}

// onText handles top-up replies and new operations.
func (h *Handlers) onText(ctx context.Context, c telebot.Context) error {
	msg := c.Message()
	if id, ok := replyInstanceID(msg.ReplyTo); ok {
		inst, err := h.ops.TopUp(ctx, c.Sender().ID, id, c.Text())
		if err != nil {
			return err
		}
		text, markup := promptView(app.Prompt{Instance: inst})
		return c.Send(text, markup)
	}

	res, ok, err := h.ops.CreateFromText(ctx, c.Sender().ID, c.Text())
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if res.Template != nil {
		if err := c.Send("🔁 Регулярная операция сохранена:\n" + templateLine(res.Template)); err != nil {
			return err
		}
	}
	if res.Prompt != nil {
		text, markup := promptView(*res.Prompt)
		return c.Send(text, markup)
	}
	return nil
}

// replyInstanceID extracts the instance a top-up reply refers to. Only replies
// to a partial-receipt prompt count; its first button carries the ID.
func replyInstanceID(replyTo *telebot.Message) (int64, bool) {
	if replyTo == nil || replyTo.ReplyMarkup == nil {
		return 0, false
	}
	keyboard := replyTo.ReplyMarkup.InlineKeyboard
	if len(keyboard) == 0 || len(keyboard[0]) == 0 {
		return 0, false
	}
	unique, args := decodeCallback(keyboard[0][0].Data)
	if unique != cbReceiveRest {
		return 0, false
	}
	id, err := argInt(args, 0)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handlers) onCategory(ctx context.Context, c telebot.Context, args []string) error {
	id, err := argInt(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: no category in callback", operation.ErrUnknownCategory)
	}
	p, err := h.ops.SelectCategory(ctx, c.Sender().ID, id, args[1])
	if err != nil {
		return err
	}
	text, markup := promptView(*p)
	return edit(c, text, markup)
}

func (h *Handlers) onMoreCategories(ctx context.Context, c telebot.Context, args []string) error {
	id, err := argInt(args, 0)
	if err != nil {
		return err
	}
	var shown []operation.Category
	if len(args) > 1 && args[1] != "" {
		for _, slug := range strings.Split(args[1], ",") {
			shown = append(shown, operation.Category(slug))
		}
	}
	inst, rest, err := h.ops.MoreCategories(ctx, c.Sender().ID, id, shown)
	if err != nil {
		return err
	}
	markup := &telebot.ReplyMarkup{}
	markup.Inline(categoryRows(markup, inst.ID, rest, false)...)
	return edit(c, instanceText(inst)+"\n\nВыберите категорию:", markup)
}

func (h *Handlers) onReceive(answer app.ReceiptAnswer) callbackHandler {
	return func(ctx context.Context, c telebot.Context, args []string) error {
		id, err := argInt(args, 0)
		if err != nil {
			return err
		}
		inst, err := h.ops.Receive(ctx, c.Sender().ID, id, answer)
		if err != nil {
			return err
		}
		text, markup := promptView(app.Prompt{Instance: inst})
		if answer == app.ReceivedNone {
			text += "\n\nХорошо, спрошу позже."
		}
		return edit(c, text, markup)
	}
}

func (h *Handlers) onReject(ctx context.Context, c telebot.Context, args []string) error {
	id, err := argInt(args, 0)
	if err != nil {
		return err
	}
	if err := h.ops.Reject(ctx, c.Sender().ID, id); err != nil {
		return err
	}
	return edit(c, "🗑 Операция отменена.", nil)
}

func (h *Handlers) onInstancesPage(ctx context.Context, c telebot.Context, args []string) error {
	page, err := h.ops.ListInstances(ctx, c.Sender().ID, argPage(args, 0))
	if err != nil {
		return err
	}
	text, markup := instancesView(page)
	return edit(c, text, markup)
}

func (h *Handlers) onInstanceDetail(ctx context.Context, c telebot.Context, args []string) error {
	id, err := argInt(args, 0)
	if err != nil {
		return err
	}
	inst, err := h.ops.GetInstance(ctx, c.Sender().ID, id)
	if err != nil {
		return err
	}
	text, markup := instanceDetailView(inst, argPage(args, 1))
	return edit(c, text, markup)
}

func (h *Handlers) onInstanceDelete(ctx context.Context, c telebot.Context, args []string) error {
	id, err := argInt(args, 0)
	if err != nil {
		return err
	}
	if err := h.ops.DeleteInstance(ctx, c.Sender().ID, id); err != nil {
		return err
	}
	return h.onInstancesPage(ctx, c, args[1:])
}

func (h *Handlers) onTemplatesPage(ctx context.Context, c telebot.Context, args []string) error {
	page, err := h.ops.ListTemplates(ctx, c.Sender().ID, argPage(args, 0))
	if err != nil {
		return err
	}
	text, markup := templatesView(page)
	return edit(c, text, markup)
}

func (h *Handlers) onTemplateDelete(ctx context.Context, c telebot.Context, args []string) error {
	id, err := argInt(args, 0)
	if err != nil {
		return err
	}
	if err := h.ops.DeleteTemplate(ctx, c.Sender().ID, id); err != nil {
		return err
	}
	return h.onTemplatesPage(ctx, c, args[1:])
}

func (h *Handlers) onCompanySelect(ctx context.Context, c telebot.Context, args []string) error {
	id, err := argInt(args, 0)
	if err != nil {
		return err
	}
	if _, err := h.companies.Select(ctx, c.Sender().ID, id); err != nil {
		return err
	}
	list, selected, err := h.companies.List(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	text, markup := companiesView(list, selected)
	return edit(c, text, markup)
}
