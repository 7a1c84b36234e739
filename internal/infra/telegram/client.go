package telegram

import (
	"errors"
	"fmt"

	"gopkg.in/telebot.v3"
)

// ErrChatUnavailable is returned when a message cannot be delivered because
// the user blocked the bot or the chat no longer exists.
var ErrChatUnavailable = errors.New("chat unavailable")

// Sender delivers a message with an optional inline keyboard to a chat.
type Sender interface {
	SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) error
}

// BotSender implements Sender on top of a telebot.Bot.
type BotSender struct {
	bot *telebot.Bot
}

func NewBotSender(b *telebot.Bot) *BotSender {
	return &BotSender{bot: b}
}

func (s *BotSender) SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{DisableWebPagePreview: true}
	if markup != nil && len(markup.InlineKeyboard) > 0 {
		opts.ReplyMarkup = markup
	}
	_, err := s.bot.Send(telebot.ChatID(chatID), text, opts)
	return classifySendError(err)
}

func classifySendError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, telebot.ErrBlockedByUser),
		errors.Is(err, telebot.ErrChatNotFound),
		errors.Is(err, telebot.ErrUserIsDeactivated):
		return fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}
	return err
}
