package telegram

import (
	"context"
	"fmt"

	"finance_tracker_bot/internal/app"
)

// Notifier delivers prompts produced by the scheduler jobs.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) Notify(ctx context.Context, chatID int64, p app.Prompt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text, markup := promptView(p)
	if err := n.sender.SendMessage(chatID, text, markup); err != nil {
		return fmt.Errorf("failed to send prompt for operation %d to chat %d: %w", p.Instance.ID, chatID, err)
	}
	return nil
}
