package telegram

import (
	"errors"
	"fmt"
	"testing"

	"finance_tracker_bot/internal/domain/company"
	"finance_tracker_bot/internal/domain/operation"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	msg, expected := userMessage(fmt.Errorf("operation 5: %w", operation.ErrTopUpTooLate))
	assert.True(t, expected)
	assert.Contains(t, msg, "только в день операции")

	msg, expected = userMessage(fmt.Errorf("wrap: %w", company.ErrNotMember))
	assert.True(t, expected)
	assert.Equal(t, "Нет доступа к этой компании.", msg)

	msg, expected = userMessage(errors.New("connection refused"))
	assert.False(t, expected)
	assert.Equal(t, genericFailure, msg)
}
