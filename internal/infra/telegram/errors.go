package telegram

import (
	"errors"

	"finance_tracker_bot/internal/domain/company"
	"finance_tracker_bot/internal/domain/operation"
)

const genericFailure = "Произошла ошибка. Пожалуйста, попробуйте позже."

// userMessage maps an error to the text shown in chat. expected is false for
// failures the user cannot fix; those are logged as errors.
func userMessage(err error) (msg string, expected bool) {
	switch {
	case errors.Is(err, operation.ErrTopUpTooLate):
		return "Изменить полученную сумму можно только в день операции.", true
	case errors.Is(err, operation.ErrTopUpExceedsAmount):
		return "Сумма больше, чем осталось получить.", true
	case errors.Is(err, operation.ErrInvalidTopUp):
		return "Ответьте положительным целым числом, например: 300", true
	case errors.Is(err, operation.ErrUnknownCurrency):
		return "Неизвестная валюта. Доступны: USD, EUR, BTC, UAH (грн).", true
	case errors.Is(err, operation.ErrInvalidAmount):
		return "Сумма должна быть ненулевым целым числом.", true
	case errors.Is(err, operation.ErrUnknownCategory):
		return "Такой категории нет.", true
	case errors.Is(err, operation.ErrInvalidTransition):
		return "Это действие для операции уже недоступно.", true
	case errors.Is(err, operation.ErrParse):
		return "Не удалось разобрать расписание. Пример: -8000 грн каждое 10 число за аренду", true
	case errors.Is(err, operation.ErrInstanceNotFound), errors.Is(err, operation.ErrTemplateNotFound):
		return "Операция не найдена.", true
	case errors.Is(err, company.ErrUserNotFound):
		return "Сначала отправьте /start.", true
	case errors.Is(err, company.ErrNoCompany):
		return "Выберите компанию: /companies", true
	case errors.Is(err, company.ErrNotMember):
		return "Нет доступа к этой компании.", true
	case errors.Is(err, company.ErrNotOwner):
		return "Это может сделать только владелец компании.", true
	case errors.Is(err, company.ErrCompanyNotFound):
		return "Компания не найдена.", true
	case errors.Is(err, company.ErrEmptyName):
		return "Укажите название: /company_new <название>", true
	}
	return genericFailure, false
}
