package company

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotMember       = errors.New("user is not a member of the company")
	ErrNotOwner        = errors.New("only the company owner can do this")
	ErrNoCompany       = errors.New("no company selected")
	ErrEmptyName       = errors.New("company name is empty")
)

// PersonalName is the name of the company created for every new user.
const PersonalName = "Личные финансы"

// Company groups operations shared by its members.
// Corresponds to the 'companies' table.
type Company struct {
	ID        int64
	Name      string
	OwnerID   int64 // Telegram ID of the creator
	CreatedAt time.Time
}

// User is a chat user known to the bot.
// Corresponds to the 'users' table.
type User struct {
	TelegramID        int64
	FirstName         string
	LastName          sql.NullString
	SelectedCompanyID sql.NullInt64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
