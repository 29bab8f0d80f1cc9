package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxTelegramIDLen  = 100
)

var (
	// Email regex pattern (basic validation)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)

	if email == "" {
		return fmt.Errorf("email is required")
	}

	if len(email) > 255 {
		return fmt.Errorf("email is too long (max 255 characters)")
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password is too long (max %d characters)", MaxPasswordLength)
	}

	return nil
}

// ValidateTelegramID validates a telegram chat identifier
func ValidateTelegramID(telegramID string) error {
	telegramID = strings.TrimSpace(telegramID)

	if telegramID == "" {
		return fmt.Errorf("telegram_id is required")
	}

	if len(telegramID) > MaxTelegramIDLen {
		return fmt.Errorf("telegram_id is too long (max %d characters)", MaxTelegramIDLen)
	}

	return nil
}
