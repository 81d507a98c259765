package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// Letters, digits and ._-@ so email addresses work as usernames.
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@-]{2,49}$`)

	shipmentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
)

// SanitizeString trims whitespace and strips control characters other
// than newline and tab.
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

func ValidateUsername(username string) error {
	username = SanitizeString(username)

	switch {
	case username == "":
		return fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
	case len(username) < 3:
		return fmt.Errorf("%w: username must be at least 3 characters", ErrInvalidInput)
	case len(username) > 50:
		return fmt.Errorf("%w: username must not exceed 50 characters", ErrInvalidInput)
	case !usernameRegex.MatchString(username):
		return fmt.Errorf("%w: username contains unsupported characters", ErrInvalidInput)
	}
	return nil
}

// ValidatePassword enforces length and character-class rules for
// operator accounts.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if len(password) > 72 {
		// bcrypt ignores anything past 72 bytes
		return fmt.Errorf("%w: password must not exceed 72 characters", ErrInvalidInput)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasNumber {
		missing = append(missing, "a number")
	}
	if !hasSpecial {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: password must contain %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

func ValidateShipmentID(id string) error {
	if id == "" {
		return nil
	}
	if !shipmentIDRegex.MatchString(id) {
		return fmt.Errorf("%w: malformed shipment id %q", ErrInvalidInput, id)
	}
	return nil
}

// ParseAnomalyKind accepts kinds case-insensitively. Empty means any.
func ParseAnomalyKind(s string) (models.AnomalyKind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	kind := models.AnomalyKind(strings.ToUpper(s))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown anomaly kind %q", ErrInvalidInput, s)
	}
	return kind, nil
}

// ParseSeverity accepts severities case-insensitively. Empty means any.
func ParseSeverity(s string) (models.Severity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	severity := models.Severity(strings.ToLower(s))
	if !severity.Valid() {
		return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, s)
	}
	return severity, nil
}
