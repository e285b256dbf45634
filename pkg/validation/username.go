package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// usernamePattern matches the usernames accepted at signup: letters, digits,
// underscores and hyphens, 3 to 30 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// ValidateUsername validates a recipient username format
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters of letters, numbers, underscores or hyphens")
	}

	return nil
}

// NormalizeUsername converts a username to its canonical lowercase form
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateAndNormalizeUsername validates a username and returns its normalized form
func ValidateAndNormalizeUsername(username string) (string, error) {
	normalized := NormalizeUsername(username)
	if err := ValidateUsername(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ValidateAmount validates a donation amount as a positive decimal string.
// The amount is kept as a string end to end because the payment processor's
// fixed-price API takes it verbatim.
func ValidateAmount(amount string) error {
	if amount == "" {
		return fmt.Errorf("amount cannot be empty")
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	// ParseFloat accepts "NaN" and "Inf" spellings.
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("amount must be a finite number")
	}

	if value <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}

	if dot := strings.IndexByte(amount, '.'); dot >= 0 && len(amount)-dot-1 > 2 {
		return fmt.Errorf("amount cannot have more than two decimal places")
	}

	return nil
}
