// Package validation provides input validation utilities.
package validation

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// ValidatePassword checks if a password meets security requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	hasLetter := false
	hasDigit := false
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}

	return nil
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUsername checks if a username meets requirements.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidSearchQuery bounds search input so a query can't be abused as a
// wildcard scan vector.
func ValidSearchQuery(query string) bool {
	if !utf8.ValidString(query) {
		return false
	}
	return utf8.RuneCountInString(query) <= 50
}

// ValidateMessageContent checks chat message bounds.
func ValidateMessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("message content is required")
	}
	if utf8.RuneCountInString(content) > 5000 {
		return fmt.Errorf("message must not exceed 5000 characters")
	}
	return nil
}

// ValidateCommentContent checks comment bounds.
func ValidateCommentContent(content string) error {
	if content == "" {
		return fmt.Errorf("comment content is required")
	}
	if utf8.RuneCountInString(content) > 1000 {
		return fmt.Errorf("comment must not exceed 1000 characters")
	}
	return nil
}
