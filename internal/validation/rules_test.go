package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "sunsets4ever", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Too Short", "abc1", true},
		{"Too Long", strings.Repeat("a", 128) + "1", true},
		{"No Digit", "justletters", true},
		{"No Letter", "12345678", true},
		{"Unicode Letters", "pässword123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidSearchQuery(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidSearchQuery("gracie"))
	assert.True(t, ValidSearchQuery(strings.Repeat("я", 50)))
	assert.False(t, ValidSearchQuery(strings.Repeat("a", 51)))
	assert.False(t, ValidSearchQuery("\xff\xfe"))
}

func TestValidateMessageContent(t *testing.T) {
	t.Parallel()
	assert.Error(t, ValidateMessageContent(""))
	assert.NoError(t, ValidateMessageContent("hey"))
	assert.Error(t, ValidateMessageContent(strings.Repeat("a", 5001)))
}

func TestValidateCommentContent(t *testing.T) {
	t.Parallel()
	assert.Error(t, ValidateCommentContent(""))
	assert.NoError(t, ValidateCommentContent("nice shot"))
	assert.Error(t, ValidateCommentContent(strings.Repeat("a", 1001)))
}
