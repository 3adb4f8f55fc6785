package main

import (
	"strconv"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotCreationSkippingGetMe(t *testing.T) {
	// With the getMe call skipped, construction is offline and
	// deterministic.
	b, err := bot.New("123456:dummy-token-for-testing", bot.WithSkipGetMe())
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestChatIDParsing(t *testing.T) {
	tests := []struct {
		chatID string
		valid  bool
	}{
		{"42", true},
		{"-1001234567890", true},
		{"general", false},
		{"", false},
	}
	for _, tt := range tests {
		_, err := strconv.ParseInt(tt.chatID, 10, 64)
		if tt.valid {
			assert.NoError(t, err, tt.chatID)
		} else {
			assert.Error(t, err, tt.chatID)
		}
	}
}
