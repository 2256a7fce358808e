package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{"DEBUG", LogLevelDebug},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"path", "/auth/login",
		"access_token", "eyJhbGciOi",
		"Authorization", "Bearer abc",
		"email", "a@b.com",
		"dangling",
	})

	assert.Equal(t, []interface{}{
		"path", "/auth/login",
		"access_token", "[REDACTED]",
		"Authorization", "[REDACTED]",
		"email", "[REDACTED]",
		"dangling",
	}, out)
}
