package logx

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"203.0.113.42:5123", "203.0.113.0"},
		{"203.0.113.42", "203.0.113.0"},
		{"127.0.0.1:80", "127.0.0.1"},
		{"[2001:db8:1:2:3:4:5:6]:443", "2001:db8:1:2::"},
		{"not-an-ip", "unknown_ip"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, anonymizeIP(tt.in), tt.in)
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, levelFor("/api/search", http.StatusBadGateway))
	assert.Equal(t, zerolog.WarnLevel, levelFor("/api/auth/login", http.StatusUnauthorized))
	assert.Equal(t, zerolog.DebugLevel, levelFor("/health", http.StatusOK))
	assert.Equal(t, zerolog.InfoLevel, levelFor("/api/state", http.StatusOK))
}

func TestInitGlobalLoggerRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, InitGlobalLogger(false, "chatty"))
	assert.NoError(t, InitGlobalLogger(false, "warn"))
	assert.Equal(t, zerolog.WarnLevel, Logger().GetLevel())
}
