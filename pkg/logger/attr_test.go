package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbmarquez/doctorq/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"user id", logger.UserID("u-1"), "user_id", "u-1"},
		{"profile id", logger.ProfileID("p-9"), "profile_id", "p-9"},
		{"request id", logger.RequestID("r-3"), "request_id", "r-3"},
		{"role", logger.Role("clinic_manager"), "role", "clinic_manager"},
		{"group", logger.Group("clinic"), "group", "clinic"},
		{"resource", logger.Resource("appointments"), "resource", "appointments"},
		{"action", logger.Action("view"), "action", "view"},
		{"decision", logger.Decision("denied"), "decision", "denied"},
		{"component", logger.Component("permcache"), "component", "permcache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.String())
		})
	}
}

func TestEmptyIdentifiers(t *testing.T) {
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.True(t, logger.ProfileID("").Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
}

func TestDuration(t *testing.T) {
	attr := logger.Duration(2 * time.Second)
	require.Equal(t, "duration", attr.Key)
	assert.Equal(t, 2*time.Second, attr.Value.Any())
}
