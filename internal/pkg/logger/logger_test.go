package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{"開発環境", "development"},
		{"本番環境", "production"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLogger(tt.env)
			require.NotNil(t, l)
			l.Info("test message")
		})
	}
}

func TestNewLogger_WithLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "warn")
	defer os.Unsetenv("LOG_LEVEL")

	l := NewLogger("production")
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_WithInvalidLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "invalid_level")
	defer os.Unsetenv("LOG_LEVEL")

	l := NewLogger("development")
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestSet(t *testing.T) {
	original := Get()
	defer Set(original)

	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	Info("予約作成", ReservationID("res-1"), SeatID("seat-1"))
	Warn("配信失敗", UserID("user-1"))
	Error("自動処理エラー", Sweep("no_shows"), LoanID("loan-1"))
	Debug("詳細")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "res-1", entries[0].ContextMap()["reservation_id"])
	assert.Equal(t, "seat-1", entries[0].ContextMap()["seat_id"])
	assert.Equal(t, "user-1", entries[1].ContextMap()["user_id"])
	assert.Equal(t, "no_shows", entries[2].ContextMap()["sweep"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestWith(t *testing.T) {
	original := Get()
	defer Set(original)

	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))

	With(Sweep("reminders")).Info("開始")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "reminders", logs.All()[0].ContextMap()["sweep"])
	assert.NotPanics(t, func() { _ = Sync() })
}
