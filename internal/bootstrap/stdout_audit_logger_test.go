package bootstrap

import (
	"context"
	"testing"
	"time"

	"go-attendance/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewStdoutAuditLogger(zap.New(core))
	l.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	ctx := contextutil.WithRequestID(context.Background(), "req-9")
	l.Log(ctx, AuditLog{
		Action:  "attendance.checked_in",
		Message: "attendance event received",
		Meta:    map[string]any{"user_id": "u-1"},
	})

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "attendance.checked_in", fields["action"])
	assert.Equal(t, "2026-03-02T09:00:00Z", fields["timestamp"])
	assert.Equal(t, "req-9", fields["request_id"])
}
