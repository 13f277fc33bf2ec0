package contextutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestExtractMetadata(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithRole(ctx, "manager")

	md := ExtractMetadata(ctx)

	assert.Equal(t, Metadata{RequestID: "req-1", UserID: "user-1", Role: "manager"}, md)
}

func TestGetLogger_Fallbacks(t *testing.T) {
	fallback := zap.NewNop().Named("fallback")

	assert.Same(t, fallback, GetLogger(context.Background(), fallback))
	assert.NotNil(t, GetLogger(context.Background(), nil))

	scoped := zap.NewNop().Named("scoped")
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, GetLogger(ctx, fallback))
}
