package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtx_EnrichesWithTraceAndOperator(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithOperator(WithTraceID(context.Background(), "t-1"), "op-7")
	FromCtx(ctx, base).Infow("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "t-1", fields["trace_id"])
	require.Equal(t, "op-7", fields["operator_id"])
	require.Equal(t, "op-7", OperatorID(ctx))
}

func TestFromCtx_PrefersAttachedLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	attached := zap.New(core).Sugar().With("scope", "request")

	FromCtx(WithLogger(context.Background(), attached), zap.NewNop().Sugar()).Infow("x")
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "request", logs.All()[0].ContextMap()["scope"])

	base := zap.NewNop().Sugar()
	require.Same(t, base, FromCtx(context.Background(), base))
	require.Empty(t, OperatorID(context.Background()))
}
