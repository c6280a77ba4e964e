package sentryhelper

import (
	"context"
	"testing"

	sentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFromContextFallsBackToCurrentHub(t *testing.T) {
	assert.Same(t, sentry.CurrentHub(), HubFromContext(context.Background()))
	assert.Same(t, sentry.CurrentHub(), HubFromContext(nil))
}

func TestStartCommandTransactionIsolatesHub(t *testing.T) {
	ctx, tx := StartCommandTransaction(context.Background(), "draw", "guild-1", "user-1")
	require.NotNil(t, tx)
	defer tx.Finish()

	hub := HubFromContext(ctx)
	assert.NotSame(t, sentry.CurrentHub(), hub)
	assert.Equal(t, "draw", tx.Tags["command"])
	assert.Equal(t, "user-1", tx.Tags["user_id"])
}

func TestDetachFromTransactionKeepsHub(t *testing.T) {
	ctx, tx := StartCommandTransaction(context.Background(), "draw", "guild-1", "user-1")
	tx.Finish()

	detached := DetachFromTransaction(ctx)
	assert.Same(t, HubFromContext(ctx), HubFromContext(detached))
	assert.Nil(t, sentry.TransactionFromContext(detached))
}

func TestStartLinkedTransactionTagsOrigin(t *testing.T) {
	ctx, tx := StartCommandTransaction(context.Background(), "draw", "guild-1", "user-1")
	tx.Finish()

	_, linked := StartLinkedTransaction(DetachFromTransaction(ctx), "generation", "nai.generate", "draw", "user-1")
	defer linked.Finish()
	assert.Equal(t, "draw", linked.Tags["original_command"])
}

func TestStartSpanJoinsCommandTransaction(t *testing.T) {
	ctx, tx := StartCommandTransaction(context.Background(), "draw", "guild-1", "user-1")
	defer tx.Finish()

	span := StartSpan(ctx, "prompt.build")
	span.Finish()
	assert.Equal(t, "prompt.build", span.Op)
	assert.Equal(t, tx.TraceID, span.TraceID)
	assert.Nil(t, CaptureMessage(ctx, "rate limit hit on /draw"))
}
