// Package sentryhelper scopes Sentry hubs and transactions to a single
// interaction so breadcrumbs and tags from concurrent commands never mix.
package sentryhelper

import (
	"context"
	"fmt"

	sentry "github.com/getsentry/sentry-go"
)

type contextKey string

const hubContextKey contextKey = "sentry_hub"

// StartCommandTransaction clones the current hub into ctx and starts a
// transaction named after the slash command.
func StartCommandTransaction(ctx context.Context, commandName string, guildID string, userID string) (context.Context, *sentry.Span) {
	hub := sentry.CurrentHub().Clone()
	ctx = context.WithValue(ctx, hubContextKey, hub)

	transaction := sentry.StartTransaction(ctx, fmt.Sprintf("discord.command.%s", commandName),
		sentry.WithOpName("discord.command"),
		sentry.WithTransactionSource(sentry.SourceRoute),
	)
	transaction.SetTag("command", commandName)
	transaction.SetTag("guild_id", guildID)
	transaction.SetTag("user_id", userID)

	hub.Scope().SetSpan(transaction)
	hub.Scope().SetUser(sentry.User{ID: userID})

	return transaction.Context(), transaction
}

// HubFromContext returns the hub stored by StartCommandTransaction, or the
// current hub.
func HubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return sentry.CurrentHub()
	}
	if hub, ok := ctx.Value(hubContextKey).(*sentry.Hub); ok && hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

func AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	HubFromContext(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Data:     data,
		Level:    sentry.LevelInfo,
	}, nil)
}

func CaptureException(ctx context.Context, err error) *sentry.EventID {
	return HubFromContext(ctx).CaptureException(err)
}

func CaptureMessage(ctx context.Context, message string) *sentry.EventID {
	return HubFromContext(ctx).CaptureMessage(message)
}

func StartSpan(ctx context.Context, operation string) *sentry.Span {
	return sentry.StartSpan(ctx, operation)
}

// DetachFromTransaction keeps the interaction hub but drops the transaction,
// for work that outlives the initial response such as a deferred generation.
func DetachFromTransaction(ctx context.Context) context.Context {
	return context.WithValue(context.Background(), hubContextKey, HubFromContext(ctx))
}

// StartLinkedTransaction starts a task transaction tagged with the command
// that scheduled it.
func StartLinkedTransaction(ctx context.Context, name string, operation string, commandName string, userID string) (context.Context, *sentry.Span) {
	hub := HubFromContext(ctx)

	transaction := sentry.StartTransaction(ctx, name,
		sentry.WithOpName(operation),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	transaction.SetTag("original_command", commandName)
	transaction.SetTag("user_id", userID)

	hub.Scope().SetSpan(transaction)
	return transaction.Context(), transaction
}
