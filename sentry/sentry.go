package sentry

import (
	"fmt"
	"time"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Init configures the global client. An empty dsn leaves reporting disabled
// but keeps hubs and transactions usable.
func Init(dsn, release string) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		TracesSampleRate: 1.0,
		AttachStacktrace: true,
	}); err != nil {
		return fmt.Errorf("failed to init sentry: %w", err)
	}
	return nil
}

// Flush waits for buffered events before shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}

func GetSentryGin() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true})
}

// ReportError sends err on the global hub, for failures outside any
// interaction.
func ReportError(err error) {
	sentry.CaptureException(err)
}
