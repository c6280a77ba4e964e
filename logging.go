package main

import (
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"
)

func setupLogging(level string) {
	log.SetFormatter(&nested.Formatter{
		FieldsOrder:     []string{"module", "command", "user_id"},
		TimestampFormat: time.RFC3339,
		NoColors:        true,
	})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
