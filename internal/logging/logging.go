// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/config"
)

// Silent is the LOG_LEVEL value that discards all output.
const Silent = "silent"

// New returns a logger configured from cfg. JSON output is used when
// LOG_FORMAT is json or when running in production.
func New(cfg *config.Config) (*logrus.Logger, error) {
	return newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat == "json" || cfg.IsProduction())
}

func newLogger(out io.Writer, level string, asJSON bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	if level == Silent {
		log.SetOutput(io.Discard)
		log.SetLevel(logrus.PanicLevel)
	} else {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		log.SetLevel(lvl)
	}

	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log, nil
}
