// Package logger builds the logrus instance used by the toon CLI.
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// New returns a logger at the given verbosity writing prefixed,
// timestamped lines to stderr, so diagnostics never mix into the
// converted document on stdout.
func New(lvl logrus.Level) *logrus.Logger {
	return &logrus.Logger{
		Out: os.Stderr,
		Formatter: &prefixed.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.StampMilli,
			ForceFormatting: true,
		},
		Level: lvl,
		Hooks: make(logrus.LevelHooks),
	}
}
