// Package logging holds the logger shared by all oxmapper packages.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"oxmapper/internal/logging/logfields"
)

// DefaultLogger is the base logger. Packages derive subsystem loggers from it.
var DefaultLogger = initializeDefaultLogger()

func initializeDefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	return logger
}

// ForSubsys returns an entry tagged with the given subsystem.
func ForSubsys(subsys string) *logrus.Entry {
	return DefaultLogger.WithField(logfields.LogSubsys, subsys)
}

// SetLevel parses and applies a level name such as "debug".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	DefaultLogger.SetLevel(lvl)

	return nil
}

// SetOutput redirects the default logger.
func SetOutput(w io.Writer) {
	DefaultLogger.SetOutput(w)
}

// Discard returns a logger that drops everything, for tests and callers
// that do not want output.
func Discard() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}
