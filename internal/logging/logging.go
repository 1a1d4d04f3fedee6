// Package logging builds the logrus logger shared by the command line and
// the per-node runners.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out at the named level. Unknown
// levels fall back to info, or debug when verbose is set.
func New(out io.Writer, level string, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
	}
	if verbose && logger.Level < logrus.DebugLevel {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// Node returns an entry tagged with the rank of one node.
func Node(logger *logrus.Logger, rank int) *logrus.Entry {
	return logger.WithField("rank", rank)
}
