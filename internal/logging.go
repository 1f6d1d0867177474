package internal

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log field keys
const (
	RepositoryFieldKey = "repository"
	KindFieldKey       = "kind"
	CommitFieldKey     = "commit"
	TagFieldKey        = "tag"
)

// NewLogger builds a logrus logger from cfg. Unknown levels fall back to warn,
// "none" discards everything.
func NewLogger(cfg LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	switch strings.ToLower(cfg.Level) {
	case "trace":
		logger.SetLevel(logrus.TraceLevel)
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	case "null", "none":
		logger.SetLevel(logrus.PanicLevel)
		logger.SetOutput(io.Discard)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:          true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
			QuoteEmptyFields:       true,
		})
	}

	return logger
}

func discardLogger() *logrus.Logger {
	return NewLogger(LogConfig{Level: "none"}, io.Discard)
}
