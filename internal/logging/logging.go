package logging

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "request_id"

var logger = logrus.New()

// InitLogger configures the process-wide logger. format is "text" or "json".
func InitLogger(level logrus.Level, format string) {
	logger.SetOutput(os.Stdout)
	logger.SetLevel(level)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func GetLogger() *logrus.Logger {
	return logger
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Entry returns a log entry carrying the request id found in ctx, if any.
func Entry(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if id := RequestID(ctx); id != "" {
		entry = entry.WithField(string(RequestIDKey), id)
	}
	return entry
}
