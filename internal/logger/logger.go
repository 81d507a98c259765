package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

var (
	log  *logrus.Logger
	base *logrus.Entry
)

func init() {
	log = logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	base = logrus.NewEntry(log)
}

// Setup configures level and format. Every entry carries the service
// name when one is given. Test mode discards output.
func Setup(level, mode, service string) {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		parsedLevel = logrus.InfoLevel
	}
	log.SetLevel(parsedLevel)

	switch mode {
	case "development":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	case "test":
		log.SetOutput(io.Discard)
	}

	base = logrus.NewEntry(log)
	if service != "" {
		base = base.WithField("service", service)
	}
}

func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithContext returns an entry tagged with the trace id carried by ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		return base.WithField("trace_id", traceID)
	}
	return base
}

func WithField(key string, value interface{}) *logrus.Entry {
	return base.WithField(key, value)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return base.WithFields(fields)
}

func WithAccount(accountID string) *logrus.Entry {
	return base.WithField("account_id", accountID)
}

func WithEngine(engine string) *logrus.Entry {
	return base.WithField("engine", engine)
}

func Info(msg string) {
	base.Info(msg)
}

func Warn(msg string) {
	base.Warn(msg)
}

func Debugf(format string, args ...interface{}) {
	base.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	base.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	base.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	base.Errorf(format, args...)
}
