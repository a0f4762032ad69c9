package logger

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured JSON log lines tagged with the service, host,
// action and request id.
type Logger struct {
	service  string
	hostname string
	zl       *zap.Logger
}

// New creates a JSON logger writing to stdout at the given level
// ("debug", "info", "warn", "error"; unknown values fall back to info).
func New(service, level string) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		ParseLevel(level),
	)
	return NewWithCore(service, core)
}

// NewWithCore builds a Logger on top of an existing zap core.
func NewWithCore(service string, core zapcore.Core) *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		service:  service,
		hostname: hostname,
		zl:       zap.New(core),
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{service: "nop", zl: zap.NewNop()}
}

// ParseLevel maps a config string to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// GenerateRequestID returns a fresh id used to correlate log lines of one operation.
func GenerateRequestID() string {
	return uuid.NewString()
}

type requestIDKey struct{}

// WithRequestID stores id in ctx so the operations it reaches log under it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "" if there is none.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Service returns the service name this logger was created for.
func (l *Logger) Service() string {
	return l.service
}

func (l *Logger) Info(action, message, requestID string, fields map[string]interface{}) {
	l.zl.Info(message, l.attrs(action, requestID, fields)...)
}

func (l *Logger) Debug(action, message, requestID string, fields map[string]interface{}) {
	l.zl.Debug(message, l.attrs(action, requestID, fields)...)
}

func (l *Logger) Warn(action, message, requestID string, fields map[string]interface{}) {
	l.zl.Warn(message, l.attrs(action, requestID, fields)...)
}

func (l *Logger) Error(action, message, requestID string, err error, fields map[string]interface{}) {
	attrs := l.attrs(action, requestID, fields)
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	l.zl.Error(message, attrs...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) attrs(action, requestID string, fields map[string]interface{}) []zap.Field {
	attrs := make([]zap.Field, 0, 4+len(fields))
	attrs = append(attrs,
		zap.String("service", l.service),
		zap.String("hostname", l.hostname),
		zap.String("action", action),
		zap.String("request_id", requestID),
	)
	for k, v := range fields {
		attrs = append(attrs, zap.Any(k, v))
	}
	return attrs
}
