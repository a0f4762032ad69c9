package audit

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"restaurant-hub/internal/models"
)

// Auditor records dispatched events.
type Auditor interface {
	Audit(ctx context.Context, msg *models.EventMessage) error
}

// FileLog appends one timestamped JSON line per event to a file.
type FileLog struct {
	zl   *zap.Logger
	file *os.File
}

// OpenFile opens (or creates) path for appending.
func OpenFile(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return NewFileLog(zapcore.AddSync(f), f), nil
}

// NewFileLog writes audit lines to ws. closer, if not nil, is closed by Close.
func NewFileLog(ws zapcore.WriteSyncer, closer *os.File) *FileLog {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encCfg.LevelKey = ""
	encCfg.CallerKey = ""

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(ws), zapcore.InfoLevel)
	return &FileLog{zl: zap.New(core), file: closer}
}

func (l *FileLog) Audit(_ context.Context, msg *models.EventMessage) error {
	l.zl.Info(msg.Kind,
		zap.String("event_id", msg.ID),
		zap.Int64("order_id", msg.OrderID),
		zap.Int("table_number", msg.Table),
	)
	return nil
}

func (l *FileLog) Close() error {
	err := l.zl.Sync()
	if l.file != nil {
		err = errors.Join(err, l.file.Close())
	}
	return err
}

// Multi sends every event to each auditor and joins their errors.
type Multi []Auditor

func (m Multi) Audit(ctx context.Context, msg *models.EventMessage) error {
	var errs []error
	for _, a := range m {
		if err := a.Audit(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
