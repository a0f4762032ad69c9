package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Request is one resupply request produced by the ledger.
type Request struct {
	Ingredient string    `json:"ingredient"`
	Amount     int       `json:"amount"`
	At         time.Time `json:"requested_at"`
}

// Line renders the request the way suppliers read it: "<ingredient>, <amount>".
func (r Request) Line() string {
	return fmt.Sprintf("%s, %d", r.Ingredient, r.Amount)
}

// RequestSink persists resupply requests to an append-only store.
type RequestSink interface {
	Record(ctx context.Context, req Request) error
}

type DiscardSink struct{}

func (DiscardSink) Record(context.Context, Request) error { return nil }

// FileSink appends one line per request to a text file.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Record(_ context.Context, req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open requests file: %w", err)
	}
	if _, err := fmt.Fprintln(f, req.Line()); err != nil {
		f.Close()
		return fmt.Errorf("write request: %w", err)
	}
	return f.Close()
}

// MultiSink records to every sink and joins the failures.
type MultiSink []RequestSink

func (m MultiSink) Record(ctx context.Context, req Request) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
