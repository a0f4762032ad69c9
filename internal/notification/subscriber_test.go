package notification

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/messaging"
	"restaurant-hub/internal/models"
)

type sliceSource struct {
	msgs []*models.EventMessage
	err  error
}

func (s *sliceSource) Consume(ctx context.Context, handler messaging.MessageHandler) error {
	for _, msg := range s.msgs {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return s.err
}

func TestFormat(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		msg  models.EventMessage
		want []string
	}{
		{
			name: "order",
			msg:  models.EventMessage{Kind: "ORDER", OrderID: 4, Table: 2, Origin: "Alice", Total: 9, Items: make([]models.ItemView, 2)},
			want: []string{"2024-05-01 12:30:00", "Order 4", "table 2", "Alice", "2 items", "total 9"},
		},
		{
			name: "claim",
			msg:  models.EventMessage{Kind: "REMOVE_ORDER", OrderID: 4, Table: 2, Excluded: "Bob"},
			want: []string{"being prepared by Bob"},
		},
		{
			name: "removed",
			msg:  models.EventMessage{Kind: "REMOVE_ORDER", OrderID: 4, Table: 2},
			want: []string{"left the kitchen"},
		},
		{
			name: "ready",
			msg:  models.EventMessage{Kind: "ORDER_READY", OrderID: 4, Table: 2, Target: "Alice"},
			want: []string{"ready for Alice"},
		},
		{
			name: "unable",
			msg:  models.EventMessage{Kind: "UNABLE_TO_COMPLETE", OrderID: 5, Table: 1, Info: "not enough Patties"},
			want: []string{"could not be completed", "not enough Patties"},
		},
		{
			name: "serve",
			msg:  models.EventMessage{Kind: "SERVE", OrderID: 4, Table: 2, Origin: "Alice"},
			want: []string{"served to table 2 by Alice"},
		},
		{
			name: "unknown kind falls back to summary",
			msg:  models.EventMessage{Kind: "REFUND", OrderID: 4, Table: 2},
			want: []string{"REFUND order 4 (table 2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.msg.Timestamp = at
			got := Format(&tt.msg)
			for _, part := range tt.want {
				if !strings.Contains(got, part) {
					t.Errorf("Format() = %q, missing %q", got, part)
				}
			}
		})
	}
}

func TestSubscriberPrintsEachMessage(t *testing.T) {
	var out bytes.Buffer
	src := &sliceSource{
		msgs: []*models.EventMessage{
			{Kind: "ORDER", OrderID: 1, Table: 1, Origin: "Alice"},
			{Kind: "ORDER_READY", OrderID: 1, Table: 1, Target: "Alice"},
		},
		err: context.Canceled,
	}

	sub := NewSubscriber(src, &out, logger.NewNop())
	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "ready for Alice") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestSubscriberReturnsSourceError(t *testing.T) {
	boom := errors.New("broker gone")
	sub := NewSubscriber(&sliceSource{err: boom}, &bytes.Buffer{}, logger.NewNop())
	if err := sub.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start error = %v, want %v", err, boom)
	}
}
