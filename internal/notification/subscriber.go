package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/messaging"
	"restaurant-hub/internal/models"
)

// Source delivers feed messages to a handler until ctx is done.
// messaging.Consumer and messaging.NATSFeed both satisfy it.
type Source interface {
	Consume(ctx context.Context, handler messaging.MessageHandler) error
}

// Subscriber prints a human-readable line for every event on the feed.
type Subscriber struct {
	source Source
	logger *logger.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(source Source, out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		source: source,
		logger: log,
		out:    out,
	}
}

// Start consumes the feed until ctx is cancelled. Cancellation is a clean stop.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.source.Consume(ctx, s.handleNotification)
	if errors.Is(err, context.Canceled) {
		s.logger.Info("graceful_shutdown", "Notification subscriber stopped", requestID, nil)
		return nil
	}
	return err
}

func (s *Subscriber) handleNotification(ctx context.Context, msg *models.EventMessage) error {
	s.logger.Debug("notification_received", "Received event notification", logger.RequestID(ctx), map[string]interface{}{
		"kind":     msg.Kind,
		"order_id": msg.OrderID,
		"table":    msg.Table,
	})

	s.mu.Lock()
	_, err := fmt.Fprintln(s.out, Format(msg))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return nil
}

// Format renders msg as a console line.
func Format(msg *models.EventMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	switch event.Kind(msg.Kind) {
	case event.KindOrder:
		return fmt.Sprintf("📝 [%s] Order %d for table %d taken by %s (%d items, total %d).",
			timestamp, msg.OrderID, msg.Table, msg.Origin, len(msg.Items), msg.Total)
	case event.KindRemoveOrder:
		if msg.Excluded != "" {
			return fmt.Sprintf("🍳 [%s] Order %d for table %d is being prepared by %s.",
				timestamp, msg.OrderID, msg.Table, msg.Excluded)
		}
		return fmt.Sprintf("🧹 [%s] Order %d for table %d left the kitchen.",
			timestamp, msg.OrderID, msg.Table)
	case event.KindOrderReady:
		return fmt.Sprintf("✅ [%s] Order %d for table %d is ready for %s.",
			timestamp, msg.OrderID, msg.Table, msg.Target)
	case event.KindUnableToComplete:
		return fmt.Sprintf("❌ [%s] Order %d for table %d could not be completed: %s",
			timestamp, msg.OrderID, msg.Table, msg.Info)
	case event.KindServe:
		return fmt.Sprintf("🎉 [%s] Order %d served to table %d by %s.",
			timestamp, msg.OrderID, msg.Table, msg.Origin)
	default:
		return fmt.Sprintf("📋 [%s] %s", timestamp, msg.Summary())
	}
}
