package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/models"
)

// SubjectAll matches every event subject published by NATSFeed.
const SubjectAll = "restaurant.>"

// NATSFeed mirrors events to NATS, one subject per event kind.
type NATSFeed struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewNATSFeed(url string, log *logger.Logger) (*NATSFeed, error) {
	conn, err := nats.Connect(url,
		nats.Name("restaurant-hub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("nats_connected", "Connected to NATS", "startup", map[string]interface{}{
		"url": conn.ConnectedUrl(),
	})
	return &NATSFeed{conn: conn, logger: log}, nil
}

func (f *NATSFeed) Publish(ctx context.Context, msg *models.EventMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	subject := models.GenerateRoutingKey(msg.Kind)
	if err := f.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	f.logger.Debug("message_published", "Published message to NATS", logger.RequestID(ctx), map[string]interface{}{
		"subject":      subject,
		"message_size": len(body),
	})
	return nil
}

// Consume subscribes to every event subject and calls handler for each
// message until ctx is done. Handler errors are logged; NATS core has no redelivery.
func (f *NATSFeed) Consume(ctx context.Context, handler MessageHandler) error {
	ch := make(chan *nats.Msg, 64)
	sub, err := f.conn.ChanSubscribe(SubjectAll, ch)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectAll, err)
	}
	defer sub.Unsubscribe()

	f.logger.Info("consumer_started", fmt.Sprintf("Subscribed to %s", SubjectAll), "", nil)

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case m := <-ch:
			msg, err := Decode(m.Data)
			if err != nil {
				f.logger.Error("message_parsing_failed", "Dropping undecodable message", "", err, map[string]interface{}{
					"subject": m.Subject,
				})
				continue
			}
			if err := handler(logger.WithRequestID(ctx, msg.ID), msg); err != nil {
				f.logger.Error("message_processing_failed", "Failed to process message", msg.ID, err, map[string]interface{}{
					"subject": m.Subject,
				})
			}
		}
	}
}

// Close flushes pending publishes and closes the connection.
func (f *NATSFeed) Close() error {
	return f.conn.Drain()
}
