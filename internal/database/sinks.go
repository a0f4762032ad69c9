package database

import (
	"context"
	"encoding/json"
	"fmt"

	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/models"
)

// RequestSink stores resupply requests in the restock_requests table.
type RequestSink struct {
	db *DB
}

func NewRequestSink(db *DB) *RequestSink {
	return &RequestSink{db: db}
}

func (s *RequestSink) Record(ctx context.Context, req inventory.Request) error {
	if err := s.db.Exec(ctx, InsertRestockRequestSQL, req.Ingredient, req.Amount, req.At); err != nil {
		return fmt.Errorf("failed to insert restock request: %w", err)
	}
	return nil
}

// AuditSink stores dispatched events in the event_audit table.
type AuditSink struct {
	db *DB
}

func NewAuditSink(db *DB) *AuditSink {
	return &AuditSink{db: db}
}

func (s *AuditSink) Audit(ctx context.Context, msg *models.EventMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	err = s.db.Exec(ctx, InsertEventAuditSQL, msg.ID, msg.Kind, msg.OrderID, msg.Table, payload, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert event audit: %w", err)
	}
	return nil
}
