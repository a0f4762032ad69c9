package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/menu"
)

var ErrNoSnapshot = errors.New("no snapshot saved")

// Snapshot is the ledger and catalog state saved at shutdown.
type Snapshot struct {
	ID          string
	TakenAt     time.Time
	LastOrderID int64
	Ingredients []inventory.Ingredient
	Outstanding []string
	Menu        []menu.Item
}

// SaveSnapshot stores snap in one transaction and fills in its id and time.
func (db *DB) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	snap.ID = uuid.NewString()
	snap.TakenAt = time.Now().UTC()

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, InsertSnapshotSQL, snap.ID, snap.TakenAt, snap.LastOrderID); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for _, ing := range snap.Ingredients {
		outstanding := slices.Contains(snap.Outstanding, ing.Name)
		_, err := tx.Exec(ctx, InsertSnapshotIngredientSQL,
			snap.ID, ing.Name, ing.Quantity, ing.Threshold, ing.RequestAmount, outstanding)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient %s: %w", ing.Name, err)
		}
	}

	for _, item := range snap.Menu {
		recipe, err := json.Marshal(item.Recipe)
		if err != nil {
			return fmt.Errorf("failed to encode recipe of %s: %w", item.Name, err)
		}
		if _, err := tx.Exec(ctx, InsertSnapshotMenuItemSQL, snap.ID, item.Name, item.Price, recipe); err != nil {
			return fmt.Errorf("failed to insert menu item %s: %w", item.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	db.logger.Info("snapshot_saved", "Saved ledger and menu snapshot", "shutdown", map[string]interface{}{
		"snapshot_id": snap.ID,
		"ingredients": len(snap.Ingredients),
		"menu_items":  len(snap.Menu),
	})
	return nil
}

// LatestSnapshot loads the most recent snapshot, or ErrNoSnapshot.
func (db *DB) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := db.QueryRow(ctx, GetLatestSnapshotSQL).Scan(&snap.ID, &snap.TakenAt, &snap.LastOrderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := db.loadSnapshotIngredients(ctx, snap); err != nil {
		return nil, err
	}
	if err := db.loadSnapshotMenu(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (db *DB) loadSnapshotIngredients(ctx context.Context, snap *Snapshot) error {
	rows, err := db.Query(ctx, GetSnapshotIngredientsSQL, snap.ID)
	if err != nil {
		return fmt.Errorf("failed to get snapshot ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing inventory.Ingredient
		var outstanding bool
		if err := rows.Scan(&ing.Name, &ing.Quantity, &ing.Threshold, &ing.RequestAmount, &outstanding); err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}
		snap.Ingredients = append(snap.Ingredients, ing)
		if outstanding {
			snap.Outstanding = append(snap.Outstanding, ing.Name)
		}
	}
	return rows.Err()
}

func (db *DB) loadSnapshotMenu(ctx context.Context, snap *Snapshot) error {
	rows, err := db.Query(ctx, GetSnapshotMenuItemsSQL, snap.ID)
	if err != nil {
		return fmt.Errorf("failed to get snapshot menu: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item menu.Item
		var recipe []byte
		if err := rows.Scan(&item.Name, &item.Price, &recipe); err != nil {
			return fmt.Errorf("failed to scan menu item: %w", err)
		}
		if err := json.Unmarshal(recipe, &item.Recipe); err != nil {
			return fmt.Errorf("failed to decode recipe of %s: %w", item.Name, err)
		}
		snap.Menu = append(snap.Menu, item)
	}
	return rows.Err()
}
