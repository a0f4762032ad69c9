package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"restaurant-hub/internal/api"
	"restaurant-hub/internal/audit"
	"restaurant-hub/internal/config"
	"restaurant-hub/internal/database"
	"restaurant-hub/internal/hub"
	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/messaging"
	"restaurant-hub/internal/order"
	"restaurant-hub/internal/seed"
	"restaurant-hub/internal/staff"
)

// Restaurant is a fully wired hub with its stores and outputs.
type Restaurant struct {
	Hub     *hub.Hub
	Ledger  *inventory.Ledger
	Catalog *menu.Catalog
	Orders  *order.Sequence

	db      *database.DB
	closers []io.Closer
	logger  *logger.Logger
}

type state struct {
	stock       []inventory.Ingredient
	items       []menu.Item
	outstanding []string
	lastOrderID int64
}

// Build loads the restaurant state and registers the staff. With a database
// configured, the latest snapshot wins over the seed files.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Restaurant, error) {
	requestID := logger.GenerateRequestID()
	r := &Restaurant{logger: log}
	built := false
	defer func() {
		if !built {
			r.close()
		}
	}()

	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		r.db = db
		if err := r.db.RunMigrations(ctx, os.DirFS(cfg.Database.MigrationsPath)); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	loader := seed.NewLoader(log)

	snap, err := r.restore(ctx)
	if err != nil {
		return nil, err
	}
	st := state{}
	if snap != nil {
		st = state{stock: snap.Ingredients, items: snap.Menu, outstanding: snap.Outstanding, lastOrderID: snap.LastOrderID}
		log.Info("snapshot_restored", "Restored ledger and menu from snapshot", requestID, map[string]interface{}{
			"snapshot_id":   snap.ID,
			"last_order_id": snap.LastOrderID,
		})
	} else if st.stock, err = loader.Ingredients(cfg.Restaurant.IngredientsFile); err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}

	sinks := inventory.MultiSink{inventory.NewFileSink(cfg.Restaurant.RequestsFile)}
	if r.db != nil {
		sinks = append(sinks, database.NewRequestSink(r.db))
	}
	r.Ledger = inventory.NewLedger(st.stock, sinks, log)
	r.Ledger.Resume(st.outstanding)

	if snap == nil {
		if st.items, err = loader.Menu(cfg.Restaurant.MenuFile, r.Ledger.Has); err != nil {
			return nil, fmt.Errorf("failed to load menu: %w", err)
		}
	}
	r.Catalog = menu.NewCatalog(st.items)
	r.Orders = order.NewSequence(st.lastOrderID)

	opts, err := r.outputs(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	r.Hub = hub.New(cfg.Restaurant.Tables, opts...)

	employees, err := loader.Staff(cfg.Restaurant.StaffFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	deps := staff.Deps{
		Ledger:  r.Ledger,
		Catalog: r.Catalog,
		Bus:     r.Hub,
		Orders:  r.Orders,
		Tables:  cfg.Restaurant.Tables,
		Logger:  log,
	}
	for _, e := range employees {
		a, err := staff.New(e.Name, e.Role, deps)
		if err != nil {
			return nil, err
		}
		if err := r.Hub.Register(a); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", e.Name, err)
		}
	}

	log.Info("restaurant_ready", "Restaurant hub built", requestID, map[string]interface{}{
		"ingredients":  len(st.stock),
		"menu_items":   len(st.items),
		"staff":        len(employees),
		"tables":       cfg.Restaurant.Tables,
		"skipped_rows": len(loader.Skipped),
		"feed":         cfg.Feed.Driver,
	})
	built = true
	return r, nil
}

// restore returns the latest snapshot, or nil when there is none to use.
func (r *Restaurant) restore(ctx context.Context) (*database.Snapshot, error) {
	if r.db == nil {
		return nil, nil
	}
	snap, err := r.db.LatestSnapshot(ctx)
	if errors.Is(err, database.ErrNoSnapshot) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// outputs opens the audit log and the event feed.
func (r *Restaurant) outputs(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]hub.Option, error) {
	fileLog, err := audit.OpenFile(cfg.Restaurant.AuditFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	r.closers = append(r.closers, fileLog)

	auditors := audit.Multi{fileLog}
	if r.db != nil {
		auditors = append(auditors, database.NewAuditSink(r.db))
	}
	opts := []hub.Option{hub.WithLogger(log), hub.WithAuditor(auditors)}

	switch cfg.Feed.Driver {
	case config.FeedAMQP:
		conn, err := messaging.New(ctx, cfg.RabbitMQURL(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize messaging: %w", err)
		}
		publisher := messaging.NewPublisher(conn, log)
		r.closers = append(r.closers, publisher)
		opts = append(opts, hub.WithFeed(publisher))
	case config.FeedNATS:
		feed, err := messaging.NewNATSFeed(cfg.NATS.URL, log)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, feed)
		opts = append(opts, hub.WithFeed(feed))
	}
	return opts, nil
}

// Snapshot captures the ledger, menu and order counter.
func (r *Restaurant) Snapshot() *database.Snapshot {
	return &database.Snapshot{
		LastOrderID: r.Orders.Last(),
		Ingredients: r.Ledger.Stock(),
		Outstanding: r.Ledger.Outstanding(),
		Menu:        r.Catalog.Items(),
	}
}

// HealthChecks lists the dependencies GET /health reports on.
func (r *Restaurant) HealthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{}
	if r.db != nil {
		checks["database"] = r.db.Ping
	}
	return checks
}

// Shutdown stops the hub, saves a snapshot when a database is configured and
// closes every output. The snapshot is best effort.
func (r *Restaurant) Shutdown(ctx context.Context) error {
	r.Hub.Close()

	if r.db != nil {
		if err := r.db.SaveSnapshot(ctx, r.Snapshot()); err != nil {
			r.logger.Error("snapshot_failed", "Failed to save snapshot", "shutdown", err, nil)
		}
	}
	return r.close()
}

func (r *Restaurant) close() error {
	if r.Hub != nil {
		r.Hub.Close()
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	r.closers = nil
	if r.db != nil {
		r.db.Close()
		r.db = nil
	}
	return errors.Join(errs...)
}
