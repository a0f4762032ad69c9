package database

// Migration queries
const (
	CreateMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	SelectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	InsertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Snapshot queries
const (
	InsertSnapshotSQL = `
		INSERT INTO snapshots (id, taken_at, last_order_id)
		VALUES ($1, $2, $3)`

	InsertSnapshotIngredientSQL = `
		INSERT INTO snapshot_ingredients (snapshot_id, name, quantity, threshold, request_amount, outstanding)
		VALUES ($1, $2, $3, $4, $5, $6)`

	InsertSnapshotMenuItemSQL = `
		INSERT INTO snapshot_menu_items (snapshot_id, name, price, recipe)
		VALUES ($1, $2, $3, $4)`

	GetLatestSnapshotSQL = `
		SELECT id, taken_at, last_order_id
		FROM snapshots
		ORDER BY taken_at DESC
		LIMIT 1`

	GetSnapshotIngredientsSQL = `
		SELECT name, quantity, threshold, request_amount, outstanding
		FROM snapshot_ingredients
		WHERE snapshot_id = $1
		ORDER BY name`

	GetSnapshotMenuItemsSQL = `
		SELECT name, price, recipe
		FROM snapshot_menu_items
		WHERE snapshot_id = $1
		ORDER BY name`
)

// Restock request and audit queries
const (
	InsertRestockRequestSQL = `
		INSERT INTO restock_requests (ingredient, amount, requested_at)
		VALUES ($1, $2, $3)`

	InsertEventAuditSQL = `
		INSERT INTO event_audit (event_id, kind, order_id, table_number, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)
