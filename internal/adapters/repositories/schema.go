package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the deliveries table when it does not exist yet.
// Used by the dbtool bootstrap command and by tests; the server never calls it.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		tracking_number VARCHAR(8) NOT NULL,
		status TEXT NOT NULL,
		location TEXT NOT NULL,
		CONSTRAINT deliveries_tracking_number_key UNIQUE (tracking_number)
	);
	`

	statements := []string{
		createDeliveriesQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
