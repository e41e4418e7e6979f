package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteGateway persists ledgers in a SQLite database, one row per account
// key. It satisfies the same contract as FileGateway and suits hosts that
// already carry a database for other state.
type SQLiteGateway struct {
	db     *sql.DB
	logger Logger
}

// NewSQLiteGateway opens (or creates) the database at dataSourceName and
// ensures the ledger table exists.
func NewSQLiteGateway(dataSourceName string, logger Logger) (*SQLiteGateway, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS ledgers (
    account_key TEXT PRIMARY KEY,
    payload     TEXT NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger table: %w", err)
	}

	return &SQLiteGateway{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}

// Load reads the ledger row for an account key. A missing row or a payload
// that does not parse yields (nil, nil).
func (g *SQLiteGateway) Load(ctx context.Context, accountKey string) (*AccountLedger, error) {
	var payload string
	err := g.db.QueryRowContext(ctx,
		"SELECT payload FROM ledgers WHERE account_key = ?", accountKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		g.logger.Warn("ledger %s unreadable, starting fresh: %v", accountKey, err)
		return nil, nil
	}

	ledger := &AccountLedger{}
	if err := json.Unmarshal([]byte(payload), ledger); err != nil {
		g.logger.Warn("ledger %s does not parse, starting fresh: %v", accountKey, err)
		return nil, nil
	}
	ledger.normalize()
	return ledger, nil
}

// Save upserts the ledger row for an account key.
func (g *SQLiteGateway) Save(ctx context.Context, accountKey string, ledger *AccountLedger) error {
	payload, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger %s: %w", accountKey, err)
	}
	_, err = g.db.ExecContext(ctx, `
INSERT INTO ledgers (account_key, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(account_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		accountKey, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store ledger %s: %w", accountKey, err)
	}
	return nil
}
