package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/config"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_events (
	game_id     TEXT        NOT NULL,
	sequence    INTEGER     NOT NULL,
	name        TEXT        NOT NULL,
	event_id    TEXT        NOT NULL,
	action      TEXT        NOT NULL DEFAULT '',
	context_id  TEXT        NOT NULL DEFAULT '',
	source_id   TEXT        NOT NULL DEFAULT '',
	player_id   TEXT        NOT NULL DEFAULT '',
	target_ids  TEXT[]      NOT NULL DEFAULT '{}',
	element     TEXT        NOT NULL DEFAULT '',
	amount      INTEGER     NOT NULL DEFAULT 0,
	cancelled   BOOLEAN     NOT NULL DEFAULT FALSE,
	metadata    JSONB       NOT NULL DEFAULT '{}',
	recorded_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (game_id, sequence)
);
CREATE INDEX IF NOT EXISTS game_events_name_idx ON game_events (game_id, name);
`

// PostgresJournal stores event records in the game_events table.
type PostgresJournal struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresJournal connects to the configured database and makes sure the
// schema exists.
func NewPostgresJournal(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresJournal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	j := &PostgresJournal{db: db, logger: logger}
	if err := j.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("event journal connected",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database),
	)
	return j, nil
}

// Migrate creates the journal table if it is missing.
func (j *PostgresJournal) Migrate(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate game_events: %w", err)
	}
	return nil
}

// Append writes records for gameID in one transaction. Records already
// stored under the same sequence are left untouched.
func (j *PostgresJournal) Append(ctx context.Context, gameID string, records []rules.Record) error {
	if len(records) == 0 {
		return nil
	}
	query := `
		INSERT INTO game_events (game_id, sequence, name, event_id, action, context_id, source_id,
			player_id, target_ids, element, amount, cancelled, metadata, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (game_id, sequence) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, r := range records {
		targets := r.TargetIDs
		if targets == nil {
			targets = []string{}
		}
		meta := r.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		batch.Queue(query,
			gameID,
			r.Sequence,
			string(r.Name),
			r.ID,
			r.Action,
			r.ContextID,
			r.SourceID,
			r.PlayerID,
			targets,
			r.Element,
			r.Amount,
			r.Cancelled,
			meta,
			r.Timestamp,
		)
	}

	err := pgx.BeginFunc(ctx, j.db, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to append %d records for game %s: %w", len(records), gameID, err)
	}
	j.logger.Debug("journaled events",
		zap.String("game_id", gameID),
		zap.Int("records", len(records)),
	)
	return nil
}

// Records returns the journal of gameID in sequence order.
func (j *PostgresJournal) Records(ctx context.Context, gameID string) ([]rules.Record, error) {
	query := `
		SELECT sequence, name, event_id, action, context_id, source_id, player_id,
			target_ids, element, amount, cancelled, metadata, recorded_at
		FROM game_events WHERE game_id = $1 ORDER BY sequence
	`

	rows, err := j.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []rules.Record
	for rows.Next() {
		var (
			r    rules.Record
			name string
		)
		if err := rows.Scan(
			&r.Sequence,
			&name,
			&r.ID,
			&r.Action,
			&r.ContextID,
			&r.SourceID,
			&r.PlayerID,
			&r.TargetIDs,
			&r.Element,
			&r.Amount,
			&r.Cancelled,
			&r.Metadata,
			&r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Name = rules.EventName(name)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteGame removes every record of gameID.
func (j *PostgresJournal) DeleteGame(ctx context.Context, gameID string) error {
	_, err := j.db.Exec(ctx, `DELETE FROM game_events WHERE game_id = $1`, gameID)
	return err
}

// Close releases the connection pool.
func (j *PostgresJournal) Close() {
	j.db.Close()
}
