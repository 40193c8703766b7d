package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// LedgerRepository persists per-user ledger snapshots in the local store.
// The snapshot payload is an opaque JSON blob from the store's perspective.
type LedgerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLedgerRepository(db *sql.DB, logger zerolog.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, logger: logger}
}

// Load returns the stored snapshot for a user; ok=false when none exists.
func (r *LedgerRepository) Load(ctx context.Context, userID string) (domain.GameState, bool, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM ledger_snapshots WHERE user_id = ?`, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GameState{}, false, nil
	}
	if err != nil {
		return domain.GameState{}, false, fmt.Errorf("load ledger snapshot: %w", err)
	}

	var state domain.GameState
	if err := json.Unmarshal(payload, &state); err != nil {
		// A corrupt snapshot is unrecoverable; treat as missing rather than
		// blocking the session from starting.
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("discarding corrupt ledger snapshot")
		return domain.GameState{}, false, nil
	}
	if state.Collection == nil {
		state.Collection = []string{}
	}
	return state, true, nil
}

// Save upserts the snapshot for a user.
func (r *LedgerRepository) Save(ctx context.Context, userID string, state domain.GameState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ledger_snapshots (user_id, payload, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userID, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save ledger snapshot: %w", err)
	}
	return nil
}
