package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// PurchaseRepository mirrors the append-only pack-purchase audit locally so
// aggregate reporting works offline.
type PurchaseRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPurchaseRepository(db *sql.DB, logger zerolog.Logger) *PurchaseRepository {
	return &PurchaseRepository{db: db, logger: logger}
}

func (r *PurchaseRepository) Create(ctx context.Context, p domain.PackPurchase) error {
	received, err := json.Marshal(p.PlayersReceived)
	if err != nil {
		return fmt.Errorf("encode players received: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO pack_purchases (id, user_id, pack_id, cost, purchased_at, players_received, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.PackID, p.Cost, p.PurchasedAt, received, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert pack purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) ListByUser(ctx context.Context, userID string) ([]domain.PackPurchase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, pack_id, cost, purchased_at, players_received
		 FROM pack_purchases WHERE user_id = ? ORDER BY purchased_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pack purchases: %w", err)
	}
	defer rows.Close()

	var out []domain.PackPurchase
	for rows.Next() {
		var (
			p        domain.PackPurchase
			received []byte
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PackID, &p.Cost, &p.PurchasedAt, &received); err != nil {
			return nil, fmt.Errorf("scan pack purchase: %w", err)
		}
		if err := json.Unmarshal(received, &p.PlayersReceived); err != nil {
			r.logger.Warn().Err(err).Str("purchase_id", p.ID).Msg("corrupt players_received payload")
			p.PlayersReceived = nil
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
