package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// ArchetypeRepository is the local tier of the archetype cache.
type ArchetypeRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewArchetypeRepository(db *sql.DB, logger zerolog.Logger) *ArchetypeRepository {
	return &ArchetypeRepository{db: db, logger: logger}
}

func (r *ArchetypeRepository) Get(ctx context.Context, playerID string) (domain.ArchetypeRecord, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT player_id, player_name, archetype, sub_archetype, confidence,
		        play_style_summary, image_prompt, crest_seed, crest_image_url,
		        crest_image_file_id, created_at
		 FROM archetypes WHERE player_id = ?`, playerID)

	rec, err := scanArchetype(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArchetypeRecord{}, false, nil
	}
	if err != nil {
		return domain.ArchetypeRecord{}, false, fmt.Errorf("get archetype: %w", err)
	}
	return rec, true, nil
}

func (r *ArchetypeRepository) GetAll(ctx context.Context) (map[string]domain.ArchetypeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id, player_name, archetype, sub_archetype, confidence,
		        play_style_summary, image_prompt, crest_seed, crest_image_url,
		        crest_image_file_id, created_at
		 FROM archetypes`)
	if err != nil {
		return nil, fmt.Errorf("list archetypes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ArchetypeRecord)
	for rows.Next() {
		rec, err := scanArchetype(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archetype: %w", err)
		}
		out[rec.PlayerID] = rec
	}
	return out, rows.Err()
}

func (r *ArchetypeRepository) Put(ctx context.Context, rec domain.ArchetypeRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO archetypes (player_id, player_name, archetype, sub_archetype,
		                         confidence, play_style_summary, image_prompt,
		                         crest_seed, crest_image_url, crest_image_file_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (player_id) DO UPDATE SET
		        player_name = excluded.player_name,
		        archetype = excluded.archetype,
		        sub_archetype = excluded.sub_archetype,
		        confidence = excluded.confidence,
		        play_style_summary = excluded.play_style_summary,
		        image_prompt = excluded.image_prompt,
		        crest_seed = excluded.crest_seed,
		        crest_image_url = excluded.crest_image_url,
		        crest_image_file_id = excluded.crest_image_file_id,
		        created_at = excluded.created_at`,
		rec.PlayerID, rec.PlayerName, rec.Archetype, rec.SubArchetype,
		rec.Confidence, rec.PlayStyleSummary, rec.ImagePrompt,
		rec.CrestSeed, rec.CrestImageURL, rec.CrestImageFileID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put archetype: %w", err)
	}
	return nil
}

func (r *ArchetypeRepository) Delete(ctx context.Context, playerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM archetypes WHERE player_id = ?`, playerID)
	if err != nil {
		return fmt.Errorf("delete archetype: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArchetype(row rowScanner) (domain.ArchetypeRecord, error) {
	var rec domain.ArchetypeRecord
	err := row.Scan(
		&rec.PlayerID, &rec.PlayerName, &rec.Archetype, &rec.SubArchetype,
		&rec.Confidence, &rec.PlayStyleSummary, &rec.ImagePrompt,
		&rec.CrestSeed, &rec.CrestImageURL, &rec.CrestImageFileID, &rec.CreatedAt,
	)
	return rec, err
}
