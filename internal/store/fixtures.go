package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fixture-tracker/internal/constants"
	"fixture-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// ErrNotFound reports that no record exists for the requested fixture ID.
var ErrNotFound = errors.New("fixture not found")

// FixtureStore is the persistence contract the ingestion pipeline depends
// on: point lookup, batched upsert, and a full-collection streaming read for
// downstream reporting.
type FixtureStore interface {
	Get(ctx context.Context, fixtureID string) (*domain.FixtureRecord, error)
	BatchSet(ctx context.Context, records []domain.FixtureRecord) error
	Stream(ctx context.Context, fn func(domain.FixtureRecord) error) error
}

// FixtureRepository implements FixtureStore on SQLite, storing each record as
// a JSON document keyed by fixture ID.
type FixtureRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewFixtureRepository(db *sql.DB, logger zerolog.Logger) *FixtureRepository {
	return &FixtureRepository{db: db, logger: logger}
}

func (r *FixtureRepository) Get(ctx context.Context, fixtureID string) (*domain.FixtureRecord, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM fixtures WHERE fixture_id = ?`, fixtureID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching fixture %s: %w", fixtureID, err)
	}

	var rec domain.FixtureRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decoding fixture %s: %w", fixtureID, err)
	}
	return &rec, nil
}

// BatchSet upserts all records in one transaction. Statements are issued in
// bounded slices so a large batch does not hold a single huge statement.
func (r *FixtureRepository) BatchSet(ctx context.Context, records []domain.FixtureRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fixtures (fixture_id, date, league_id, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (fixture_id) DO UPDATE SET
			date = excluded.date,
			league_id = excluded.league_id,
			payload = excluded.payload,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < len(records); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(records))

		for _, rec := range records[i:end] {
			payload, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encoding fixture %s: %w", rec.FixtureID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				rec.FixtureID, rec.Fixture.Date, rec.League.ID, payload, rec.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to upsert fixture %s: %w", rec.FixtureID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}

	r.logger.Debug().Int("count", len(records)).Msg("fixture batch committed")
	return nil
}

// Stream reads the whole collection in fixture-ID order and hands each record
// to fn. A non-nil error from fn stops the stream.
func (r *FixtureRepository) Stream(ctx context.Context, fn func(domain.FixtureRecord) error) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM fixtures ORDER BY fixture_id`)
	if err != nil {
		return fmt.Errorf("streaming fixtures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scanning fixture row: %w", err)
		}

		var rec domain.FixtureRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			r.logger.Warn().Err(err).Msg("skipping undecodable fixture row")
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}
