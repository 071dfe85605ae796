package store

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"fixture-tracker/internal/database"
	"fixture-tracker/internal/domain"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *FixtureRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// A single connection keeps every statement on the same in-memory DB.
	db.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigrations(db, zerolog.Nop()))

	return NewFixtureRepository(db, zerolog.Nop())
}

func record(id int64, date string) domain.FixtureRecord {
	return domain.FixtureRecord{
		FixtureID: strconv.FormatInt(id, 10),
		Fixture:   domain.Fixture{ID: id, Date: date},
		League:    domain.LeagueInfo{ID: 39, Name: "Premier League"},
		Teams: domain.Teams{
			Home: domain.TeamRef{ID: 1, Name: "Arsenal"},
			Away: domain.TeamRef{ID: 2, Name: "Chelsea"},
		},
		Events:    []domain.Event{},
		UpdatedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Get(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBatchSetAndGet(t *testing.T) {
	repo := newTestRepo(t)

	recs := []domain.FixtureRecord{
		record(1, "2024-10-01T15:00:00+00:00"),
		record(2, "2024-10-02T17:30:00+00:00"),
	}
	require.NoError(t, repo.BatchSet(context.Background(), recs))

	got, err := repo.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-01T15:00:00+00:00", got.Fixture.Date)
	assert.Equal(t, "Arsenal", got.Teams.Home.Name)
	assert.Equal(t, 39, got.League.ID)
}

func TestBatchSetOverwritesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.BatchSet(ctx, []domain.FixtureRecord{record(1, "2024-10-01T15:00:00+00:00")}))

	updated := record(1, "2024-10-08T20:00:00+00:00")
	updated.Events = []domain.Event{{Type: "Goal"}}
	require.NoError(t, repo.BatchSet(ctx, []domain.FixtureRecord{updated}))

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-08T20:00:00+00:00", got.Fixture.Date)
	require.Len(t, got.Events, 1)
}

func TestBatchSetEmptyIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.BatchSet(context.Background(), nil))
}

func TestStreamYieldsAllRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var recs []domain.FixtureRecord
	for i := int64(1); i <= 25; i++ {
		recs = append(recs, record(i, "2024-10-01T15:00:00+00:00"))
	}
	require.NoError(t, repo.BatchSet(ctx, recs))

	var seen []string
	err := repo.Stream(ctx, func(rec domain.FixtureRecord) error {
		seen = append(seen, rec.FixtureID)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 25)
}

func TestStreamStopsOnCallbackError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.BatchSet(ctx, []domain.FixtureRecord{
		record(1, "2024-10-01T15:00:00+00:00"),
		record(2, "2024-10-01T15:00:00+00:00"),
	}))

	count := 0
	err := repo.Stream(ctx, func(domain.FixtureRecord) error {
		count++
		return assert.AnError
	})
	require.Error(t, err)
	assert.Equal(t, 1, count)
}
