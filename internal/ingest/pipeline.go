package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fixture-tracker/internal/api"
	"fixture-tracker/internal/constants"
	"fixture-tracker/internal/domain"
	"fixture-tracker/internal/metrics"
	"fixture-tracker/internal/store"

	"github.com/rs/zerolog"
)

// Fetcher is the slice of the API client the pipeline needs.
type Fetcher interface {
	FetchFixtures(ctx context.Context, q api.FixturesQuery) ([]api.FixtureItem, error)
	FetchFixtureDetails(ctx context.Context, fixtureID int64) (*api.Details, error)
}

// Pipeline ingests finished fixtures for one (league, season) pair: it skips
// fixtures whose stored record is already up to date, pulls the detail
// sub-resources for the rest, and commits assembled records in bounded
// batches. Re-running it against unchanged upstream data performs no fetches
// and no writes.
type Pipeline struct {
	fetcher   Fetcher
	fixtures  store.FixtureStore
	logger    zerolog.Logger
	chunkSize int
	now       func() time.Time
}

func NewPipeline(fetcher Fetcher, fixtures store.FixtureStore, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		fixtures:  fixtures,
		logger:    logger,
		chunkSize: constants.ChunkSize,
		now:       time.Now,
	}
}

// Run executes one collection. Per-fixture failures are logged into the sink
// and skipped; an error return means the run aborted, with any batches
// committed so far left in place.
func (p *Pipeline) Run(ctx context.Context, leagueID int, season string, sink ProgressSink) error {
	sink.Log(fmt.Sprintf("Starting data collection for league %d, season %s", leagueID, season))

	items, err := p.fetcher.FetchFixtures(ctx, api.FixturesQuery{
		League: leagueID,
		Season: season,
		Status: constants.FinishedStatuses,
	})
	if err != nil {
		return fmt.Errorf("fetching fixtures for league %d: %w", leagueID, err)
	}

	if len(items) == 0 {
		sink.Log("No fixtures found")
		return nil
	}

	total := len(items)
	totalChunks := (total + p.chunkSize - 1) / p.chunkSize
	sink.Log(fmt.Sprintf("Found %d fixtures to process", total))

	var processed, skipped int

	for ci := 0; ci < totalChunks; ci++ {
		chunk := items[ci*p.chunkSize : min((ci+1)*p.chunkSize, total)]
		sink.Log(fmt.Sprintf("Processing chunk %d of %d", ci+1, totalChunks))

		var batch []domain.FixtureRecord
		for _, item := range chunk {
			fixtureID := strconv.FormatInt(item.Fixture.ID, 10)

			stored, err := p.fixtures.Get(ctx, fixtureID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("looking up fixture %s: %w", fixtureID, err)
			}
			if stored != nil && stored.Fixture.Date == item.Fixture.Date {
				sink.Log(fmt.Sprintf("Skipping fixture %s - already up to date", fixtureID))
				metrics.FixturesSkipped.Inc()
				skipped++
				continue
			}

			sink.Log(fmt.Sprintf("Processing fixture %s: %s vs %s",
				fixtureID, item.Teams.Home.Name, item.Teams.Away.Name))

			rec, err := p.assemble(ctx, fixtureID, item)
			if err != nil {
				p.logger.Error().Err(err).Str("fixture_id", fixtureID).Msg("fixture processing failed")
				sink.Log(fmt.Sprintf("Error processing fixture %s: %v", fixtureID, err))
				continue
			}

			batch = append(batch, *rec)
			processed++
			metrics.FixturesProcessed.Inc()
		}

		if len(batch) > 0 {
			if err := p.fixtures.BatchSet(ctx, batch); err != nil {
				return fmt.Errorf("committing chunk %d: %w", ci+1, err)
			}
			metrics.BatchCommits.Inc()
			sink.Log(fmt.Sprintf("Committed batch %d of %d", ci+1, totalChunks))
		}

		// Skipped fixtures count toward completion but not toward the
		// processed tally shown to the operator.
		percent := float64(processed+skipped) / float64(total) * 100
		sink.Progress(fmt.Sprintf("Progress: %.1f%% (%d/%d)", percent, processed, total))
	}

	sink.Log("Data collection completed successfully!")
	p.logger.Info().
		Int("league", leagueID).
		Str("season", season).
		Int("processed", processed).
		Int("skipped", skipped).
		Int("total", total).
		Msg("collection run finished")
	return nil
}

// assemble fetches the four detail sub-resources and builds the normalized
// record. A rescheduled fixture passes through here again, so every
// sub-resource is refetched from scratch.
func (p *Pipeline) assemble(ctx context.Context, fixtureID string, item api.FixtureItem) (*domain.FixtureRecord, error) {
	details, err := p.fetcher.FetchFixtureDetails(ctx, item.Fixture.ID)
	if err != nil {
		return nil, err
	}

	return &domain.FixtureRecord{
		FixtureID:  fixtureID,
		Fixture:    item.Fixture,
		League:     item.League,
		Teams:      item.Teams,
		Goals:      item.Goals,
		Score:      item.Score,
		Events:     details.Events,
		Lineups:    details.Lineups,
		Statistics: details.Statistics,
		Players:    details.Players,
		UpdatedAt:  p.now(),
	}, nil
}
