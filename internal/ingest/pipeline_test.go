package ingest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"fixture-tracker/internal/api"
	"fixture-tracker/internal/domain"
	"fixture-tracker/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu          sync.Mutex
	fixtures    []api.FixtureItem
	fixturesErr error
	detailCalls int
	detailErrs  map[int64]error
	gate        chan struct{}
}

func (f *fakeFetcher) FetchFixtures(ctx context.Context, q api.FixturesQuery) ([]api.FixtureItem, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.fixturesErr != nil {
		return nil, f.fixturesErr
	}
	return f.fixtures, nil
}

func (f *fakeFetcher) FetchFixtureDetails(ctx context.Context, fixtureID int64) (*api.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if err := f.detailErrs[fixtureID]; err != nil {
		return nil, err
	}
	return &api.Details{
		Events:     []domain.Event{},
		Lineups:    []domain.Lineup{},
		Statistics: []domain.TeamStatistics{},
		Players:    []domain.TeamPlayers{},
	}, nil
}

func (f *fakeFetcher) details() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls
}

type fakeStore struct {
	mu         sync.Mutex
	records    map[string]domain.FixtureRecord
	batchSizes []int
	getErr     error
	setErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]domain.FixtureRecord)}
}

func (s *fakeStore) Get(ctx context.Context, fixtureID string) (*domain.FixtureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.records[fixtureID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (s *fakeStore) BatchSet(ctx context.Context, records []domain.FixtureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.batchSizes = append(s.batchSizes, len(records))
	for _, rec := range records {
		s.records[rec.FixtureID] = rec
	}
	return nil
}

func (s *fakeStore) Stream(ctx context.Context, fn func(domain.FixtureRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func makeFixtures(n int, datePrefix string) []api.FixtureItem {
	items := make([]api.FixtureItem, n)
	for i := range items {
		items[i] = api.FixtureItem{
			Fixture: domain.Fixture{
				ID:   int64(i + 1),
				Date: fmt.Sprintf("%sT15:00:00+00:00", datePrefix),
			},
			League: domain.LeagueInfo{ID: 39, Name: "Premier League", Season: 2024},
			Teams: domain.Teams{
				Home: domain.TeamRef{ID: 1, Name: "Home " + strconv.Itoa(i+1)},
				Away: domain.TeamRef{ID: 2, Name: "Away " + strconv.Itoa(i+1)},
			},
		}
	}
	return items
}

func newTestPipeline(fetcher Fetcher, st store.FixtureStore) *Pipeline {
	p := NewPipeline(fetcher, st, zerolog.Nop())
	p.now = func() time.Time { return time.Unix(1700000000, 0) }
	return p
}

func TestRunChunksBatches(t *testing.T) {
	fetcher := &fakeFetcher{fixtures: makeFixtures(45, "2024-10-01")}
	st := newFakeStore()
	state := NewRunState()

	err := newTestPipeline(fetcher, st).Run(context.Background(), 39, "2024", state)
	require.NoError(t, err)

	assert.Equal(t, []int{20, 20, 5}, st.batchSizes)
	assert.Equal(t, 45*4, fetcher.details())

	snap := state.Snapshot()
	assert.Equal(t, "Progress: 100.0% (45/45)", snap.Progress)
}

func TestRunIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{fixtures: makeFixtures(5, "2024-10-01")}
	st := newFakeStore()
	p := newTestPipeline(fetcher, st)

	require.NoError(t, p.Run(context.Background(), 39, "2024", NewRunState()))
	assert.Equal(t, 5*4, fetcher.details())
	require.Len(t, st.batchSizes, 1)

	// Nothing changed upstream: the second run fetches no details and
	// writes no batches.
	require.NoError(t, p.Run(context.Background(), 39, "2024", NewRunState()))
	assert.Equal(t, 5*4, fetcher.details())
	assert.Len(t, st.batchSizes, 1)
}

func TestRunReplacesChangedFixture(t *testing.T) {
	fetcher := &fakeFetcher{fixtures: makeFixtures(3, "2024-10-01")}
	st := newFakeStore()
	p := newTestPipeline(fetcher, st)

	require.NoError(t, p.Run(context.Background(), 39, "2024", NewRunState()))
	require.Equal(t, 3*4, fetcher.details())

	// Fixture 2 was rescheduled; only it is refetched, in full.
	fetcher.fixtures[1].Fixture.Date = "2024-10-08T20:00:00+00:00"
	require.NoError(t, p.Run(context.Background(), 39, "2024", NewRunState()))
	assert.Equal(t, 4*4, fetcher.details())

	rec, err := st.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-08T20:00:00+00:00", rec.Fixture.Date)
}

func TestRunSkipScenario(t *testing.T) {
	// League 39, season 2024: three fixtures upstream, one already stored
	// with a matching date.
	fetcher := &fakeFetcher{fixtures: makeFixtures(3, "2024-10-01")}
	st := newFakeStore()
	st.records["1"] = domain.FixtureRecord{
		FixtureID: "1",
		Fixture:   domain.Fixture{ID: 1, Date: "2024-10-01T15:00:00+00:00"},
	}
	state := NewRunState()

	err := newTestPipeline(fetcher, st).Run(context.Background(), 39, "2024", state)
	require.NoError(t, err)

	assert.Equal(t, 2*4, fetcher.details(), "two new fixtures, four detail calls each")
	assert.Equal(t, []int{2}, st.batchSizes)
	assert.Equal(t, "Progress: 100.0% (2/3)", state.Snapshot().Progress)
}

func TestRunZeroFixturesCompletes(t *testing.T) {
	fetcher := &fakeFetcher{}
	st := newFakeStore()
	state := NewRunState()

	err := newTestPipeline(fetcher, st).Run(context.Background(), 39, "2024", state)
	require.NoError(t, err)
	assert.Empty(t, st.batchSizes)
	assert.Equal(t, "No fixtures found", state.Snapshot().Status)
}

func TestRunSkipsFailingFixture(t *testing.T) {
	fetcher := &fakeFetcher{
		fixtures:   makeFixtures(3, "2024-10-01"),
		detailErrs: map[int64]error{2: fmt.Errorf("boom")},
	}
	st := newFakeStore()
	state := NewRunState()

	err := newTestPipeline(fetcher, st).Run(context.Background(), 39, "2024", state)
	require.NoError(t, err, "a per-fixture failure must not abort the run")
	assert.Equal(t, []int{2}, st.batchSizes)

	_, err = st.Get(context.Background(), "2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunAbortsOnStorageFailure(t *testing.T) {
	fetcher := &fakeFetcher{fixtures: makeFixtures(3, "2024-10-01")}
	st := newFakeStore()
	st.setErr = fmt.Errorf("storage unreachable")

	err := newTestPipeline(fetcher, st).Run(context.Background(), 39, "2024", NewRunState())
	require.Error(t, err)
}

func TestRunStateLogAndStatus(t *testing.T) {
	state := NewRunState()
	state.Log("first")
	state.Log("second")

	snap := state.Snapshot()
	assert.Equal(t, "second", snap.Status, "status is overwritten, not appended")
	require.Len(t, snap.Log, 2)
	assert.Equal(t, "first", snap.Log[0].Message)
	assert.Equal(t, "second", snap.Log[1].Message)
}
