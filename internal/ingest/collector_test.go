package ingest

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRejectsConcurrentStart(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &fakeFetcher{fixtures: makeFixtures(1, "2024-10-01"), gate: gate}
	c := NewCollector(newTestPipeline(fetcher, newFakeStore()), zerolog.Nop())

	runID, err := c.Start(Job{LeagueID: 39, Season: "2024"})
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	_, err = c.Start(Job{LeagueID: 140, Season: "2024"})
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(gate)
	require.Eventually(t, func() bool {
		return !c.Status().Running
	}, 2*time.Second, 10*time.Millisecond)

	// After the first run finishes, a new submission is accepted.
	_, err = c.Start(Job{LeagueID: 140, Season: "2024"})
	require.NoError(t, err)
}

func TestCollectorBatchRunsSerially(t *testing.T) {
	fetcher := &fakeFetcher{fixtures: makeFixtures(2, "2024-10-01")}
	st := newFakeStore()
	c := NewCollector(newTestPipeline(fetcher, st), zerolog.Nop())

	_, err := c.StartBatch([]Job{
		{LeagueID: 39, Season: "2024"},
		{LeagueID: 140, Season: "2024"},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return !c.Status().Running
	}, 2*time.Second, 10*time.Millisecond)

	// Second job saw the first job's records and skipped them all.
	assert.Equal(t, []int{2}, st.batchSizes)
	snap := c.Status()
	assert.Empty(t, snap.Error)
	assert.Equal(t, "Data collection completed successfully!", snap.Status)
}

func TestCollectorRecordsRunFailure(t *testing.T) {
	fetcher := &fakeFetcher{fixturesErr: assert.AnError}
	c := NewCollector(newTestPipeline(fetcher, newFakeStore()), zerolog.Nop())

	_, err := c.Start(Job{LeagueID: 39, Season: "2024"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return !c.Status().Running
	}, 2*time.Second, 10*time.Millisecond)

	snap := c.Status()
	assert.NotEmpty(t, snap.Error)
	assert.Contains(t, snap.Status, "ERROR:")
}

func TestCollectorRejectsEmptyBatch(t *testing.T) {
	c := NewCollector(newTestPipeline(&fakeFetcher{}, newFakeStore()), zerolog.Nop())
	_, err := c.StartBatch(nil)
	require.Error(t, err)
}
