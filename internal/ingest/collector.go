package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ErrRunInProgress is returned when a collection is requested while another
// one is still active.
var ErrRunInProgress = errors.New("a collection run is already in progress")

const jobQueueSize = 16

// Job is one (league, season) collection request.
type Job struct {
	LeagueID int    `json:"league_id"`
	Season   string `json:"season"`
}

// Collector serializes collection runs through a single worker goroutine.
// Jobs submitted together run back to back; a new submission while the
// worker is busy is rejected explicitly rather than queued behind a stranger.
type Collector struct {
	pipeline *Pipeline
	state    *RunState
	logger   zerolog.Logger

	mu      sync.Mutex
	pending int
	queue   chan Job
}

func NewCollector(pipeline *Pipeline, logger zerolog.Logger) *Collector {
	c := &Collector{
		pipeline: pipeline,
		state:    NewRunState(),
		logger:   logger,
		queue:    make(chan Job, jobQueueSize),
	}
	go c.worker()
	return c
}

// Start submits a single collection run.
func (c *Collector) Start(job Job) (string, error) {
	return c.StartBatch([]Job{job})
}

// StartBatch submits several runs processed serially under one run ID.
// Returns ErrRunInProgress when a previous submission has not finished.
func (c *Collector) StartBatch(jobs []Job) (string, error) {
	if len(jobs) == 0 {
		return "", fmt.Errorf("no jobs submitted")
	}
	if len(jobs) > jobQueueSize {
		return "", fmt.Errorf("too many jobs: %d exceeds the limit of %d", len(jobs), jobQueueSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending > 0 {
		return "", ErrRunInProgress
	}

	runID := gonanoid.Must()
	if !c.state.begin(runID) {
		return "", ErrRunInProgress
	}

	c.pending = len(jobs)
	for _, job := range jobs {
		c.queue <- job
	}

	c.logger.Info().Str("run_id", runID).Int("jobs", len(jobs)).Msg("collection submitted")
	return runID, nil
}

// Status returns a snapshot of the current (or last) run for pollers.
func (c *Collector) Status() Status {
	return c.state.Snapshot()
}

// worker drains the queue one job at a time. There is no cancellation: once a
// job starts it runs to completion or failure.
func (c *Collector) worker() {
	for job := range c.queue {
		err := c.pipeline.Run(context.Background(), job.LeagueID, job.Season, c.state)
		if err != nil {
			c.logger.Error().Err(err).
				Int("league", job.LeagueID).
				Str("season", job.Season).
				Msg("collection run aborted")
			c.state.Log(fmt.Sprintf("ERROR: %v", err))
			c.state.Error(err.Error())
		}

		c.mu.Lock()
		c.pending--
		if c.pending == 0 {
			c.state.finish()
		}
		c.mu.Unlock()
	}
}
