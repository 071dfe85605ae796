package ingest

import (
	"sync"
	"time"
)

// ProgressSink receives the pipeline's user-facing status stream: one
// overwritable status line, one overwritable progress line, a terminal error,
// and an append-only log.
type ProgressSink interface {
	Log(message string)
	Progress(message string)
	Error(message string)
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Status is a point-in-time snapshot of a collection run, safe to hand to a
// poller on another goroutine.
type Status struct {
	RunID    string     `json:"run_id,omitempty"`
	Status   string     `json:"status"`
	Progress string     `json:"progress,omitempty"`
	Error    string     `json:"error,omitempty"`
	Running  bool       `json:"running"`
	Log      []LogEntry `json:"log,omitempty"`
}

// RunState holds the shared mutable state a UI polls while a run executes.
// All access goes through the mutex; readers only ever see snapshots.
type RunState struct {
	mu       sync.Mutex
	runID    string
	status   string
	progress string
	errMsg   string
	running  bool
	log      []LogEntry

	now func() time.Time
}

func NewRunState() *RunState {
	return &RunState{status: "Ready", now: time.Now}
}

// Log appends a timestamped entry and overwrites the current status line,
// matching how a status display consumes the pipeline.
func (s *RunState) Log(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, LogEntry{Time: s.now(), Message: message})
	s.status = message
}

func (s *RunState) Progress(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = message
}

func (s *RunState) Error(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = message
}

// begin resets the state for a fresh run. Returns false when a run is
// already active.
func (s *RunState) begin(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.runID = runID
	s.status = "Starting collection..."
	s.progress = ""
	s.errMsg = ""
	s.log = nil
	s.running = true
	return true
}

func (s *RunState) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *RunState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot copies the current state, including the log, so callers never
// share the underlying slice with the writer.
func (s *RunState) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	logCopy := make([]LogEntry, len(s.log))
	copy(logCopy, s.log)

	return Status{
		RunID:    s.runID,
		Status:   s.status,
		Progress: s.progress,
		Error:    s.errMsg,
		Running:  s.running,
		Log:      logCopy,
	}
}
