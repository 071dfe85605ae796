// Package server is presentation glue over the pipeline: it triggers runs,
// exposes the polled run status, and renders the stored collection. No
// business logic lives here.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"fixture-tracker/internal/api"
	"fixture-tracker/internal/domain"
	"fixture-tracker/internal/ingest"
	"fixture-tracker/internal/store"

	"github.com/rs/zerolog"
)

type TrackerServer struct {
	collector *ingest.Collector
	client    *api.Client
	fixtures  store.FixtureStore
	logger    zerolog.Logger
}

func NewTrackerServer(collector *ingest.Collector, client *api.Client, fixtures store.FixtureStore, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{collector: collector, client: client, fixtures: fixtures, logger: logger}
}

type collectRequest struct {
	Selections []ingest.Job `json:"selections"`
}

// HandleCollect starts a batch of collection runs. Responds 409 when a run
// is already active.
func (s *TrackerServer) HandleCollect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Selections) == 0 {
		http.Error(w, "no selections", http.StatusBadRequest)
		return
	}

	runID, err := s.collector.StartBatch(req.Selections)
	if errors.Is(err, ingest.ErrRunInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, map[string]string{"run_id": runID})
}

// HandleStatus returns the snapshot a UI polls.
func (s *TrackerServer) HandleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.collector.Status())
}

// HandleNextFixtures returns the next full round for a league.
func (s *TrackerServer) HandleNextFixtures(w http.ResponseWriter, r *http.Request) {
	leagueID, err := strconv.Atoi(r.URL.Query().Get("league"))
	if err != nil {
		http.Error(w, "invalid league", http.StatusBadRequest)
		return
	}

	fixtures, err := s.client.FetchNextFixtures(r.Context(), leagueID, r.URL.Query().Get("season"))
	if err != nil {
		s.logger.Error().Err(err).Int("league", leagueID).Msg("next fixtures fetch failed")
		http.Error(w, "failed to fetch next fixtures", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, fixtures)
}

// HandleStandings returns standings keyed by league ID; league=-1 fans out
// across every known league.
func (s *TrackerServer) HandleStandings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := strconv.Atoi(r.URL.Query().Get("league"))
	if err != nil {
		http.Error(w, "invalid league", http.StatusBadRequest)
		return
	}

	standings, err := s.client.FetchStandings(r.Context(), leagueID, r.URL.Query().Get("season"))
	if err != nil {
		s.logger.Error().Err(err).Int("league", leagueID).Msg("standings fetch failed")
		http.Error(w, "failed to fetch standings", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, standings)
}

// HandleCountries lists the countries the remote API covers, for populating
// a country picker.
func (s *TrackerServer) HandleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.client.FetchCountries(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("countries fetch failed")
		http.Error(w, "failed to fetch countries", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, countries)
}

// HandleLeagues lists leagues, optionally filtered with ?country=.
func (s *TrackerServer) HandleLeagues(w http.ResponseWriter, r *http.Request) {
	entries, err := s.client.FetchLeagues(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		s.logger.Error().Err(err).Msg("leagues fetch failed")
		http.Error(w, "failed to fetch leagues", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, entries)
}

// HandleSeasons lists every season the remote API knows about.
func (s *TrackerServer) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.client.FetchSeasons(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("seasons fetch failed")
		http.Error(w, "failed to fetch seasons", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, seasons)
}

type leagueCoverage struct {
	LeagueID   int    `json:"league_id"`
	League     string `json:"league"`
	Fixtures   int    `json:"fixtures"`
	WithEvents int    `json:"with_events"`
}

type coverageReport struct {
	TotalFixtures int              `json:"total_fixtures"`
	Leagues       []leagueCoverage `json:"leagues"`
}

// HandleReport streams the stored collection into a per-league coverage
// summary, demonstrating the pipeline's output contract.
func (s *TrackerServer) HandleReport(w http.ResponseWriter, r *http.Request) {
	byLeague := make(map[int]*leagueCoverage)
	report := coverageReport{}

	err := s.fixtures.Stream(r.Context(), func(rec domain.FixtureRecord) error {
		report.TotalFixtures++
		lc, ok := byLeague[rec.League.ID]
		if !ok {
			lc = &leagueCoverage{LeagueID: rec.League.ID, League: rec.League.Name}
			byLeague[rec.League.ID] = lc
		}
		lc.Fixtures++
		if len(rec.Events) > 0 {
			lc.WithEvents++
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("report stream failed")
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	for _, lc := range byLeague {
		report.Leagues = append(report.Leagues, *lc)
	}
	sort.Slice(report.Leagues, func(i, j int) bool {
		return report.Leagues[i].LeagueID < report.Leagues[j].LeagueID
	})
	s.writeJSON(w, report)
}

func (s *TrackerServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
