package api

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"fixture-tracker/internal/domain"
)

// Envelope is the top-level shape every API endpoint returns. A non-empty
// Errors field means the call failed even when the HTTP status was 200.
type Envelope struct {
	Get      string          `json:"get,omitempty"`
	Errors   json.RawMessage `json:"errors,omitempty"`
	Results  int             `json:"results,omitempty"`
	Response json.RawMessage `json:"response"`
}

func (e *Envelope) HasErrors() bool {
	trimmed := bytes.TrimSpace(e.Errors)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return false
	}
	return true
}

// Decode unmarshals the response field into v.
func (e *Envelope) Decode(v any) error {
	if len(e.Response) == 0 {
		return nil
	}
	return json.Unmarshal(e.Response, v)
}

// Params is one set of query parameters. Encode produces the canonical
// sorted form used both as the cache/result key and as the query string.
type Params map[string]string

func (p Params) Encode() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p[k])
	}
	return b.String()
}

// Result is the per-parameter-set outcome of a batch request, so callers can
// tell a failed fetch apart from an empty payload.
type Result struct {
	Envelope *Envelope
	Err      error
}

// FixtureItem is one element of a /fixtures response.
type FixtureItem struct {
	Fixture domain.Fixture    `json:"fixture"`
	League  domain.LeagueInfo `json:"league"`
	Teams   domain.Teams      `json:"teams"`
	Goals   domain.Goals      `json:"goals"`
	Score   domain.Score      `json:"score"`
}

// Details bundles the four per-fixture sub-resources.
type Details struct {
	Events     []domain.Event          `json:"events"`
	Lineups    []domain.Lineup         `json:"lineups"`
	Statistics []domain.TeamStatistics `json:"statistics"`
	Players    []domain.TeamPlayers    `json:"players"`
}

type Standing struct {
	Rank   int            `json:"rank"`
	Team   domain.TeamRef `json:"team"`
	Points int            `json:"points"`
	Form   string         `json:"form,omitempty"`
	All    struct {
		Played int `json:"played"`
		Win    int `json:"win"`
		Draw   int `json:"draw"`
		Lose   int `json:"lose"`
		Goals  struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	} `json:"all"`
}

// StandingsTable is one element of a /standings response.
type StandingsTable struct {
	League struct {
		ID        int          `json:"id"`
		Name      string       `json:"name"`
		Country   string       `json:"country,omitempty"`
		Season    int          `json:"season,omitempty"`
		Standings [][]Standing `json:"standings"`
	} `json:"league"`
}

// TeamSeasonStats is the /teams/statistics payload with every section
// defaulted so consumers never see missing keys.
type TeamSeasonStats struct {
	Form          string          `json:"form"`
	Fixtures      json.RawMessage `json:"fixtures"`
	Goals         json.RawMessage `json:"goals"`
	Biggest       json.RawMessage `json:"biggest"`
	CleanSheet    json.RawMessage `json:"clean_sheet"`
	FailedToScore json.RawMessage `json:"failed_to_score"`
	Penalty       json.RawMessage `json:"penalty"`
	Lineups       json.RawMessage `json:"lineups"`
	Cards         json.RawMessage `json:"cards"`
}

func (s *TeamSeasonStats) applyDefaults() {
	if s.Fixtures == nil {
		s.Fixtures = json.RawMessage(`{}`)
	}
	if s.Goals == nil {
		s.Goals = json.RawMessage(`{}`)
	}
	if s.Biggest == nil {
		s.Biggest = json.RawMessage(`{}`)
	}
	if s.CleanSheet == nil {
		s.CleanSheet = json.RawMessage(`{}`)
	}
	if s.FailedToScore == nil {
		s.FailedToScore = json.RawMessage(`{}`)
	}
	if s.Penalty == nil {
		s.Penalty = json.RawMessage(`{}`)
	}
	if s.Lineups == nil {
		s.Lineups = json.RawMessage(`[]`)
	}
	if s.Cards == nil {
		s.Cards = json.RawMessage(`{}`)
	}
}

// PlayerSeasonStats is one element of a /players response.
type PlayerSeasonStats struct {
	Player     domain.PlayerRef  `json:"player"`
	Statistics []json.RawMessage `json:"statistics"`
}

type squadEntry struct {
	Team    domain.TeamRef `json:"team"`
	Players []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
}

type oddsEntry struct {
	Bookmakers []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Bets []struct {
			ID     int    `json:"id"`
			Name   string `json:"name"`
			Values []struct {
				Value string `json:"value"`
				Odd   string `json:"odd"`
			} `json:"values"`
		} `json:"bets"`
	} `json:"bookmakers"`
}

type Country struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
	Flag string `json:"flag,omitempty"`
}

// LeagueEntry is one element of a /leagues response.
type LeagueEntry struct {
	League  domain.LeagueInfo `json:"league"`
	Country Country           `json:"country"`
}
