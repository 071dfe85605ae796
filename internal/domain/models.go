package domain

import (
	"encoding/json"
	"time"
)

// Fixture is the core fixture payload from the remote API. Date is the
// kickoff timestamp and is the field the ingestion skip rule compares.
type Fixture struct {
	ID        int64  `json:"id"`
	Referee   string `json:"referee,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Venue     Venue  `json:"venue"`
	Status    Status `json:"status"`
}

type Venue struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	City string `json:"city,omitempty"`
}

type Status struct {
	Long    string `json:"long,omitempty"`
	Short   string `json:"short,omitempty"`
	Elapsed int    `json:"elapsed,omitempty"`
}

type LeagueInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
	Logo    string `json:"logo,omitempty"`
	Flag    string `json:"flag,omitempty"`
	Season  int    `json:"season,omitempty"`
	Round   string `json:"round,omitempty"`
}

type TeamRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo,omitempty"`
	Winner *bool  `json:"winner,omitempty"`
}

type Teams struct {
	Home TeamRef `json:"home"`
	Away TeamRef `json:"away"`
}

// Goals uses pointers because the API reports null for fixtures that have not
// produced a result yet.
type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	Halftime  Goals `json:"halftime"`
	Fulltime  Goals `json:"fulltime"`
	Extratime Goals `json:"extratime"`
	Penalty   Goals `json:"penalty"`
}

type PlayerRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Event is a single in-match event (goal, card, substitution, VAR).
type Event struct {
	Time struct {
		Elapsed int  `json:"elapsed"`
		Extra   *int `json:"extra,omitempty"`
	} `json:"time"`
	Team     TeamRef   `json:"team"`
	Player   PlayerRef `json:"player"`
	Assist   PlayerRef `json:"assist"`
	Type     string    `json:"type"`
	Detail   string    `json:"detail,omitempty"`
	Comments string    `json:"comments,omitempty"`
}

type LineupPlayer struct {
	Player struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Number int    `json:"number,omitempty"`
		Pos    string `json:"pos,omitempty"`
		Grid   string `json:"grid,omitempty"`
	} `json:"player"`
}

type Lineup struct {
	Team        TeamRef        `json:"team"`
	Coach       PlayerRef      `json:"coach"`
	Formation   string         `json:"formation,omitempty"`
	StartXI     []LineupPlayer `json:"startXI,omitempty"`
	Substitutes []LineupPlayer `json:"substitutes,omitempty"`
}

// Statistic's value is numeric, percentage string, or null depending on the
// statistic type, so it stays raw until a consumer needs it.
type Statistic struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type TeamStatistics struct {
	Team       TeamRef     `json:"team"`
	Statistics []Statistic `json:"statistics"`
}

type FixturePlayer struct {
	Player     PlayerRef         `json:"player"`
	Statistics []json.RawMessage `json:"statistics,omitempty"`
}

type TeamPlayers struct {
	Team    TeamRef         `json:"team"`
	Players []FixturePlayer `json:"players"`
}

// FixtureRecord is the normalized document the pipeline persists. Identity is
// FixtureID; a record is only ever replaced whole, never mutated in place.
type FixtureRecord struct {
	FixtureID  string           `json:"fixture_id"`
	Fixture    Fixture          `json:"fixture"`
	League     LeagueInfo       `json:"league"`
	Teams      Teams            `json:"teams"`
	Goals      Goals            `json:"goals"`
	Score      Score            `json:"score"`
	Events     []Event          `json:"events"`
	Lineups    []Lineup         `json:"lineups"`
	Statistics []TeamStatistics `json:"statistics"`
	Players    []TeamPlayers    `json:"players"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Odds carries the 1X2 odds for a fixture. Zero implies the bookmaker
// published nothing usable; see the sentinel in the API client.
type Odds struct {
	Home string `json:"home"`
	Draw string `json:"draw"`
	Away string `json:"away"`
}
