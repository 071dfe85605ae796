package api

import (
	"context"
	"fmt"
	"strconv"

	"fixture-tracker/internal/cache"
	"fixture-tracker/internal/constants"
	"fixture-tracker/internal/domain"
	"fixture-tracker/internal/leagues"

	"golang.org/x/sync/errgroup"
)

// Bet365; the only bookmaker the odds fetch asks for.
const oddsBookmaker = "8"

// FixturesQuery narrows a /fixtures request. League can be
// leagues.AllLeagues to fan out across every known league.
type FixturesQuery struct {
	League    int
	Season    string
	Team      int64
	FixtureID int64
	Status    string
	Next      int
}

func (q FixturesQuery) params(league int) Params {
	p := Params{}
	if q.FixtureID != 0 {
		p["id"] = strconv.FormatInt(q.FixtureID, 10)
		return p
	}
	p["league"] = strconv.Itoa(league)
	p["season"] = q.Season
	if q.Team != 0 {
		p["team"] = strconv.FormatInt(q.Team, 10)
	}
	if q.Status != "" {
		p["status"] = q.Status
	}
	if q.Next > 0 {
		p["next"] = strconv.Itoa(q.Next)
	}
	return p
}

func (q FixturesQuery) tier() cache.Tier {
	// Historical fixture lists barely change; a single in-flight fixture or
	// an upcoming-fixtures window does.
	if q.FixtureID != 0 || q.Next > 0 {
		return cache.TierShort
	}
	return cache.TierLong
}

// FetchFixtures returns the fixture list matching q. For AllLeagues the
// request fans out per league and merges; leagues whose call failed are
// simply missing from the merged list.
func (c *Client) FetchFixtures(ctx context.Context, q FixturesQuery) ([]FixtureItem, error) {
	if q.Season == "" {
		q.Season = constants.DefaultSeason
	}

	if q.League == leagues.AllLeagues && q.FixtureID == 0 {
		var paramSets []Params
		for _, id := range leagues.IDs() {
			paramSets = append(paramSets, q.params(id))
		}
		results := c.BatchRequest(ctx, "/fixtures", paramSets, q.tier())

		var all []FixtureItem
		for key, res := range results {
			if res.Err != nil {
				c.logger.Warn().Err(res.Err).Str("params", key).Msg("skipping league in fixtures fan-out")
				continue
			}
			var items []FixtureItem
			if err := res.Envelope.Decode(&items); err != nil {
				c.logger.Warn().Err(err).Str("params", key).Msg("undecodable fixtures payload")
				continue
			}
			all = append(all, items...)
		}
		return all, nil
	}

	params := q.params(q.League)
	res := c.BatchRequest(ctx, "/fixtures", []Params{params}, q.tier())[params.Encode()]
	if res.Err != nil {
		return nil, res.Err
	}

	var items []FixtureItem
	if err := res.Envelope.Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	return items, nil
}

// FetchFixtureDetails pulls the four per-fixture sub-resources. Each one is
// cached and rate limited independently; any failure fails the whole lookup
// so the pipeline can skip the fixture.
func (c *Client) FetchFixtureDetails(ctx context.Context, fixtureID int64) (*Details, error) {
	params := Params{"fixture": strconv.FormatInt(fixtureID, 10)}
	details := &Details{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.fetchDetail(gCtx, "/fixtures/events", params, &details.Events)
	})
	g.Go(func() error {
		return c.fetchDetail(gCtx, "/fixtures/lineups", params, &details.Lineups)
	})
	g.Go(func() error {
		return c.fetchDetail(gCtx, "/fixtures/statistics", params, &details.Statistics)
	})
	g.Go(func() error {
		return c.fetchDetail(gCtx, "/fixtures/players", params, &details.Players)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fixture %d details: %w", fixtureID, err)
	}

	if details.Events == nil {
		details.Events = []domain.Event{}
	}
	if details.Lineups == nil {
		details.Lineups = []domain.Lineup{}
	}
	if details.Statistics == nil {
		details.Statistics = []domain.TeamStatistics{}
	}
	if details.Players == nil {
		details.Players = []domain.TeamPlayers{}
	}
	return details, nil
}

func (c *Client) fetchDetail(ctx context.Context, endpoint string, params Params, out any) error {
	res := c.BatchRequest(ctx, endpoint, []Params{params}, cache.TierShort)[params.Encode()]
	if res.Err != nil {
		return res.Err
	}
	return res.Envelope.Decode(out)
}

// FetchStandings returns standings keyed by league ID. A single league yields
// a one-entry map; AllLeagues fans out and merges, dropping failed leagues.
func (c *Client) FetchStandings(ctx context.Context, leagueID int, season string) (map[int]StandingsTable, error) {
	if season == "" {
		season = constants.DefaultSeason
	}

	ids := []int{leagueID}
	if leagueID == leagues.AllLeagues {
		ids = leagues.IDs()
	}

	paramSets := make([]Params, 0, len(ids))
	byKey := make(map[string]int, len(ids))
	for _, id := range ids {
		p := Params{"league": strconv.Itoa(id), "season": season}
		paramSets = append(paramSets, p)
		byKey[p.Encode()] = id
	}

	results := c.BatchRequest(ctx, "/standings", paramSets, cache.TierMedium)

	merged := make(map[int]StandingsTable, len(ids))
	for key, res := range results {
		id := byKey[key]
		if res.Err != nil {
			c.logger.Warn().Err(res.Err).Int("league", id).Msg("skipping league in standings fan-out")
			continue
		}
		var tables []StandingsTable
		if err := res.Envelope.Decode(&tables); err != nil || len(tables) == 0 {
			c.logger.Warn().Err(err).Int("league", id).Msg("no standings payload")
			continue
		}
		merged[id] = tables[0]
	}

	if leagueID != leagues.AllLeagues && len(merged) == 0 {
		return nil, fmt.Errorf("no standings for league %d", leagueID)
	}
	return merged, nil
}

// FetchTeamStatistics returns season aggregates for one team with every
// section defaulted, so a thin payload never breaks a consumer.
func (c *Client) FetchTeamStatistics(ctx context.Context, leagueID int, teamID int64, season string) (*TeamSeasonStats, error) {
	if season == "" {
		season = constants.DefaultSeason
	}

	params := Params{
		"league": strconv.Itoa(leagueID),
		"team":   strconv.FormatInt(teamID, 10),
		"season": season,
	}
	res := c.BatchRequest(ctx, "/teams/statistics", []Params{params}, cache.TierMedium)[params.Encode()]
	if res.Err != nil {
		return nil, res.Err
	}

	stats := &TeamSeasonStats{}
	if err := res.Envelope.Decode(stats); err != nil {
		return nil, fmt.Errorf("decoding team statistics: %w", err)
	}
	stats.applyDefaults()
	return stats, nil
}

// FetchPlayerStatistics resolves the squad for a team and then pulls season
// statistics per player in small batches, pausing between batches.
func (c *Client) FetchPlayerStatistics(ctx context.Context, leagueID int, teamID int64, season string) ([]PlayerSeasonStats, error) {
	if season == "" {
		season = constants.DefaultSeason
	}

	squadParams := Params{"team": strconv.FormatInt(teamID, 10)}
	res := c.BatchRequest(ctx, "/players/squads", []Params{squadParams}, cache.TierMedium)[squadParams.Encode()]
	if res.Err != nil {
		return nil, res.Err
	}

	var squads []squadEntry
	if err := res.Envelope.Decode(&squads); err != nil {
		return nil, fmt.Errorf("decoding squad: %w", err)
	}
	if len(squads) == 0 {
		return nil, nil
	}

	var paramSets []Params
	for _, p := range squads[0].Players {
		paramSets = append(paramSets, Params{
			"id":     strconv.FormatInt(p.ID, 10),
			"league": strconv.Itoa(leagueID),
			"season": season,
		})
	}

	var all []PlayerSeasonStats
	for i := 0; i < len(paramSets); i += constants.PlayerStatsBatch {
		end := min(i+constants.PlayerStatsBatch, len(paramSets))

		results := c.BatchRequest(ctx, "/players", paramSets[i:end], cache.TierMedium)
		for key, r := range results {
			if r.Err != nil {
				c.logger.Warn().Err(r.Err).Str("params", key).Msg("skipping player statistics")
				continue
			}
			var stats []PlayerSeasonStats
			if err := r.Envelope.Decode(&stats); err != nil {
				c.logger.Warn().Err(err).Str("params", key).Msg("undecodable player statistics")
				continue
			}
			all = append(all, stats...)
		}

		if end < len(paramSets) {
			c.sleep(constants.PlayerStatsPause)
		}
	}
	return all, nil
}

// FetchMatchOdds returns 1X2 odds for a fixture. Missing or truncated layers
// of the response collapse to the zero-odds sentinel instead of an error.
func (c *Client) FetchMatchOdds(ctx context.Context, fixtureID int64) domain.Odds {
	sentinel := domain.Odds{Home: "0", Draw: "0", Away: "0"}

	params := Params{
		"fixture":   strconv.FormatInt(fixtureID, 10),
		"bookmaker": oddsBookmaker,
	}
	res := c.BatchRequest(ctx, "/odds", []Params{params}, cache.TierShort)[params.Encode()]
	if res.Err != nil {
		c.logger.Warn().Err(res.Err).Int64("fixture", fixtureID).Msg("odds fetch failed")
		return sentinel
	}

	var entries []oddsEntry
	if err := res.Envelope.Decode(&entries); err != nil || len(entries) == 0 {
		c.logger.Warn().Int64("fixture", fixtureID).Msg("no odds data for fixture")
		return sentinel
	}
	if len(entries[0].Bookmakers) == 0 {
		c.logger.Warn().Int64("fixture", fixtureID).Msg("no bookmakers for fixture")
		return sentinel
	}
	bets := entries[0].Bookmakers[0].Bets
	if len(bets) == 0 {
		c.logger.Warn().Int64("fixture", fixtureID).Msg("no bets for fixture")
		return sentinel
	}
	values := bets[0].Values
	if len(values) < 3 {
		c.logger.Warn().Int64("fixture", fixtureID).Msg("incomplete odds values for fixture")
		return sentinel
	}

	return domain.Odds{Home: values[0].Odd, Draw: values[1].Odd, Away: values[2].Odd}
}

// FetchNextFixtures returns the next full round for a league: it requests a
// fixed lookahead window and keeps only the fixtures of the soonest round,
// since one round can spread over several days.
func (c *Client) FetchNextFixtures(ctx context.Context, leagueID int, season string) ([]FixtureItem, error) {
	items, err := c.FetchFixtures(ctx, FixturesQuery{
		League: leagueID,
		Season: season,
		Next:   constants.NextFixturesCount,
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	nextRound := items[0].League.Round
	var round []FixtureItem
	for _, it := range items {
		if it.League.Round == nextRound {
			round = append(round, it)
		}
	}
	return round, nil
}

// FetchCountries lists the countries the API covers.
func (c *Client) FetchCountries(ctx context.Context) ([]Country, error) {
	params := Params{}
	res := c.BatchRequest(ctx, "/countries", []Params{params}, cache.TierLong)[params.Encode()]
	if res.Err != nil {
		return nil, res.Err
	}

	var countries []Country
	if err := res.Envelope.Decode(&countries); err != nil {
		return nil, fmt.Errorf("decoding countries: %w", err)
	}
	return countries, nil
}

// FetchLeagues lists leagues, optionally filtered by country name.
func (c *Client) FetchLeagues(ctx context.Context, country string) ([]LeagueEntry, error) {
	params := Params{}
	if country != "" {
		params["country"] = country
	}
	res := c.BatchRequest(ctx, "/leagues", []Params{params}, cache.TierLong)[params.Encode()]
	if res.Err != nil {
		return nil, res.Err
	}

	var entries []LeagueEntry
	if err := res.Envelope.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding leagues: %w", err)
	}
	return entries, nil
}

// FetchSeasons lists every season the API knows about.
func (c *Client) FetchSeasons(ctx context.Context) ([]int, error) {
	params := Params{}
	res := c.BatchRequest(ctx, "/leagues/seasons", []Params{params}, cache.TierLong)[params.Encode()]
	if res.Err != nil {
		return nil, res.Err
	}

	var seasons []int
	if err := res.Envelope.Decode(&seasons); err != nil {
		return nil, fmt.Errorf("decoding seasons: %w", err)
	}
	return seasons, nil
}
