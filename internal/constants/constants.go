package constants

import "time"

// Cache tier durations. Volatile data (odds, upcoming fixtures) lives in the
// short tier, semi-stable aggregates in the medium tier, historical fixture
// lists in the long tier.
const (
	ShortCacheTTL  = 15 * time.Minute
	MediumCacheTTL = 6 * time.Hour
	LongCacheTTL   = 24 * time.Hour
)

const (
	APICallsPerMinute = 30
	RateLimitWindow   = 60 * time.Second
	RateLimitBackoff  = 60 * time.Second
	RequestDelay      = 200 * time.Millisecond
	PlayerStatsBatch  = 5
	PlayerStatsPause  = 1 * time.Second
	NextFixturesCount = 10
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
)

const (
	ChunkSize   = 20
	DBBatchSize = 100
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// FinishedStatuses restricts ingestion to fixtures that have been played (or
// are at least in play), using the API's hyphenated status query syntax.
const FinishedStatuses = "FT-AET-PEN-1H-HT-2H-ET-BT-P"

const DefaultSeason = "2024"
