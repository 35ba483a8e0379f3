// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer building a Config with defaults.
// - Business thresholds are configuration constants here, not derived values.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// POSBaseURL is the point-of-sale API base URL.
	POSBaseURL string `koanf:"pos_base_url"`

	// POSClientID and POSClientSecret are the long-lived credentials
	// exchanged for a short-lived bearer token.
	POSClientID     string `koanf:"pos_client_id"`
	POSClientSecret string `koanf:"pos_client_secret"`

	// TokenTTLHours bounds the cached bearer token lifetime. Kept below the
	// provider's real token lifetime to avoid edge-of-expiry failures.
	TokenTTLHours int `koanf:"token_ttl_hours"`

	// OrderPageSize is the page size for the order listing endpoint.
	OrderPageSize int `koanf:"order_page_size"`

	// MaxOrderPages caps pagination against a misbehaving upstream.
	MaxOrderPages int `koanf:"max_order_pages"`

	// TurnTimeCeilingMinutes discards transactions whose turn time exceeds
	// this value as instrumentation errors.
	TurnTimeCeilingMinutes float64 `koanf:"turn_time_ceiling_minutes"`

	// CriticalTurnTimeMinutes is the scoring threshold beyond which a shift
	// earns the worst turn-time sub-score.
	CriticalTurnTimeMinutes float64 `koanf:"critical_turn_time_minutes"`

	// LaborBatchSize is the number of business dates fetched concurrently
	// during attribution, sized to respect upstream rate limits.
	LaborBatchSize int `koanf:"labor_batch_size"`

	// LookbackDays is the leaderboard aggregation window.
	LookbackDays int `koanf:"lookback_days"`

	// Timezone names the store's operating timezone for calendar-date
	// partitioning, e.g. "America/Chicago". Empty means local time.
	Timezone string `koanf:"timezone"`

	// SyncQueueSize bounds the in-memory sync job queue.
	SyncQueueSize int `koanf:"sync_queue_size"`

	// SyncWorkerCount sets the number of sync workers.
	SyncWorkerCount int `koanf:"sync_worker_count"`

	// DedupeSize sets the size of the transaction-id dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MongoURI enables the Mongo-backed attributed order store when set.
	// Empty keeps the in-memory store.
	MongoURI        string `koanf:"mongo_uri"`
	MongoDatabase   string `koanf:"mongo_database"`
	MongoCollection string `koanf:"mongo_collection"`

	// JWTSecret, JWTIssuer and JWTAudience configure API bearer auth.
	// Empty secret disables auth (development only).
	JWTSecret   string `koanf:"jwt_secret"`
	JWTIssuer   string `koanf:"jwt_issuer"`
	JWTAudience string `koanf:"jwt_audience"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		TokenTTLHours:           23,
		OrderPageSize:           100,
		MaxOrderPages:           50,
		TurnTimeCeilingMinutes:  15,
		CriticalTurnTimeMinutes: 5,
		LaborBatchSize:          5,
		LookbackDays:            30,
		SyncQueueSize:           64,
		SyncWorkerCount:         2,
		DedupeSize:              100_000,
		MongoDatabase:           "shiftboard",
		MongoCollection:         "attributed_orders",
	}
	return c
}
