package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

// Storage backends for the canonical dataset.
const (
	StorageCSV      = "csv"
	StoragePostgres = "postgres"
)

// Config stores runtime configuration for the pipeline. Structural
// constraints live on the validate tags; Load only handles parsing.
type Config struct {
	AppEnv         string `validate:"required,oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string `validate:"required"`
	LogLevel       logging.Level

	DataDir                 string `validate:"required"`
	StorageBackend          string `validate:"required,oneof=csv postgres"`
	DBURL                   string `validate:"required_if=StorageBackend postgres"`
	DBDisablePreparedBinary bool

	SeasonStart      time.Time
	IngestMaxWorkers int `validate:"min=1"`

	NBAStatsBaseURL               string        `validate:"required,url"`
	NBAStatsTimeout               time.Duration `validate:"gt=0"`
	NBAStatsMaxRetries            int           `validate:"min=0"`
	NBAStatsCircuitEnabled        bool
	NBAStatsCircuitFailureCount   int           `validate:"min=1"`
	NBAStatsCircuitOpenTimeout    time.Duration `validate:"gt=0"`
	NBAStatsCircuitHalfOpenMaxReq int           `validate:"min=1"`

	OddsAPIEnabled               bool
	OddsAPIBaseURL               string        `validate:"required,url"`
	OddsAPIKey                   string        `validate:"required_if=OddsAPIEnabled true"`
	OddsAPITimeout               time.Duration `validate:"gt=0"`
	OddsAPIMaxRetries            int           `validate:"min=0"`
	OddsAPICircuitEnabled        bool
	OddsAPICircuitFailureCount   int           `validate:"min=1"`
	OddsAPICircuitOpenTimeout    time.Duration `validate:"gt=0"`
	OddsAPICircuitHalfOpenMaxReq int           `validate:"min=1"`

	CacheEnabled bool
	CacheTTL     time.Duration `validate:"gt=0"`

	PprofEnabled bool
	PprofAddr    string `validate:"required_if=PprofEnabled true"`

	UptraceEnabled bool
	UptraceDSN     string `validate:"required_if=UptraceEnabled true"`

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string `validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName           string `validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration `validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	dataDir := strings.TrimSpace(getEnv("DATA_DIR", "./data"))
	storageBackend := strings.ToLower(strings.TrimSpace(getEnv("STORAGE_BACKEND", StorageCSV)))
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	seasonStartRaw := strings.TrimSpace(getEnv("SEASON_START", ""))
	var seasonStart time.Time
	if seasonStartRaw != "" {
		seasonStart, err = time.Parse("2006-01-02", seasonStartRaw)
		if err != nil {
			return Config{}, fmt.Errorf("parse SEASON_START: %w", err)
		}
	}

	ingestMaxWorkers, err := getEnvAsInt("INGEST_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse INGEST_MAX_WORKERS: %w", err)
	}

	nbaStatsTimeout, err := time.ParseDuration(getEnv("NBA_STATS_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_TIMEOUT: %w", err)
	}
	nbaStatsMaxRetries, err := getEnvAsInt("NBA_STATS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_MAX_RETRIES: %w", err)
	}
	nbaStatsCircuitEnabled, err := strconv.ParseBool(getEnv("NBA_STATS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_ENABLED: %w", err)
	}
	nbaStatsCircuitFailureCount, err := getEnvAsInt("NBA_STATS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	nbaStatsCircuitOpenTimeout, err := time.ParseDuration(getEnv("NBA_STATS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	nbaStatsCircuitHalfOpenMaxReq, err := getEnvAsInt("NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	oddsAPIEnabled, err := strconv.ParseBool(getEnv("ODDS_API_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_ENABLED: %w", err)
	}
	oddsAPITimeout, err := time.ParseDuration(getEnv("ODDS_API_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_TIMEOUT: %w", err)
	}
	oddsAPIMaxRetries, err := getEnvAsInt("ODDS_API_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_MAX_RETRIES: %w", err)
	}
	oddsAPICircuitEnabled, err := strconv.ParseBool(getEnv("ODDS_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_CIRCUIT_ENABLED: %w", err)
	}
	oddsAPICircuitFailureCount, err := getEnvAsInt("ODDS_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	oddsAPICircuitOpenTimeout, err := time.ParseDuration(getEnv("ODDS_API_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	oddsAPICircuitHalfOpenMaxReq, err := getEnvAsInt("ODDS_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDS_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "nba-totals-pipeline"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		DataDir:                 dataDir,
		StorageBackend:          storageBackend,
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		SeasonStart:      seasonStart,
		IngestMaxWorkers: ingestMaxWorkers,

		NBAStatsBaseURL:               strings.TrimSpace(getEnv("NBA_STATS_BASE_URL", "https://stats.nba.com/stats")),
		NBAStatsTimeout:               nbaStatsTimeout,
		NBAStatsMaxRetries:            nbaStatsMaxRetries,
		NBAStatsCircuitEnabled:        nbaStatsCircuitEnabled,
		NBAStatsCircuitFailureCount:   nbaStatsCircuitFailureCount,
		NBAStatsCircuitOpenTimeout:    nbaStatsCircuitOpenTimeout,
		NBAStatsCircuitHalfOpenMaxReq: nbaStatsCircuitHalfOpenMaxReq,

		OddsAPIEnabled:               oddsAPIEnabled,
		OddsAPIBaseURL:               strings.TrimSpace(getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4")),
		OddsAPIKey:                   strings.TrimSpace(getEnv("ODDS_API_KEY", "")),
		OddsAPITimeout:               oddsAPITimeout,
		OddsAPIMaxRetries:            oddsAPIMaxRetries,
		OddsAPICircuitEnabled:        oddsAPICircuitEnabled,
		OddsAPICircuitFailureCount:   oddsAPICircuitFailureCount,
		OddsAPICircuitOpenTimeout:    oddsAPICircuitOpenTimeout,
		OddsAPICircuitHalfOpenMaxReq: oddsAPICircuitHalfOpenMaxReq,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		PprofEnabled: pprofEnabled,
		PprofAddr:    strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     strings.TrimSpace(getEnv("UPTRACE_DSN", "")),

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
