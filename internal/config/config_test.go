package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataDir != "./data" {
		t.Fatalf("unexpected DataDir: %q", cfg.DataDir)
	}
	if cfg.StorageBackend != StorageCSV {
		t.Fatalf("unexpected StorageBackend: %q", cfg.StorageBackend)
	}
	if cfg.IngestMaxWorkers != 4 {
		t.Fatalf("unexpected IngestMaxWorkers: %d", cfg.IngestMaxWorkers)
	}
	if cfg.NBAStatsTimeout != 20*time.Second {
		t.Fatalf("unexpected NBAStatsTimeout: %s", cfg.NBAStatsTimeout)
	}
	if cfg.OddsAPIEnabled {
		t.Fatalf("odds feed must default to disabled")
	}
}

func TestLoad_StorageBackendValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported STORAGE_BACKEND")
	}
}

func TestLoad_PostgresRequiresDBURL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_BACKEND", StoragePostgres)
	t.Setenv("DB_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STORAGE_BACKEND=postgres without DB_URL")
	}
}

func TestLoad_OddsAPIRequiresKeyWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ODDS_API_ENABLED", "true")
	t.Setenv("ODDS_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ODDS_API_ENABLED=true without ODDS_API_KEY")
	}
}

func TestLoad_SeasonStartParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SEASON_START", "2025-10-21")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC)
	if !cfg.SeasonStart.Equal(want) {
		t.Fatalf("unexpected SeasonStart: %s", cfg.SeasonStart)
	}
}

func TestLoad_SeasonStartRejectsBadFormat(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SEASON_START", "21/10/2025")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed SEASON_START")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeRequiresServerWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_IngestWorkerValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("INGEST_MAX_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for INGEST_MAX_WORKERS=0")
	}
}

func TestLoad_CustomOddsAPISettings(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ODDS_API_ENABLED", "true")
	t.Setenv("ODDS_API_KEY", "key-123")
	t.Setenv("ODDS_API_TIMEOUT", "5s")
	t.Setenv("ODDS_API_MAX_RETRIES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.OddsAPIEnabled || cfg.OddsAPIKey != "key-123" {
		t.Fatalf("odds settings not applied: %+v", cfg)
	}
	if cfg.OddsAPITimeout != 5*time.Second {
		t.Fatalf("unexpected OddsAPITimeout: %s", cfg.OddsAPITimeout)
	}
	if cfg.OddsAPIMaxRetries != 3 {
		t.Fatalf("unexpected OddsAPIMaxRetries: %d", cfg.OddsAPIMaxRetries)
	}
}
