package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/lucabrevi/nba-totals/external/nbastats"
	"github.com/lucabrevi/nba-totals/external/oddsapi"
	"github.com/lucabrevi/nba-totals/internal/config"
	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/infrastructure/repository/csvstore"
	"github.com/lucabrevi/nba-totals/internal/infrastructure/repository/postgres"
	"github.com/lucabrevi/nba-totals/internal/platform/cache"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
	"github.com/lucabrevi/nba-totals/internal/platform/resilience"
	"github.com/lucabrevi/nba-totals/internal/usecase"
)

// Pipeline owns the wired services and the resources behind them.
type Pipeline struct {
	Service *usecase.PipelineService

	db *sqlx.DB
}

func (p *Pipeline) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// BuildPipeline assembles the full daily run from configuration. The
// raw source tables, odds, injuries, and prediction outputs always
// live on CSV; only the canonical game table moves to Postgres when
// STORAGE_BACKEND says so.
func BuildPipeline(cfg config.Config, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}

	gameFiles := csvstore.NewGameStore(cfg.DataDir)
	oddsStore := csvstore.NewOddsStore(cfg.DataDir)
	injuryStore := csvstore.NewInjuryStore(cfg.DataDir)
	overrideStore := csvstore.NewOverrideStore(cfg.DataDir, logger)
	predictionStore := csvstore.NewPredictionStore(cfg.DataDir)

	var (
		canonical game.Repository = gameFiles
		db        *sqlx.DB
	)
	if cfg.StorageBackend == config.StoragePostgres {
		opened, err := openDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		canonical = postgres.NewGameRepository(db)
	}

	var scoreboard usecase.ScoreboardProvider = nbastats.NewClient(nbastats.ClientConfig{
		HTTPClient: tracedHTTPClient(cfg.NBAStatsTimeout),
		BaseURL:    cfg.NBAStatsBaseURL,
		Timeout:    cfg.NBAStatsTimeout,
		MaxRetries: cfg.NBAStatsMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NBAStatsCircuitEnabled,
			FailureThreshold: cfg.NBAStatsCircuitFailureCount,
			OpenTimeout:      cfg.NBAStatsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NBAStatsCircuitHalfOpenMaxReq,
		},
	})
	if cfg.CacheEnabled {
		scoreboard = newCachedScoreboard(scoreboard, cache.NewStore(cfg.CacheTTL))
	}

	var oddsFeed usecase.OddsProvider
	if cfg.OddsAPIEnabled {
		oddsFeed = oddsapi.NewClient(oddsapi.ClientConfig{
			HTTPClient: tracedHTTPClient(cfg.OddsAPITimeout),
			BaseURL:    cfg.OddsAPIBaseURL,
			APIKey:     cfg.OddsAPIKey,
			Timeout:    cfg.OddsAPITimeout,
			MaxRetries: cfg.OddsAPIMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.OddsAPICircuitEnabled,
				FailureThreshold: cfg.OddsAPICircuitFailureCount,
				OpenTimeout:      cfg.OddsAPICircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.OddsAPICircuitHalfOpenMaxReq,
			},
		})
	}

	ingestSvc := usecase.NewIngestService(scoreboard, oddsFeed, gameFiles, oddsStore, usecase.IngestConfig{
		SeasonStart: cfg.SeasonStart,
		MaxWorkers:  cfg.IngestMaxWorkers,
	}, logger)
	reconcileSvc := usecase.NewReconcileService(canonical, gameFiles, overrideStore, gameFiles, logger)
	augmentSvc := usecase.NewAugmentService(canonical, oddsStore, injuryStore, injuryStore, logger)
	predictSvc := usecase.NewPredictService(augmentSvc, predictionStore, logger)
	recommendSvc := usecase.NewRecommendService(predictionStore, predictionStore, oddsStore, logger)
	reportSvc := usecase.NewReportService(canonical, predictionStore, predictionStore, logger)

	service := usecase.NewPipelineService(ingestSvc, reconcileSvc, predictSvc, recommendSvc, reportSvc, logger)

	return &Pipeline{Service: service, db: db}, nil
}

func tracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
