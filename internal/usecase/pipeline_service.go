package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

type ingestRunner interface {
	Ingest(ctx context.Context, input IngestInput) (IngestSummary, error)
}

type reconcileRunner interface {
	Reconcile(ctx context.Context) (ReconcileSummary, error)
}

type predictRunner interface {
	Predict(ctx context.Context, input PredictInput) (PredictSummary, error)
}

type recommendRunner interface {
	Recommend(ctx context.Context) (RecommendSummary, error)
}

type reportRunner interface {
	Report(ctx context.Context) (ReportSummary, error)
}

type PipelineInput struct {
	// TargetDate is the processing day; zero means today.
	TargetDate time.Time
	// Full triggers a season-length ingest backfill.
	Full bool
	// SkipTrain leaves the saved predictions untouched; the recommend
	// and report stages score whatever is already on file.
	SkipTrain bool
}

type PipelineStageResult struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type PipelineResult struct {
	Stages []PipelineStageResult `json:"stages"`
}

const (
	stageStatusSuccess = "success"
	stageStatusFailed  = "failed"
	stageStatusSkipped = "skipped"
)

// PipelineService runs the daily batch end to end. The ingest,
// reconcile, and report stages are load-bearing and abort the run; the
// predict and recommend stages are best-effort and only log their
// failures.
type PipelineService struct {
	ingest    ingestRunner
	reconcile reconcileRunner
	predict   predictRunner
	recommend recommendRunner
	report    reportRunner
	logger    *logging.Logger
}

func NewPipelineService(
	ingest ingestRunner,
	reconcile reconcileRunner,
	predict predictRunner,
	recommend recommendRunner,
	report reportRunner,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		ingest:    ingest,
		reconcile: reconcile,
		predict:   predict,
		recommend: recommend,
		report:    report,
		logger:    logger,
	}
}

func (s *PipelineService) Run(ctx context.Context, input PipelineInput) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	if s.ingest == nil || s.reconcile == nil || s.report == nil {
		return PipelineResult{}, fmt.Errorf("%w: pipeline is not fully configured", ErrDependencyUnavailable)
	}

	var result PipelineResult

	if err := s.runStage(ctx, &result, "ingest", false, func(ctx context.Context) error {
		_, err := s.ingest.Ingest(ctx, IngestInput{TargetDate: input.TargetDate, Full: input.Full})
		return err
	}); err != nil {
		return result, err
	}

	if err := s.runStage(ctx, &result, "reconcile", false, func(ctx context.Context) error {
		_, err := s.reconcile.Reconcile(ctx)
		return err
	}); err != nil {
		return result, err
	}

	if input.SkipTrain || s.predict == nil {
		result.Stages = append(result.Stages, PipelineStageResult{
			Stage:  "predict",
			Status: stageStatusSkipped,
		})
	} else if err := s.runStage(ctx, &result, "predict", true, func(ctx context.Context) error {
		_, err := s.predict.Predict(ctx, PredictInput{TargetDate: input.TargetDate})
		return err
	}); err != nil {
		return result, err
	}

	if s.recommend == nil {
		result.Stages = append(result.Stages, PipelineStageResult{
			Stage:  "recommend",
			Status: stageStatusSkipped,
		})
	} else if err := s.runStage(ctx, &result, "recommend", true, func(ctx context.Context) error {
		_, err := s.recommend.Recommend(ctx)
		return err
	}); err != nil {
		return result, err
	}

	if err := s.runStage(ctx, &result, "report", false, func(ctx context.Context) error {
		_, err := s.report.Report(ctx)
		return err
	}); err != nil {
		return result, err
	}

	return result, nil
}

func (s *PipelineService) runStage(
	ctx context.Context,
	result *PipelineResult,
	name string,
	bestEffort bool,
	fn func(ctx context.Context) error,
) error {
	start := time.Now()
	err := fn(ctx)
	row := PipelineStageResult{
		Stage:      name,
		Status:     stageStatusSuccess,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		row.Status = stageStatusFailed
		row.Message = err.Error()
	}
	result.Stages = append(result.Stages, row)

	s.logger.InfoContext(ctx, "pipeline stage finished",
		"stage", name,
		"status", row.Status,
		"duration_ms", row.DurationMs,
	)

	if err == nil {
		return nil
	}
	if bestEffort {
		s.logger.WarnContext(ctx, "best-effort stage failed, continuing", "stage", name, "error", err)
		return nil
	}
	return fmt.Errorf("%s stage: %w", name, err)
}
