package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
	"github.com/uxlens/backend/internal/infrastructure/analysis"
	"github.com/uxlens/backend/internal/infrastructure/capture"
	"github.com/uxlens/backend/internal/infrastructure/storage"
)

// Analyzer is the model client the engine drives. *analysis.Client
// satisfies it; tests substitute fakes.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType, systemPrompt, userPrompt string) (*analysis.Result, error)
	Model() string
}

// WorkerCapturer delegates a capture to the remote worker.
type WorkerCapturer interface {
	CaptureWith(ctx context.Context, url, correlationID string) ([]byte, error)
}

var _ Analyzer = (*analysis.Client)(nil)
var _ WorkerCapturer = (*capture.WorkerClient)(nil)

// EngineConfig carries the runtime constraints strategy resolution needs
// plus the deterministic-mode switch.
type EngineConfig struct {
	Runtime          capture.Runtime
	Platform         capture.Platform
	Override         capture.StrategyOverride
	WorkerConfigured bool
	// Deterministic builds reports from the catalog without calling the
	// model. Only honored when set explicitly; it is never inferred.
	Deterministic bool
}

// DeterministicModel is the model identifier stamped on reports built
// without a model call.
const DeterministicModel = "deterministic"

// Engine orchestrates one audit request: strategy resolution, capture,
// analysis, validation and fallback, then the persistence handoff.
type Engine struct {
	cfg       EngineConfig
	capturer  capture.Capturer
	worker    WorkerCapturer
	analyzer  Analyzer
	validator *Validator
	prompts   PromptProvider
	repo      audit.Repository
	store     storage.ObjectStorage
	logger    *zap.Logger
}

// EngineOption is a functional option for configuring the Engine
type EngineOption func(*Engine)

// WithWorker wires the remote capture worker client
func WithWorker(worker WorkerCapturer) EngineOption {
	return func(e *Engine) {
		e.worker = worker
	}
}

// WithEngineLogger sets a custom logger for the Engine
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPrompts overrides the default prompt set
func WithPrompts(prompts PromptProvider) EngineOption {
	return func(e *Engine) {
		e.prompts = prompts
	}
}

// NewEngine creates a new audit engine. analyzer may be nil only in
// deterministic mode; capturer may be nil when the strategy can never
// resolve to local.
func NewEngine(
	cfg EngineConfig,
	capturer capture.Capturer,
	analyzer Analyzer,
	repo audit.Repository,
	store storage.ObjectStorage,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		cfg:       cfg,
		capturer:  capturer,
		analyzer:  analyzer,
		validator: NewValidator(),
		prompts:   DefaultPrompts{},
		repo:      repo,
		store:     store,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AuditInput is a URL audit request
type AuditInput struct {
	URL           string
	PageType      catalog.PageType
	Context       string
	Tier          audit.AccessTier
	CorrelationID string
}

// ImageAuditInput is an uploaded-screenshot audit request
type ImageAuditInput struct {
	Image         []byte
	ContentType   string
	PageType      catalog.PageType
	Context       string
	Tier          audit.AccessTier
	CorrelationID string
}

// Outcome is the result of one audit request. The report inside is always
// structurally valid; degradation shows up in its analysis state, never as
// a missing report.
type Outcome struct {
	AuditID       uuid.UUID
	Report        *audit.Report
	LockState     audit.LockState
	View          audit.View
	ImageURL      string
	Model         string
	LatencyMs     int64
	CorrelationID string
	CreatedAt     time.Time
}

// Run performs a URL audit. The returned error is always a
// *capture.CaptureError describing an environment the request cannot be
// served from; every other failure degrades into the report itself.
func (e *Engine) Run(ctx context.Context, input AuditInput) (*Outcome, error) {
	correlationID := input.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	log := e.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("page_type", input.PageType.String()),
		zap.String("url", input.URL),
	)

	strategyInput := capture.StrategyInput{
		Runtime:          e.cfg.Runtime,
		Platform:         e.cfg.Platform,
		WorkerConfigured: e.cfg.WorkerConfigured,
		Override:         e.cfg.Override,
	}
	strategy, serr := capture.ResolveStrategy(strategyInput)
	if serr != nil {
		log.Warn("No viable capture strategy", zap.String("code", serr.Code))
		return nil, serr
	}

	image, cerr := e.capture(ctx, strategy, strategyInput, input.URL, correlationID, log)
	if cerr != nil {
		if cerr.EnvironmentFailure() || cerr.Code == capture.ErrCodeWorkerFailed || cerr.Code == capture.ErrCodeWorkerUnset {
			return nil, cerr
		}
		// A bad target URL or a slow page, not a broken environment: the
		// request still gets a report.
		log.Warn("Capture failed, degrading", zap.String("code", cerr.Code), zap.Error(cerr))
		report := audit.BuildFallback(audit.StateDegradedL3, input.PageType, input.Tier.IncludesPaidIssues())
		return e.finish(ctx, report, input.PageType, input.Tier, input.URL, "", "", 0, correlationID, log), nil
	}

	imageURL := e.uploadScreenshot(ctx, image, "image/png", correlationID, log)

	report, model, latency := e.analyzeAndValidate(ctx, image, "image/png", input.PageType, input.Context, input.Tier, log)
	return e.finish(ctx, report, input.PageType, input.Tier, input.URL, imageURL, model, latency, correlationID, log), nil
}

// RunFromImage performs an audit of an uploaded screenshot. Capture cannot
// fail here, so the outcome error is always nil; degradation is carried in
// the report.
func (e *Engine) RunFromImage(ctx context.Context, input ImageAuditInput) (*Outcome, error) {
	correlationID := input.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	log := e.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("page_type", input.PageType.String()),
	)

	imageURL := e.uploadScreenshot(ctx, input.Image, input.ContentType, correlationID, log)

	var report *audit.Report
	var model string
	var latency int64
	if e.cfg.Deterministic {
		score, penalties := audit.ScoreFromImageMetrics(metricsFromImage(input.Image))
		report = buildDeterministicReport(input.PageType, input.Tier.IncludesPaidIssues(), score)
		model = DeterministicModel
		log.Info("Deterministic image audit", zap.Int("score", score), zap.Int("penalties", len(penalties)))
	} else {
		report, model, latency = e.analyzeAndValidate(ctx, input.Image, input.ContentType, input.PageType, input.Context, input.Tier, log)
	}

	return e.finish(ctx, report, input.PageType, input.Tier, "", imageURL, model, latency, correlationID, log), nil
}

// capture obtains the screenshot bytes for the resolved strategy, retrying
// environment failures through the worker when the auto rules allow it.
func (e *Engine) capture(
	ctx context.Context,
	strategy capture.Strategy,
	strategyInput capture.StrategyInput,
	url, correlationID string,
	log *zap.Logger,
) ([]byte, *capture.CaptureError) {
	if strategy == capture.StrategyWorker {
		return e.captureViaWorker(ctx, url, correlationID)
	}

	image, err := e.capturer.Capture(ctx, url)
	if err == nil {
		return image, nil
	}

	var cerr *capture.CaptureError
	if !errors.As(err, &cerr) {
		return nil, capture.NewCaptureError(capture.ErrCodeNavigationFailed, "capture failed", err)
	}
	if cerr.EnvironmentFailure() && capture.AllowWorkerFallback(strategyInput) {
		log.Info("Local capture environment unavailable, retrying via worker",
			zap.String("code", cerr.Code))
		return e.captureViaWorker(ctx, url, correlationID)
	}
	return nil, cerr
}

func (e *Engine) captureViaWorker(ctx context.Context, url, correlationID string) ([]byte, *capture.CaptureError) {
	if e.worker == nil {
		return nil, capture.NewCaptureError(capture.ErrCodeWorkerUnset, "no capture worker is configured", nil)
	}
	image, err := e.worker.CaptureWith(ctx, url, correlationID)
	if err == nil {
		return image, nil
	}
	var cerr *capture.CaptureError
	if errors.As(err, &cerr) {
		return nil, cerr
	}
	return nil, capture.NewCaptureError(capture.ErrCodeWorkerFailed, "capture worker call failed", err)
}

// analyzeAndValidate drives the model call and the validator, mapping every
// failure onto its degradation tier.
func (e *Engine) analyzeAndValidate(
	ctx context.Context,
	image []byte,
	mimeType string,
	pt catalog.PageType,
	pageContext string,
	tier audit.AccessTier,
	log *zap.Logger,
) (*audit.Report, string, int64) {
	includePaid := tier.IncludesPaidIssues()

	if e.cfg.Deterministic || e.analyzer == nil {
		report := buildDeterministicReport(pt, includePaid, 0)
		return report, DeterministicModel, 0
	}

	allowed := catalog.Allowed(pt, includePaid)
	result, err := e.analyzer.Analyze(ctx, image, mimeType,
		e.prompts.SystemPrompt(), e.prompts.UserPrompt(pt, pageContext, allowed))
	if err != nil {
		state := classifyAnalysisError(err)
		log.Warn("Analysis failed, degrading",
			zap.String("state", state.String()), zap.Error(err))
		return audit.BuildFallback(state, pt, includePaid), e.analyzer.Model(), 0
	}

	report, failure := e.validator.Validate(result.Text, pt, tier)
	if failure != nil {
		log.Warn("Model output failed validation, degrading",
			zap.String("rule", failure.Rule), zap.String("detail", failure.Detail))
		return audit.BuildFallback(audit.StateDegradedL1, pt, includePaid), result.Model, result.LatencyMs
	}
	return report, result.Model, result.LatencyMs
}

// classifyAnalysisError maps the analysis failure taxonomy onto
// degradation tiers: transport and deadline failures are l2, unusable
// output is l1, anything unrecognized is l3.
func classifyAnalysisError(err error) audit.AnalysisState {
	var reqErr *analysis.RequestError
	var timeoutErr *analysis.TimeoutError
	var outputErr *analysis.OutputError
	switch {
	case errors.As(err, &timeoutErr), errors.As(err, &reqErr):
		return audit.StateDegradedL2
	case errors.As(err, &outputErr):
		return audit.StateDegradedL1
	default:
		return audit.StateDegradedL3
	}
}

func (e *Engine) uploadScreenshot(ctx context.Context, image []byte, contentType, correlationID string, log *zap.Logger) string {
	if e.store == nil || len(image) == 0 {
		return ""
	}
	key := screenshotKey(correlationID, contentType)
	url, err := e.store.Upload(ctx, key, image, contentType)
	if err != nil {
		// The report is worth more than the stored screenshot.
		log.Warn("Screenshot upload failed", zap.Error(err))
		return ""
	}
	return url
}

func screenshotKey(correlationID, contentType string) string {
	ext := "png"
	if contentType == "image/jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("audits/%s/screenshot.%s", correlationID, ext)
}

// finish persists the record and assembles the outcome. A failed save is
// logged and the outcome still returned; the user keeps their report.
func (e *Engine) finish(
	ctx context.Context,
	report *audit.Report,
	pt catalog.PageType,
	tier audit.AccessTier,
	targetURL, imageURL, model string,
	latency int64,
	correlationID string,
	log *zap.Logger,
) *Outcome {
	rec := &audit.Record{
		ID:            uuid.New(),
		PageType:      pt,
		TargetURL:     targetURL,
		ImageURL:      imageURL,
		Tier:          tier,
		State:         report.AnalysisState,
		Model:         model,
		LatencyMs:     latency,
		CorrelationID: correlationID,
		Report:        report,
		CreatedAt:     time.Now().UTC(),
	}
	if e.repo != nil {
		if err := e.repo.Save(ctx, rec); err != nil {
			log.Error("Failed to persist audit", zap.Error(err))
		}
	}

	log.Info("Audit completed",
		zap.String("audit_id", rec.ID.String()),
		zap.String("state", report.AnalysisState.String()),
		zap.Int("score", report.UXScore))

	return &Outcome{
		AuditID:       rec.ID,
		Report:        report,
		LockState:     audit.LockStateFor(tier),
		View:          audit.AccessView(report, tier),
		ImageURL:      imageURL,
		Model:         model,
		LatencyMs:     latency,
		CorrelationID: correlationID,
		CreatedAt:     rec.CreatedAt,
	}
}
