package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
	"github.com/uxlens/backend/internal/infrastructure/analysis"
	"github.com/uxlens/backend/internal/infrastructure/capture"
	"github.com/uxlens/backend/internal/infrastructure/storage"
)

type fakeCapturer struct {
	image []byte
	err   error
	calls int
}

func (f *fakeCapturer) Capture(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

type fakeWorker struct {
	image []byte
	err   error
	calls int
	seen  string
}

func (f *fakeWorker) CaptureWith(ctx context.Context, url, correlationID string) ([]byte, error) {
	f.calls++
	f.seen = correlationID
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

type fakeAnalyzer struct {
	text  string
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image []byte, mimeType, systemPrompt, userPrompt string) (*analysis.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &analysis.Result{Text: f.text, Model: "test-model", LatencyMs: 120}, nil
}

func (f *fakeAnalyzer) Model() string { return "test-model" }

type fakeRepo struct {
	saved []*audit.Record
	err   error
}

func (f *fakeRepo) Save(ctx context.Context, rec *audit.Record) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*audit.Record, error) {
	return nil, errors.New("not implemented")
}

func selfHostedConfig(workerConfigured bool) EngineConfig {
	return EngineConfig{
		Runtime:          capture.RuntimeProcess,
		Platform:         capture.PlatformSelfHosted,
		Override:         capture.OverrideAuto,
		WorkerConfigured: workerConfigured,
	}
}

func urlInput() AuditInput {
	return AuditInput{
		URL:      "https://example.com",
		PageType: catalog.PageTypeLanding,
		Tier:     audit.TierFree,
	}
}

func TestEngine_Run_HappyPath(t *testing.T) {
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	analyzer := &fakeAnalyzer{text: validJSONOutput}
	repo := &fakeRepo{}
	store := storage.NewStubObjectStorage()

	engine := NewEngine(selfHostedConfig(false), capturer, analyzer, repo, store)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, audit.StateFull, outcome.Report.AnalysisState)
	assert.Equal(t, "test-model", outcome.Model)
	assert.Equal(t, int64(120), outcome.LatencyMs)
	assert.NotEmpty(t, outcome.CorrelationID)
	assert.NotEmpty(t, outcome.ImageURL)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, outcome.AuditID, repo.saved[0].ID)
	assert.Equal(t, "https://example.com", repo.saved[0].TargetURL)
	assert.Equal(t, outcome.CorrelationID, repo.saved[0].CorrelationID)
}

func TestEngine_Run_AnalysisTimeoutDegradesToL2(t *testing.T) {
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	analyzer := &fakeAnalyzer{err: &analysis.TimeoutError{}}
	repo := &fakeRepo{}

	engine := NewEngine(selfHostedConfig(false), capturer, analyzer, repo, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	assert.Equal(t, audit.StateDegradedL2, outcome.Report.AnalysisState)
	assert.NoError(t, outcome.Report.Validate(false))
}

func TestEngine_Run_RequestErrorDegradesToL2(t *testing.T) {
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	analyzer := &fakeAnalyzer{err: &analysis.RequestError{StatusCode: 502, Message: "bad gateway"}}

	engine := NewEngine(selfHostedConfig(false), capturer, analyzer, &fakeRepo{}, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	assert.Equal(t, audit.StateDegradedL2, outcome.Report.AnalysisState)
}

func TestEngine_Run_OutputErrorDegradesToL1(t *testing.T) {
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	analyzer := &fakeAnalyzer{err: &analysis.OutputError{Message: "no text"}}

	engine := NewEngine(selfHostedConfig(false), capturer, analyzer, &fakeRepo{}, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	assert.Equal(t, audit.StateDegradedL1, outcome.Report.AnalysisState)
}

func TestEngine_Run_DisallowedTitleDegradesToL1(t *testing.T) {
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	// A dashboard-only title on a landing audit violates the vocabulary.
	analyzer := &fakeAnalyzer{
		text: `{"issues": [{"title": "Dense data tables without hierarchy", "recommendations": ["x"]}]}`,
	}

	engine := NewEngine(selfHostedConfig(false), capturer, analyzer, &fakeRepo{}, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	assert.Equal(t, audit.StateDegradedL1, outcome.Report.AnalysisState)
	assert.NoError(t, outcome.Report.Validate(false))
}

func TestEngine_Run_NavigationFailureDegradesToL3(t *testing.T) {
	capturer := &fakeCapturer{
		err: capture.NewCaptureError(capture.ErrCodeNavigationFailed, "dns lookup failed", nil),
	}
	analyzer := &fakeAnalyzer{text: validJSONOutput}
	worker := &fakeWorker{image: []byte("worker-bytes")}

	engine := NewEngine(selfHostedConfig(true), capturer, analyzer, &fakeRepo{}, nil, WithWorker(worker))

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	assert.Equal(t, audit.StateDegradedL3, outcome.Report.AnalysisState)
	// A bad target URL must never be silently retried through the worker.
	assert.Equal(t, 0, worker.calls)
	assert.Equal(t, 0, analyzer.calls)
}

func TestEngine_Run_EnvironmentFailureFallsBackToWorker(t *testing.T) {
	capturer := &fakeCapturer{
		err: capture.NewCaptureError(capture.ErrCodeBinaryNotFound, "chromium not found", nil),
	}
	analyzer := &fakeAnalyzer{text: validJSONOutput}
	worker := &fakeWorker{image: []byte("worker-bytes")}

	engine := NewEngine(selfHostedConfig(true), capturer, analyzer, &fakeRepo{}, nil, WithWorker(worker))

	input := urlInput()
	input.CorrelationID = "corr-42"
	outcome, err := engine.Run(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, audit.StateFull, outcome.Report.AnalysisState)
	assert.Equal(t, 1, worker.calls)
	assert.Equal(t, "corr-42", worker.seen)
}

func TestEngine_Run_EnvironmentFailureWithoutWorkerIsAnError(t *testing.T) {
	capturer := &fakeCapturer{
		err: capture.NewCaptureError(capture.ErrCodeBinaryNotFound, "chromium not found", nil),
	}

	engine := NewEngine(selfHostedConfig(false), capturer, &fakeAnalyzer{}, &fakeRepo{}, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.Error(t, err)
	assert.Nil(t, outcome)
	var cerr *capture.CaptureError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, capture.ErrCodeBinaryNotFound, cerr.Code)
}

func TestEngine_Run_EdgeRuntimeWithoutWorkerIsAnError(t *testing.T) {
	cfg := EngineConfig{
		Runtime:  capture.RuntimeEdge,
		Platform: capture.PlatformSelfHosted,
		Override: capture.OverrideAuto,
	}
	engine := NewEngine(cfg, nil, &fakeAnalyzer{}, &fakeRepo{}, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.Error(t, err)
	assert.Nil(t, outcome)
	var cerr *capture.CaptureError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, capture.ErrCodeEdgeRuntimeUnavailable, cerr.Code)
}

func TestEngine_Run_WorkerFailureIsAnError(t *testing.T) {
	cfg := EngineConfig{
		Runtime:          capture.RuntimeProcess,
		Platform:         capture.PlatformManaged,
		Override:         capture.OverrideAuto,
		WorkerConfigured: true,
	}
	worker := &fakeWorker{err: capture.NewCaptureError(capture.ErrCodeWorkerFailed, "worker returned 500", nil)}
	engine := NewEngine(cfg, nil, &fakeAnalyzer{}, &fakeRepo{}, nil, WithWorker(worker))

	outcome, err := engine.Run(context.Background(), urlInput())

	require.Error(t, err)
	assert.Nil(t, outcome)
	var cerr *capture.CaptureError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, capture.ErrCodeWorkerFailed, cerr.Code)
}

func TestEngine_Run_SaveFailureStillReturnsOutcome(t *testing.T) {
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	analyzer := &fakeAnalyzer{text: validJSONOutput}
	repo := &fakeRepo{err: errors.New("db down")}

	engine := NewEngine(selfHostedConfig(false), capturer, analyzer, repo, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, audit.StateFull, outcome.Report.AnalysisState)
}

func TestEngine_RunFromImage(t *testing.T) {
	analyzer := &fakeAnalyzer{text: validJSONOutput}
	repo := &fakeRepo{}
	store := storage.NewStubObjectStorage()

	engine := NewEngine(selfHostedConfig(false), nil, analyzer, repo, store)

	outcome, err := engine.RunFromImage(context.Background(), ImageAuditInput{
		Image:       []byte("jpeg-bytes"),
		ContentType: "image/jpeg",
		PageType:    catalog.PageTypeLanding,
		Tier:        audit.TierFree,
	})

	require.NoError(t, err)
	assert.Equal(t, audit.StateFull, outcome.Report.AnalysisState)
	assert.NotEmpty(t, outcome.ImageURL)
	require.Len(t, repo.saved, 1)
	assert.Empty(t, repo.saved[0].TargetURL)
}

func TestEngine_DeterministicMode(t *testing.T) {
	cfg := selfHostedConfig(false)
	cfg.Deterministic = true
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	analyzer := &fakeAnalyzer{text: validJSONOutput}

	engine := NewEngine(cfg, capturer, analyzer, &fakeRepo{}, nil)

	outcome, err := engine.Run(context.Background(), urlInput())

	require.NoError(t, err)
	assert.Equal(t, 0, analyzer.calls)
	assert.Equal(t, DeterministicModel, outcome.Model)
	assert.Equal(t, audit.StateFull, outcome.Report.AnalysisState)

	// The seed selection forces the first high-severity issue in catalog
	// order to slot 0.
	allowed := catalog.Allowed(catalog.PageTypeLanding, false)
	expected := catalog.PickN(allowed, audit.MaxIssues)
	require.Len(t, outcome.Report.Issues, len(expected))
	for i, entry := range expected {
		assert.Equal(t, entry.Title, outcome.Report.Issues[i].Title)
	}

	// Identical inputs must produce identical reports.
	again, err := engine.Run(context.Background(), urlInput())
	require.NoError(t, err)
	assert.Equal(t, outcome.Report.UXScore, again.Report.UXScore)
	assert.Equal(t, outcome.Report.Issues, again.Report.Issues)
}

func TestEngine_AccessViewByTier(t *testing.T) {
	capturer := &fakeCapturer{image: []byte("png-bytes")}
	analyzer := &fakeAnalyzer{text: validJSONOutput}
	engine := NewEngine(selfHostedConfig(false), capturer, analyzer, &fakeRepo{}, nil)

	t.Run("free tier sees only the teaser", func(t *testing.T) {
		outcome, err := engine.Run(context.Background(), urlInput())
		require.NoError(t, err)

		assert.Empty(t, outcome.View.VisibleIssues)
		require.NotNil(t, outcome.View.Teaser)
		assert.NotEmpty(t, outcome.View.Teaser.Issues)
		assert.True(t, outcome.LockState.ShowLockedCTA)
		assert.False(t, outcome.LockState.CanViewDetails)
	})

	t.Run("full tier sees everything", func(t *testing.T) {
		input := urlInput()
		input.Tier = audit.TierFull
		outcome, err := engine.Run(context.Background(), input)
		require.NoError(t, err)

		assert.NotEmpty(t, outcome.View.VisibleIssues)
		assert.False(t, outcome.LockState.ShowLockedCTA)
		assert.True(t, outcome.LockState.CanViewFull)
	})
}
