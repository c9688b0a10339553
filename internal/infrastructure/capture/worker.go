package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultWorkerTimeout = 60 * time.Second

// CorrelationHeader carries the per-audit correlation ID across the process
// boundary to the worker and back.
const CorrelationHeader = "X-Correlation-ID"

// WorkerRequest is the JSON payload sent to the remote capture worker
type WorkerRequest struct {
	URL            string `json:"url"`
	ViewportWidth  int    `json:"viewport_width"`
	ViewportHeight int    `json:"viewport_height"`
	CorrelationID  string `json:"correlation_id"`
}

// WorkerResponse is the JSON payload returned by the worker
type WorkerResponse struct {
	OK          bool   `json:"ok"`
	ImageBase64 string `json:"image_base64,omitempty"`
	Error       string `json:"error,omitempty"`
}

// WorkerClient delegates capture to a remote worker over HTTP. Network-level
// failures are retried once; non-2xx responses are not.
type WorkerClient struct {
	url            string
	client         *http.Client
	viewportWidth  int
	viewportHeight int
	logger         *zap.Logger
}

// WorkerClientOption is a functional option for WorkerClient
type WorkerClientOption func(*WorkerClient)

// WithWorkerTimeout sets a custom request timeout
func WithWorkerTimeout(d time.Duration) WorkerClientOption {
	return func(w *WorkerClient) {
		w.client.Timeout = d
	}
}

// WithWorkerViewport sets the requested viewport
func WithWorkerViewport(width, height int) WorkerClientOption {
	return func(w *WorkerClient) {
		w.viewportWidth = width
		w.viewportHeight = height
	}
}

// WithWorkerLogger sets a custom logger
func WithWorkerLogger(logger *zap.Logger) WorkerClientOption {
	return func(w *WorkerClient) {
		w.logger = logger
	}
}

// NewWorkerClient creates a client for the given worker URL
func NewWorkerClient(url string, opts ...WorkerClientOption) *WorkerClient {
	w := &WorkerClient{
		url:            url,
		client:         &http.Client{Timeout: defaultWorkerTimeout},
		viewportWidth:  defaultViewportWidth,
		viewportHeight: defaultViewportHeight,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CaptureWith delegates one capture to the worker, threading the correlation
// ID through the request so a failure can be traced across processes.
func (w *WorkerClient) CaptureWith(ctx context.Context, url, correlationID string) ([]byte, error) {
	if w.url == "" {
		return nil, NewCaptureError(ErrCodeWorkerUnset, "no capture worker configured", nil)
	}

	payload, err := json.Marshal(WorkerRequest{
		URL:            url,
		ViewportWidth:  w.viewportWidth,
		ViewportHeight: w.viewportHeight,
		CorrelationID:  correlationID,
	})
	if err != nil {
		return nil, NewCaptureError(ErrCodeWorkerFailed, "failed to encode worker request", err)
	}

	resp, err := w.post(ctx, payload, correlationID)
	if err != nil {
		// One automatic retry on network-level failure only.
		w.logger.Warn("worker call failed, retrying once",
			zap.String("correlation_id", correlationID), zap.Error(err))
		resp, err = w.post(ctx, payload, correlationID)
		if err != nil {
			return nil, NewCaptureError(ErrCodeWorkerFailed, "capture worker unreachable", err)
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, NewCaptureError(ErrCodeWorkerFailed, "failed to read worker response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewCaptureError(ErrCodeWorkerFailed,
			fmt.Sprintf("capture worker returned HTTP %d", resp.StatusCode), nil)
	}

	var workerResp WorkerResponse
	if err := json.Unmarshal(body, &workerResp); err != nil {
		return nil, NewCaptureError(ErrCodeWorkerFailed, "malformed worker response", err)
	}
	if !workerResp.OK {
		return nil, NewCaptureError(ErrCodeWorkerFailed, "capture worker reported: "+workerResp.Error, nil)
	}

	image, err := base64.StdEncoding.DecodeString(workerResp.ImageBase64)
	if err != nil {
		return nil, NewCaptureError(ErrCodeWorkerFailed, "worker returned undecodable image data", err)
	}
	if len(image) == 0 {
		return nil, NewCaptureError(ErrCodeWorkerFailed, "worker returned an empty image", nil)
	}
	return image, nil
}

func (w *WorkerClient) post(ctx context.Context, payload []byte, correlationID string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CorrelationHeader, correlationID)
	return w.client.Do(req)
}
