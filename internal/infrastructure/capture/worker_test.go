package capture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workerOK(t *testing.T, image []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WorkerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, r.Header.Get(CorrelationHeader), req.CorrelationID)

		_ = json.NewEncoder(w).Encode(WorkerResponse{
			OK:          true,
			ImageBase64: base64.StdEncoding.EncodeToString(image),
		})
	}
}

func TestWorkerClientCapture(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(workerOK(t, image))
	defer srv.Close()

	client := NewWorkerClient(srv.URL, WithWorkerViewport(1280, 800))
	got, err := client.CaptureWith(context.Background(), "https://example.com", "corr-1")
	require.NoError(t, err)
	assert.Equal(t, image, got)
}

func TestWorkerClientThreadsCorrelationID(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get(CorrelationHeader))
		_ = json.NewEncoder(w).Encode(WorkerResponse{
			OK:          true,
			ImageBase64: base64.StdEncoding.EncodeToString([]byte("img")),
		})
	}))
	defer srv.Close()

	client := NewWorkerClient(srv.URL)
	_, err := client.CaptureWith(context.Background(), "https://example.com", "corr-42")
	require.NoError(t, err)
	assert.Equal(t, "corr-42", seen.Load())
}

func TestWorkerClientNoRetryOnHTTPError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewWorkerClient(srv.URL)
	_, err := client.CaptureWith(context.Background(), "https://example.com", "corr-1")

	var captureErr *CaptureError
	require.ErrorAs(t, err, &captureErr)
	assert.Equal(t, ErrCodeWorkerFailed, captureErr.Code)
	assert.Equal(t, int32(1), calls.Load(), "non-2xx responses are not retried")
}

func TestWorkerClientRetriesNetworkFailureOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewWorkerClient(srv.URL)
	_, err := client.CaptureWith(context.Background(), "https://example.com", "corr-1")

	var captureErr *CaptureError
	require.ErrorAs(t, err, &captureErr)
	assert.Equal(t, ErrCodeWorkerFailed, captureErr.Code)
}

func TestWorkerClientUnset(t *testing.T) {
	client := NewWorkerClient("")
	_, err := client.CaptureWith(context.Background(), "https://example.com", "corr-1")

	var captureErr *CaptureError
	require.ErrorAs(t, err, &captureErr)
	assert.Equal(t, ErrCodeWorkerUnset, captureErr.Code)
}

func TestWorkerClientWorkerReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(WorkerResponse{OK: false, Error: "browser crashed"})
	}))
	defer srv.Close()

	client := NewWorkerClient(srv.URL)
	_, err := client.CaptureWith(context.Background(), "https://example.com", "corr-1")

	var captureErr *CaptureError
	require.ErrorAs(t, err, &captureErr)
	assert.Equal(t, ErrCodeWorkerFailed, captureErr.Code)
	assert.Contains(t, captureErr.Message, "browser crashed")
}
