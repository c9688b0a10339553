package capture

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultCaptureTimeout = 30 * time.Second
	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
	screenshotQuality     = 90
)

// ChromeConfig contains configuration for the local Chromium capturer
type ChromeConfig struct {
	// Timeout bounds one capture attempt (default 30s)
	Timeout time.Duration
	// ViewportWidth and ViewportHeight set the emulated viewport (1280x800)
	ViewportWidth  int
	ViewportHeight int
	// ExecPath overrides Chromium binary discovery (empty = default lookup)
	ExecPath string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// ChromeCapturer captures full-page screenshots with a local headless
// Chromium. Every call launches its own browser process and tears it down on
// all exit paths; a browser is never shared across requests.
type ChromeCapturer struct {
	config *ChromeConfig
	logger *zap.Logger
}

// NewChromeCapturer creates a new chromedp-based capturer
func NewChromeCapturer(config *ChromeConfig) *ChromeCapturer {
	if config == nil {
		config = &ChromeConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = defaultCaptureTimeout
	}
	if config.ViewportWidth == 0 {
		config.ViewportWidth = defaultViewportWidth
	}
	if config.ViewportHeight == 0 {
		config.ViewportHeight = defaultViewportHeight
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeCapturer{config: config, logger: logger}
}

// Capture renders the URL and returns a full-page PNG screenshot.
// Failures are always a *CaptureError: binary/asset problems classify as
// environment failures, navigation and deadline problems do not.
func (c *ChromeCapturer) Capture(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if c.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if c.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.config.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(c.config.ViewportWidth), int64(c.config.ViewportHeight)),
		chromedp.Navigate(url),
		chromedp.FullScreenshot(&buf, screenshotQuality),
	)
	if err != nil {
		return nil, c.classify(ctx, url, err)
	}
	if len(buf) == 0 {
		return nil, NewCaptureError(ErrCodeNavigationFailed, "capture produced an empty screenshot", nil)
	}

	c.logger.Info("screenshot captured",
		zap.String("url", url),
		zap.Int("bytes", len(buf)),
		zap.Duration("duration", time.Since(start)))

	return buf, nil
}

// classify maps a chromedp failure onto the capture error taxonomy
func (c *ChromeCapturer) classify(ctx context.Context, url string, err error) *CaptureError {
	if missingBinary(err) {
		return NewCaptureError(ErrCodeBinaryNotFound,
			"no Chromium binary available on this host", err)
	}
	if missingAssets(err) {
		return NewCaptureError(ErrCodeAssetsMissing,
			"Chromium is present but cannot start (missing shared libraries?)", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewCaptureError(ErrCodeTimeout,
			"capture of "+url+" exceeded the deadline", err)
	}
	return NewCaptureError(ErrCodeNavigationFailed,
		"navigation to "+url+" failed", err)
}

func missingBinary(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "no such file or directory") ||
		strings.Contains(msg, "could not find") && strings.Contains(msg, "chrome")
}

func missingAssets(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "error while loading shared libraries") ||
		strings.Contains(msg, "cannot open shared object file")
}

// Ensure ChromeCapturer implements Capturer
var _ Capturer = (*ChromeCapturer)(nil)
