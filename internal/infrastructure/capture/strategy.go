package capture

// Runtime describes the execution runtime the process lives in
type Runtime string

const (
	RuntimeProcess Runtime = "process"
	RuntimeEdge    Runtime = "edge"
)

// Platform describes where the process is deployed
type Platform string

const (
	PlatformSelfHosted Platform = "selfhosted"
	PlatformManaged    Platform = "managed"
)

// StrategyOverride is the configured capture strategy preference
type StrategyOverride string

const (
	OverrideAuto   StrategyOverride = "auto"
	OverrideLocal  StrategyOverride = "local"
	OverrideWorker StrategyOverride = "worker"
)

// Strategy is the resolved capture route for one request
type Strategy string

const (
	StrategyLocal  Strategy = "local"
	StrategyWorker Strategy = "worker"
)

// StrategyInput captures the runtime constraints strategy resolution needs
type StrategyInput struct {
	Runtime          Runtime
	Platform         Platform
	WorkerConfigured bool
	Override         StrategyOverride
}

// ResolveStrategy decides how a capture will be attempted.
//
//   - edge runtime: local capture is impossible; the worker is mandatory.
//   - managed platform: local headless binaries are assumed absent; worker
//     is mandatory.
//   - override "local" on self-hosted: always local, never fall back.
//   - override "worker": always delegate; fails when no worker is set.
//   - "auto" on self-hosted: local first; the engine retries environment
//     failures via the worker when one is configured.
func ResolveStrategy(in StrategyInput) (Strategy, *CaptureError) {
	if in.Runtime == RuntimeEdge {
		if !in.WorkerConfigured {
			return "", NewCaptureError(ErrCodeEdgeRuntimeUnavailable,
				"edge runtime cannot run a local browser and no capture worker is configured", nil)
		}
		return StrategyWorker, nil
	}

	if in.Platform == PlatformManaged {
		if !in.WorkerConfigured {
			return "", NewCaptureError(ErrCodeWorkerUnset,
				"managed platform requires a capture worker and none is configured", nil)
		}
		return StrategyWorker, nil
	}

	switch in.Override {
	case OverrideLocal:
		return StrategyLocal, nil
	case OverrideWorker:
		if !in.WorkerConfigured {
			return "", NewCaptureError(ErrCodeWorkerUnset,
				"capture strategy is set to worker but no worker is configured", nil)
		}
		return StrategyWorker, nil
	default:
		return StrategyLocal, nil
	}
}

// AllowWorkerFallback reports whether an environment-class failure of a local
// capture may be transparently retried through the worker.
func AllowWorkerFallback(in StrategyInput) bool {
	return in.Override == OverrideAuto && in.Platform == PlatformSelfHosted &&
		in.Runtime == RuntimeProcess && in.WorkerConfigured
}
