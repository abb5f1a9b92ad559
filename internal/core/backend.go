package core

import (
	"time"
)

// BackendKind selects how unscored messages are classified
type BackendKind int

const (
	BackendNone BackendKind = iota
	BackendLocal
	BackendRemote
	BackendLLM
)

// String returns the configuration name of the backend kind
func (k BackendKind) String() string {
	switch k {
	case BackendLocal:
		return "local"
	case BackendRemote:
		return "remote"
	case BackendLLM:
		return "llm"
	default:
		return "none"
	}
}

// Backend is the scoring backend handed to the VerdictService
type Backend struct {
	Kind     BackendKind
	Scorer   Scorer
	Throttle time.Duration
}

// NoBackend disables scoring
func NoBackend() Backend {
	return Backend{Kind: BackendNone}
}

// LocalBackend scores with an on-device model
func LocalBackend(scorer Scorer) Backend {
	return Backend{Kind: BackendLocal, Scorer: scorer}
}

// RemoteBackend scores over the network, pausing throttle between calls
func RemoteBackend(scorer Scorer, throttle time.Duration) Backend {
	return Backend{Kind: BackendRemote, Scorer: scorer, Throttle: throttle}
}

// LLMBackend scores with a hosted language model
func LLMBackend(scorer Scorer, throttle time.Duration) Backend {
	return Backend{Kind: BackendLLM, Scorer: scorer, Throttle: throttle}
}

// Enabled reports whether the backend can score messages
func (b Backend) Enabled() bool {
	return b.Kind != BackendNone && b.Scorer != nil
}

func (b Backend) networked() bool {
	return b.Kind == BackendRemote || b.Kind == BackendLLM
}
