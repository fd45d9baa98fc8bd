// Package observability provides the process-wide error/info/timing sink.
//
// The Sink keeps the call contract of a real telemetry client (init,
// capture error, capture message, start/stop measure) but stays entirely
// in-process: entries go to the injected logger and timings live in an
// in-memory map. No persistence, no batching, no network egress. Swapping
// in a real exporter later must not require call-site changes.
package observability

import (
	"sync"
	"time"

	"github.com/koopa0/pocketexpert/internal/log"
)

// Sink is the shared observability object. It is constructed explicitly
// and passed to components; there is no package-level state.
//
// All methods are no-ops until Init is called, mirroring telemetry SDKs
// that drop events before configuration. Sink is safe for concurrent use.
type Sink struct {
	logger log.Logger

	mu          sync.Mutex
	initialized bool
	timers      map[string]time.Time
}

// NewSink creates a sink writing to logger. Call Init before use.
func NewSink(logger log.Logger) *Sink {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Sink{
		logger: logger.With("component", "observability"),
		timers: make(map[string]time.Time),
	}
}

// Init activates the sink.
func (s *Sink) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	s.logger.Debug("observability sink initialized")
}

// Close deactivates the sink and drops pending timers.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.timers = make(map[string]time.Time)
}

// LogError captures an error with optional key/value context.
func (s *Sink) LogError(err error, kv ...any) {
	if err == nil || !s.active() {
		return
	}
	args := append([]any{"error", err}, kv...)
	s.logger.Error("error captured", args...)
}

// LogInfo captures an informational message.
func (s *Sink) LogInfo(msg string, kv ...any) {
	if !s.active() {
		return
	}
	s.logger.Info(msg, kv...)
}

// StartMeasure begins a named performance measurement. Starting a name
// that is already running restarts it.
func (s *Sink) StartMeasure(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.timers[name] = time.Now()
}

// EndMeasure completes a named measurement and returns its duration.
// Ending a measurement that was never started returns zero.
func (s *Sink) EndMeasure(name string) time.Duration {
	s.mu.Lock()
	start, ok := s.timers[name]
	if ok {
		delete(s.timers, name)
	}
	initialized := s.initialized
	s.mu.Unlock()

	if !ok || !initialized {
		return 0
	}
	d := time.Since(start)
	s.logger.Debug("performance measure", "name", name, "duration", d)
	return d
}

func (s *Sink) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}
