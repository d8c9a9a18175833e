// Package resilience holds the circuit breaker guarding the audit archive
// writes. The turn pipeline itself never retries and never calls out; the
// breaker only keeps the write-behind queue from hammering a database that
// is already failing.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen rejects a call while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of a breaker: closed passes calls through, open rejects them, and
// half-open admits a bounded number of probes once the reset timeout has
// elapsed.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreakerConfig tunes a breaker. Zero fields take the defaults.
type CircuitBreakerConfig struct {
	// Name labels the breaker in log lines.
	Name string

	// MaxFailures is the consecutive-failure count that opens the breaker.
	// Default 5.
	MaxFailures int

	// ResetTimeout is how long the breaker stays open before probing the
	// dependency again. Default 30s.
	ResetTimeout time.Duration

	// HalfOpenMax is the probe budget of the half-open state; that many
	// successes in a row close the breaker, any failure reopens it.
	// Default 3.
	HalfOpenMax int
}

// CircuitBreaker is a three-state breaker, safe for concurrent use.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probes      int
	probeOK     int
}

// NewCircuitBreaker builds a breaker from cfg, filling defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
	}
}

// Execute runs fn unless the breaker rejects the call, and feeds the
// outcome back into the state machine. While open it returns
// [ErrCircuitOpen] without touching fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probe, err := cb.allow()
	if err != nil {
		return err
	}
	err = fn()
	cb.observe(probe, err)
	return err
}

// allow decides whether a call may proceed and whether it counts as a
// half-open probe.
func (cb *CircuitBreaker) allow() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.resetTimeout {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probes = 0
		cb.probeOK = 0
		slog.Info("circuit breaker probing dependency", "name", cb.name)
	case StateHalfOpen:
		if cb.probes >= cb.halfOpenMax {
			return false, ErrCircuitOpen
		}
	}

	if cb.state == StateHalfOpen {
		cb.probes++
		return true, nil
	}
	return false, nil
}

// observe applies one call outcome.
func (cb *CircuitBreaker) observe(probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.lastFailure = time.Now()
		if probe {
			// A failed probe reopens immediately.
			cb.state = StateOpen
			cb.failures = cb.maxFailures
			slog.Warn("circuit breaker reopened", "name", cb.name)
			return
		}
		cb.failures++
		if cb.state == StateClosed && cb.failures >= cb.maxFailures {
			cb.state = StateOpen
			slog.Warn("circuit breaker opened",
				"name", cb.name,
				"consecutive_failures", cb.failures)
		}
		return
	}

	if probe {
		cb.probeOK++
		if cb.probeOK >= cb.halfOpenMax {
			cb.state = StateClosed
			cb.failures = 0
			cb.probes = 0
			cb.probeOK = 0
			slog.Info("circuit breaker closed", "name", cb.name)
		}
		return
	}
	cb.failures = 0
}

// State reports the current state. An open breaker whose reset timeout has
// elapsed reports half-open; the transition itself happens on the next
// [CircuitBreaker.Execute].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.probes = 0
	cb.probeOK = 0
	slog.Info("circuit breaker reset", "name", cb.name)
}
