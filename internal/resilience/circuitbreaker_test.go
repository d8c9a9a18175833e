package resilience

import (
	"errors"
	"testing"
	"time"
)

var errArchive = errors.New("archive unavailable")

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errArchive })
	}
}

func TestNewCircuitBreaker_FillsDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "audit"})
	if cb.maxFailures != 5 || cb.resetTimeout != 30*time.Second || cb.halfOpenMax != 3 {
		t.Errorf("defaults = %d/%v/%d, want 5/30s/3",
			cb.maxFailures, cb.resetTimeout, cb.halfOpenMax)
	}
	if got := cb.State(); got != StateClosed {
		t.Errorf("initial state = %v, want closed", got)
	}
}

func TestExecute_ClosedPassesCallsThrough(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "audit"})
	ran := false
	if err := cb.Execute(func() error { ran = true; return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Fatal("call did not run")
	}
}

func TestExecute_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "audit",
		MaxFailures:  3,
		ResetTimeout: time.Hour,
	})

	failN(cb, 3)
	if got := cb.State(); got != StateOpen {
		t.Fatalf("state = %v, want open after 3 failures", got)
	}

	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if ran {
		t.Fatal("open breaker must not run the call")
	}
}

func TestExecute_SuccessClearsFailureStreak(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "audit", MaxFailures: 3})

	failN(cb, 2)
	_ = cb.Execute(func() error { return nil })
	failN(cb, 2)

	if got := cb.State(); got != StateClosed {
		t.Errorf("state = %v, want closed (streak was broken)", got)
	}
}

func TestExecute_ProbesAfterResetTimeout(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "audit",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	failN(cb, 2)
	time.Sleep(15 * time.Millisecond)

	if got := cb.State(); got != StateHalfOpen {
		t.Fatalf("state = %v, want half-open after the timeout", got)
	}

	// Enough clean probes close the breaker again.
	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
	}
	if got := cb.State(); got != StateClosed {
		t.Errorf("state = %v, want closed after clean probes", got)
	}
}

func TestExecute_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "audit",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
	})

	failN(cb, 2)
	time.Sleep(15 * time.Millisecond)

	if err := cb.Execute(func() error { return errArchive }); !errors.Is(err, errArchive) {
		t.Fatalf("probe err = %v, want the archive error", err)
	}

	// The failed probe restarted the open period.
	cb.mu.Lock()
	s := cb.state
	cb.mu.Unlock()
	if s != StateOpen {
		t.Errorf("state = %v, want open after a failed probe", s)
	}
}

func TestReset_ClosesManually(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "audit",
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})

	failN(cb, 2)
	cb.Reset()
	if got := cb.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed after Reset", got)
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("Execute after Reset: %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
