package circuitbreaker

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(t *testing.T, threshold int, cooldown time.Duration) (*QuoteBreaker, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b, err := New(&Config{
		FailureThreshold: threshold,
		Cooldown:         cooldown,
		Logger:           zaptest.NewLogger(t),
		Now:              clock.Now,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return b, clock
}

func TestNew(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid-config",
			config:  &Config{FailureThreshold: 5, Cooldown: time.Second, Logger: logger},
			wantErr: false,
		},
		{
			name:    "nil-config",
			config:  nil,
			wantErr: true,
			errMsg:  "config cannot be nil",
		},
		{
			name:    "nil-logger",
			config:  &Config{FailureThreshold: 5, Cooldown: time.Second},
			wantErr: true,
			errMsg:  "logger cannot be nil",
		},
		{
			name:    "zero-threshold",
			config:  &Config{FailureThreshold: 0, Cooldown: time.Second, Logger: logger},
			wantErr: true,
			errMsg:  "failure threshold must be positive",
		},
		{
			name:    "zero-cooldown",
			config:  &Config{FailureThreshold: 5, Cooldown: 0, Logger: logger},
			wantErr: true,
			errMsg:  "cooldown must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.State() != StateClosed {
				t.Errorf("expected closed breaker, got %s", b.State())
			}
		})
	}
}

func TestQuoteBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(t, 3, time.Minute)

	for i := 0; i < 2; i++ {
		if !b.Allow() {
			t.Fatalf("call %d should be allowed", i)
		}
		b.RecordFailure()
	}

	if b.State() != StateClosed {
		t.Fatalf("expected closed after 2 failures, got %s", b.State())
	}

	b.Allow()
	b.RecordFailure()

	if b.State() != StateOpen {
		t.Fatalf("expected open after 3 failures, got %s", b.State())
	}

	if b.Allow() {
		t.Error("expected calls rejected while open")
	}
}

func TestQuoteBreaker_SuccessResetsCount(t *testing.T) {
	b, _ := newTestBreaker(t, 3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	if b.State() != StateClosed {
		t.Errorf("expected closed, success should reset failures; got %s", b.State())
	}
	if got := b.GetStatus().ConsecutiveFailures; got != 2 {
		t.Errorf("expected 2 consecutive failures, got %d", got)
	}
}

func TestQuoteBreaker_HalfOpenProbe(t *testing.T) {
	b, clock := newTestBreaker(t, 1, 10*time.Second)

	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	clock.Advance(5 * time.Second)
	if b.Allow() {
		t.Fatal("expected rejection before cooldown elapsed")
	}

	clock.Advance(6 * time.Second)
	if !b.Allow() {
		t.Fatal("expected probe to be admitted after cooldown")
	}
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %s", b.State())
	}

	// Only one probe at a time
	if b.Allow() {
		t.Error("expected second caller rejected while probe in flight")
	}

	b.RecordSuccess()
	if b.State() != StateClosed {
		t.Errorf("expected closed after successful probe, got %s", b.State())
	}
	if !b.Allow() {
		t.Error("expected calls allowed after close")
	}
}

func TestQuoteBreaker_FailedProbeReopens(t *testing.T) {
	b, clock := newTestBreaker(t, 5, time.Second)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.Advance(2 * time.Second)

	if !b.Allow() {
		t.Fatal("expected probe admitted")
	}
	b.RecordFailure()

	if b.State() != StateOpen {
		t.Fatalf("expected reopened after failed probe, got %s", b.State())
	}
	if got := b.GetStatus().TotalTrips; got != 2 {
		t.Errorf("expected 2 trips, got %d", got)
	}
}

func TestQuoteBreaker_ReleaseFreesProbe(t *testing.T) {
	b, clock := newTestBreaker(t, 1, time.Second)

	b.RecordFailure()
	clock.Advance(2 * time.Second)

	permit, ok := b.Admit()
	if !ok || !permit.Probe() {
		t.Fatal("expected probe admitted")
	}
	b.Release(permit)

	if !b.Allow() {
		t.Error("expected a new probe after release")
	}
}

func TestQuoteBreaker_ReleaseIgnoresNonProbe(t *testing.T) {
	b, clock := newTestBreaker(t, 1, time.Second)

	// Admitted while closed, still in flight when the breaker opens.
	early, ok := b.Admit()
	if !ok || early.Probe() {
		t.Fatal("expected a regular permit while closed")
	}

	b.RecordFailure()
	clock.Advance(2 * time.Second)

	probe, ok := b.Admit()
	if !ok || !probe.Probe() {
		t.Fatal("expected probe admitted after cooldown")
	}

	b.Release(early)

	if b.Allow() {
		t.Error("expected second caller rejected: releasing a non-probe permit must keep the probe slot")
	}

	b.Release(probe)
	if !b.Allow() {
		t.Error("expected a new probe after the probe released its slot")
	}
}

func TestQuoteBreaker_ReleaseIgnoresStaleProbe(t *testing.T) {
	b, clock := newTestBreaker(t, 1, time.Second)

	b.RecordFailure()
	clock.Advance(2 * time.Second)

	stale, _ := b.Admit()
	b.RecordFailure() // probe failed, breaker reopens
	clock.Advance(2 * time.Second)

	current, ok := b.Admit()
	if !ok || !current.Probe() {
		t.Fatal("expected a new probe after cooldown")
	}

	b.Release(stale)
	if b.Allow() {
		t.Error("expected stale probe permit to leave the current probe slot taken")
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(42):     "unknown",
	}

	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

// TestMetrics_Registration tests all metrics are initialized
func TestMetrics_Registration(t *testing.T) {
	if BreakerState == nil {
		t.Error("BreakerState not registered")
	}
	if BreakerStateChanges == nil {
		t.Error("BreakerStateChanges not registered")
	}
	if BreakerTripsTotal == nil {
		t.Error("BreakerTripsTotal not registered")
	}
	if BreakerRejectionsTotal == nil {
		t.Error("BreakerRejectionsTotal not registered")
	}
}
