package circuitbreaker

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the breaker state.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown has elapsed.
	StateOpen
	// StateHalfOpen lets a single probe call through.
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
	default:
		return "unknown"
	}
}

// QuoteBreaker stops hammering an unhealthy RPC endpoint: after FailureThreshold
// consecutive transport failures it opens for Cooldown, then admits one probe.
type QuoteBreaker struct {
	failureThreshold int
	cooldown         time.Duration
	logger           *zap.Logger
	now              func() time.Time

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool
	probeSeq            uint64
	totalTrips          int
}

// Permit is handed to an admitted caller. Only the permit of the current
// half-open probe can give its slot back through Release.
type Permit struct {
	probe bool
	seq   uint64
}

// Probe reports whether the permit was issued to a half-open probe.
func (p Permit) Probe() bool {
	return p.probe
}

// Config holds circuit breaker configuration.
type Config struct {
	FailureThreshold int
	Cooldown         time.Duration
	Logger           *zap.Logger
	Now              func() time.Time // optional, for tests
}

// Status holds current circuit breaker status for debugging and HTTP endpoints.
type Status struct {
	State               string    `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	OpenedAt            time.Time `json:"opened_at"`
	TotalTrips          int       `json:"total_trips"`
}

// New creates a new circuit breaker with the given configuration.
func New(cfg *Config) (breaker *QuoteBreaker, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.FailureThreshold <= 0 {
		return nil, fmt.Errorf("failure threshold must be positive")
	}
	if cfg.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	breaker = &QuoteBreaker{
		failureThreshold: cfg.FailureThreshold,
		cooldown:         cfg.Cooldown,
		logger:           cfg.Logger,
		now:              now,
		state:            StateClosed,
	}

	BreakerState.Set(float64(StateClosed))

	return breaker, nil
}

// Allow reports whether a call may proceed. Callers that may later Release
// must use Admit instead.
func (b *QuoteBreaker) Allow() bool {
	_, ok := b.Admit()
	return ok
}

// Admit reports whether a call may proceed and returns its permit. In the
// half-open state only one caller is admitted until it reports back via
// RecordSuccess, RecordFailure or Release.
func (b *QuoteBreaker) Admit() (Permit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return Permit{}, true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			BreakerRejectionsTotal.Inc()
			return Permit{}, false
		}
		b.transition(StateHalfOpen)
		return b.admitProbe(), true
	case StateHalfOpen:
		if b.probeInFlight {
			BreakerRejectionsTotal.Inc()
			return Permit{}, false
		}
		return b.admitProbe(), true
	}

	return Permit{}, false
}

// admitProbe must be called with mu held.
func (b *QuoteBreaker) admitProbe() Permit {
	b.probeSeq++
	b.probeInFlight = true
	return Permit{probe: true, seq: b.probeSeq}
}

// RecordSuccess closes the breaker and resets the failure count.
func (b *QuoteBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.probeInFlight = false
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

// RecordFailure counts a transport failure and opens the breaker when the
// threshold is reached or a half-open probe fails.
func (b *QuoteBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.probeInFlight = false

	if b.state == StateHalfOpen || (b.state == StateClosed && b.consecutiveFailures >= b.failureThreshold) {
		b.openedAt = b.now()
		b.totalTrips++
		BreakerTripsTotal.Inc()
		b.transition(StateOpen)
	}
}

// Release gives back a probe slot without recording an outcome (e.g. caller cancelled).
// Permits of calls admitted while closed, or of earlier probes, are ignored.
func (b *QuoteBreaker) Release(p Permit) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.probe && p.seq == b.probeSeq && b.state == StateHalfOpen {
		b.probeInFlight = false
	}
}

// GetStatus returns current circuit breaker status.
func (b *QuoteBreaker) GetStatus() (status Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status = Status{
		State:               b.state.String(),
		ConsecutiveFailures: b.consecutiveFailures,
		OpenedAt:            b.openedAt,
		TotalTrips:          b.totalTrips,
	}

	return status
}

// State returns the current state.
func (b *QuoteBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// transition must be called with mu held.
func (b *QuoteBreaker) transition(to State) {
	from := b.state
	b.state = to

	BreakerState.Set(float64(to))
	BreakerStateChanges.Inc()

	switch to {
	case StateOpen:
		b.logger.Warn("quote-breaker-opened",
			zap.String("from", from.String()),
			zap.Int("consecutive-failures", b.consecutiveFailures),
			zap.Duration("cooldown", b.cooldown))
	case StateHalfOpen:
		b.logger.Info("quote-breaker-half-open",
			zap.Duration("open-for", b.now().Sub(b.openedAt)))
	case StateClosed:
		b.logger.Info("quote-breaker-closed",
			zap.String("from", from.String()))
	}
}
