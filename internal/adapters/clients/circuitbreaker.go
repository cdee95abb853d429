package clients

import (
	"sync"
	"time"
)

// State is a circuit breaker position.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen rejects requests until the cool-down elapses.
	StateOpen

	// StateHalfOpen admits a few probes to test recovery.
	StateHalfOpen
)

// String returns a human-readable name for the state.
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

const (
	defaultBreakerMaxFailures = 5
	defaultBreakerCoolDown    = 30 * time.Second
	defaultBreakerProbes      = 1
)

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures int

	// Timeout is the open-state cool-down before probing.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes and the
	// number of consecutive probe successes needed to close the circuit.
	HalfOpenLimit int
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.MaxFailures < 1 {
		c.MaxFailures = defaultBreakerMaxFailures
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultBreakerCoolDown
	}
	if c.HalfOpenLimit < 1 {
		c.HalfOpenLimit = defaultBreakerProbes
	}

	return c
}

// Counts is a point-in-time view of the breaker for health reporting.
type Counts struct {
	State               State
	ConsecutiveFailures int
	LastFailure         time.Time
}

// CircuitBreaker stops calls to an upstream that keeps failing.
//
//   - closed → open after MaxFailures consecutive failures
//   - open → half-open on the first Allow after Timeout
//   - half-open → closed after HalfOpenLimit consecutive successes
//   - half-open → open on any failure
type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       CircuitBreakerConfig
	state     State
	failures  int
	successes int
	probes    int
	lastFail  time.Time
	listener  func(from, to State)
	now       func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker. Zero config fields take defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg: cfg.withDefaults(),
		now: time.Now,
	}
}

// OnStateChange registers fn to run after every state transition.
// fn runs on its own goroutine and must not block for long.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.listener = fn
}

// Allow reports whether a request may proceed.
// A permitted half-open probe must be followed by RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFail) < cb.cfg.Timeout {
			return false
		}
		cb.setState(StateHalfOpen)
		cb.probes = 1
		return true
	case StateHalfOpen:
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}
		cb.probes++
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes--
		cb.successes++
		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.setState(StateClosed)
		}
	}
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFail = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.probes--
		cb.setState(StateOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// Counts returns the current state and failure streak.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Counts{
		State:               cb.state,
		ConsecutiveFailures: cb.failures,
		LastFailure:         cb.lastFail,
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}

	cb.state = to
	cb.failures = 0
	cb.successes = 0

	if cb.listener != nil {
		go cb.listener(from, to)
	}
}
