// Package circuitbreaker provides a circuit breaker for protecting
// downstream dependencies from cascading failures.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the state of the circuit breaker.
type State int

const (
	// StateClosed means calls pass through normally.
	StateClosed State = iota
	// StateOpen means calls are rejected immediately.
	StateOpen
	// StateHalfOpen means a limited number of probe calls are allowed.
	StateHalfOpen
)

// String returns the string representation of the state.
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

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the number of consecutive failures before the circuit opens.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive probe successes needed to close it again.
	SuccessThreshold int
	// Timeout is how long the circuit stays open before allowing a probe.
	Timeout time.Duration
	// Name identifies the breaker in log output.
	Name string
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Name:             "circuit-breaker",
	}
}

// CircuitBreaker tracks consecutive failures of a dependency and short-circuits
// calls while the dependency is considered unhealthy.
type CircuitBreaker struct {
	config       Config
	state        State
	failures     int
	successes    int
	openedAt     time.Time
	mu           sync.Mutex
}

// New creates a circuit breaker with the given configuration.
func New(config Config) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = DefaultConfig().SuccessThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// Execute runs fn under circuit breaker protection. When the circuit is open
// the call is rejected with ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := fn()
	cb.afterCall(err)
	return err
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.openedAt) < cb.config.Timeout {
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
	}
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.successes = 0
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
			cb.transition(StateOpen)
			cb.openedAt = time.Now()
		}
		return
	}

	cb.failures = 0
	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transition(StateClosed)
		}
	case StateClosed:
		cb.successes = 0
	}
}

// transition changes state and logs the change. Caller must hold the lock.
func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		return
	}
	log.Warn().
		Str("circuit_breaker", cb.config.Name).
		Str("from", cb.state.String()).
		Str("to", next.String()).
		Msg("Circuit breaker state change")
	cb.state = next
	cb.successes = 0
}
