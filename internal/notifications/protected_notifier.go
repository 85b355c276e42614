package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half_open"
)

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per send
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // open period before a trial call
	HalfOpenMaxCalls int           // concurrent trial calls

	// OnStateChange runs after every transition, outside the breaker lock.
	OnStateChange func(from, to string)
}

// ProtectedNotifier guards a Notifier with a per-send timeout and a circuit
// breaker, so a dead mail provider cannot stall the contact pipeline.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig
	now   func() time.Time

	mu       sync.Mutex
	state    string
	failures int
	openedAt time.Time
	trials   int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{inner: inner, cfg: cfg, now: time.Now, state: StateClosed}
}

func (n *ProtectedNotifier) SendContactAlert(ctx context.Context, alert ContactAlert) error {
	if !n.admit() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := n.inner.SendContactAlert(sendCtx, alert)
	n.record(err)

	return err
}

func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// admit reports whether a send may proceed, moving open to half-open once
// the cooldown has passed.
func (n *ProtectedNotifier) admit() bool {
	n.mu.Lock()
	from := n.state
	ok := true

	switch n.state {
	case StateOpen:
		if n.now().Sub(n.openedAt) < n.cfg.Cooldown {
			ok = false
			break
		}
		n.state = StateHalfOpen
		n.trials = 1
	case StateHalfOpen:
		if n.trials >= n.cfg.HalfOpenMaxCalls {
			ok = false
			break
		}
		n.trials++
	}

	to := n.state
	n.mu.Unlock()

	n.notify(from, to)
	return ok
}

func (n *ProtectedNotifier) record(err error) {
	n.mu.Lock()
	from := n.state

	if n.state == StateHalfOpen && n.trials > 0 {
		n.trials--
	}

	switch {
	case err == nil:
		n.failures = 0
		n.state = StateClosed
	default:
		n.failures++
		// a failed trial reopens immediately
		if n.state == StateHalfOpen || n.failures >= n.cfg.FailureThreshold {
			n.state = StateOpen
			n.openedAt = n.now()
		}
	}

	to := n.state
	n.mu.Unlock()

	n.notify(from, to)
}

func (n *ProtectedNotifier) notify(from, to string) {
	if from != to && n.cfg.OnStateChange != nil {
		n.cfg.OnStateChange(from, to)
	}
}
