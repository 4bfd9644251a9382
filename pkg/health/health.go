// Package health provides liveness and readiness probe endpoints backed by
// periodically executed checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one component, returning nil when it is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Service runs registered checks on a fixed interval and exposes the results
// as HTTP probe endpoints. Liveness failures indicate the process itself is
// broken; readiness failures indicate dependencies are unavailable and
// traffic should be routed elsewhere.
type Service struct {
	mu        sync.RWMutex
	liveness  []check
	readiness []check
	results   map[string]error
	ready     bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates an empty health Service. Register checks before calling Start.
func New() *Service {
	return &Service{
		results: make(map[string]error),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// AddLivenessCheck registers a check consulted by the liveness endpoint.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check consulted by the readiness endpoint.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the administrative readiness gate. The readiness endpoint
// reports failure while the gate is down regardless of check results, which
// lets shutdown drain traffic before the listener closes.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start launches the background runner executing every check each interval.
// All checks run once immediately so the endpoints have results before the
// first tick.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	go func() {
		defer close(s.done)
		s.runAll(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.runAll(ctx)
			}
		}
	}()
}

// Stop terminates the background runner and waits for it to exit.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Service) runAll(ctx context.Context) {
	s.mu.RLock()
	checks := make([]check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.RUnlock()

	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(checkCtx)
		cancel()

		s.mu.Lock()
		s.results[c.name] = err
		s.mu.Unlock()
	}
}

// LiveEndpoint serves the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.respond(w, s.liveness, true)
}

// ReadyEndpoint serves the readiness probe.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.respond(w, s.readiness, s.ready)
}

// respond writes the probe result. Callers hold s.mu at least for reading.
func (s *Service) respond(w http.ResponseWriter, checks []check, gate bool) {
	type body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	healthy := gate
	out := body{Checks: make(map[string]string, len(checks))}
	for _, c := range checks {
		if err, seen := s.results[c.name]; seen && err != nil {
			healthy = false
			out.Checks[c.name] = err.Error()
		} else {
			out.Checks[c.name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		out.Status = "ok"
		w.WriteHeader(http.StatusOK)
	} else {
		out.Status = "unavailable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(out)
}
