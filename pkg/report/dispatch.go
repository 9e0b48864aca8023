package report

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/baitline/baitline/pkg/telemetry"
)

// Dispatcher hands dossiers off to a sink on detached goroutines. Each
// dispatch runs under its own bounded timeout, isolated from the turn's
// control flow and error channel: the caller returns its reply before, or
// without, the delivery outcome existing.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps sink with fire-and-forget semantics. timeout bounds
// each delivery attempt.
func NewDispatcher(sink Sink, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sink: sink, timeout: timeout}
}

// Dispatch schedules delivery and returns immediately. Failures are logged
// and counted, never returned.
func (d *Dispatcher) Dispatch(dossier *Dossier) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sink.Send(ctx, dossier); err != nil {
			telemetry.ReportsDispatched.WithLabelValues("error").Inc()
			log.Printf("[REPORT] Dispatch failed for session %s: %v", dossier.SessionID, err)
			return
		}
		telemetry.ReportsDispatched.WithLabelValues("ok").Inc()
		log.Printf("[REPORT] Dossier %s dispatched for session %s (threat %d)",
			dossier.ReportID, dossier.SessionID, dossier.ThreatLevel)
	}()
}

// Wait blocks until all in-flight dispatches finish. Shutdown and test
// helper.
func (d *Dispatcher) Wait() { d.wg.Wait() }
