package honeypot

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baitline/baitline/pkg/engage"
	"github.com/baitline/baitline/pkg/report"
	"github.com/baitline/baitline/pkg/session"
)

// recordingSink collects every dossier it receives.
type recordingSink struct {
	mu       sync.Mutex
	dossiers []*report.Dossier
}

func (r *recordingSink) Send(_ context.Context, d *report.Dossier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dossiers = append(r.dossiers, d)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dossiers)
}

func newTestPipeline(opts ...Option) (*Orchestrator, *session.Store, *recordingSink, *report.Dispatcher) {
	store := session.NewStore()
	sink := &recordingSink{}
	disp := report.NewDispatcher(sink, time.Second)
	return New(store, disp, opts...), store, sink, disp
}

func TestHandleTurnActivatesOnPaymentHandle(t *testing.T) {
	orch, store, _, _ := newTestPipeline()

	res := orch.HandleTurn(context.Background(), "s1", "urgent, please send the fee to scammer@upi")

	if res.Status != "success" {
		t.Fatalf("Status = %q", res.Status)
	}
	s := store.Get("s1")
	if s == nil {
		t.Fatal("session not created")
	}
	if !s.ScamMode {
		t.Error("scam mode should latch on a payment marker")
	}

	evs := s.Intelligence[session.CategoryPaymentHandle]
	if len(evs) != 1 {
		t.Fatalf("payment evidence = %v, want one record", evs)
	}
	if evs[0].Value != "scammer@upi" || evs[0].SourceTurn != 1 {
		t.Errorf("evidence = %+v", evs[0])
	}
	if math.Abs(evs[0].Confidence-0.7) > 1e-9 {
		t.Errorf("confidence = %v, want 0.7", evs[0].Confidence)
	}

	// Payment evidence exists, so the first probe targets the link.
	if len(s.ProbesAsked) != 1 || s.ProbesAsked[0] != session.CategoryPhishingLink {
		t.Errorf("ProbesAsked = %v", s.ProbesAsked)
	}
	if res.Reply == "" {
		t.Error("probing reply is empty")
	}
	if s.ThreatLevel < 2 {
		t.Errorf("ThreatLevel = %d, want >= 2", s.ThreatLevel)
	}
	if s.Fingerprint.ScamType != "PAYMENT_REDIRECT_FRAUD" {
		t.Errorf("ScamType = %q", s.Fingerprint.ScamType)
	}
	if s.Fingerprint.PaymentChannel != "UPI" {
		t.Errorf("PaymentChannel = %q", s.Fingerprint.PaymentChannel)
	}
	if s.CallbackSent {
		t.Error("one category of evidence must not trigger a report")
	}
}

func TestHandleTurnNeutralUntilMessageFallback(t *testing.T) {
	orch, store, sink, disp := newTestPipeline()

	for i := 0; i < 5; i++ {
		res := orch.HandleTurn(context.Background(), "s2", "hello there, are we still on for lunch tomorrow")
		if res.Reply != engage.NewPersona().NeutralReply() {
			t.Fatalf("turn %d reply = %q, want neutral reply", i+1, res.Reply)
		}
	}
	disp.Wait()

	s := store.Get("s2")
	if s.ScamScore != 0 {
		t.Errorf("ScamScore = %d, want 0", s.ScamScore)
	}
	if s.ScamMode {
		t.Error("neutral traffic should not activate scam mode")
	}
	if !s.CallbackSent {
		t.Error("five turns should trigger the message-count fallback")
	}
	if sink.count() != 1 {
		t.Fatalf("dispatched %d dossiers, want 1", sink.count())
	}
	if got := sink.dossiers[0].TotalMessagesExchanged; got != 5 {
		t.Errorf("TotalMessagesExchanged = %d, want 5", got)
	}
}

func TestHandleTurnDeduplicatesAcrossTurns(t *testing.T) {
	orch, store, _, _ := newTestPipeline()

	orch.HandleTurn(context.Background(), "s3", "scammer@upi")
	orch.HandleTurn(context.Background(), "s3", "scammer@upi")

	s := store.Get("s3")
	evs := s.Intelligence[session.CategoryPaymentHandle]
	if len(evs) != 1 {
		t.Fatalf("evidence = %v, want one record", evs)
	}
	if evs[0].SourceTurn != 1 {
		t.Errorf("SourceTurn = %d, want 1", evs[0].SourceTurn)
	}
	if math.Abs(evs[0].Confidence-0.7) > 1e-9 {
		t.Errorf("confidence = %v, want 0.7 (no prior occurrences)", evs[0].Confidence)
	}
}

func TestHandleTurnPersonaAfterProbesExhausted(t *testing.T) {
	persona := engage.NewPersona(engage.WithPool([]string{"pinned filler"}))
	orch, store, _, _ := newTestPipeline(WithPersona(persona))

	orch.HandleTurn(context.Background(), "s4", "urgent: verify now, account blocked")
	orch.HandleTurn(context.Background(), "s4", "ok")
	orch.HandleTurn(context.Background(), "s4", "ok")
	res := orch.HandleTurn(context.Background(), "s4", "ok")

	s := store.Get("s4")
	if !s.ScamMode {
		t.Fatal("scam mode should be active")
	}
	if len(s.ProbesAsked) != 3 {
		t.Fatalf("ProbesAsked = %v, want all three categories", s.ProbesAsked)
	}
	if res.Reply != "pinned filler" {
		t.Errorf("reply after probe exhaustion = %q, want persona filler", res.Reply)
	}
}

func TestHandleTurnEmptyMessage(t *testing.T) {
	orch, store, _, _ := newTestPipeline()

	res := orch.HandleTurn(context.Background(), "s5", "   ")

	if res.Status != "success" {
		t.Errorf("Status = %q", res.Status)
	}
	if res.Reply != engage.NewPersona().ClarifyReply() {
		t.Errorf("reply = %q, want clarification", res.Reply)
	}
	if store.Get("s5") != nil {
		t.Error("empty input must not create or mutate session state")
	}
}

func TestHandleTurnRecoversFromFault(t *testing.T) {
	// A nil extractor panics once phone normalization reads its country
	// code; the turn must still answer.
	orch, _, _, _ := newTestPipeline(WithExtractor(nil))

	res := orch.HandleTurn(context.Background(), "s6", "urgent, call 9876543210")

	if res.Status != "success" {
		t.Errorf("Status = %q", res.Status)
	}
	if res.Reply != fallbackReply {
		t.Errorf("reply = %q, want fallback", res.Reply)
	}
}

func TestHandleTurnReportsAtMostOnce(t *testing.T) {
	orch, store, sink, disp := newTestPipeline()

	// Keep the conversation going well past every trigger floor.
	for i := 0; i < 10; i++ {
		orch.HandleTurn(context.Background(), "s7",
			"urgent, click http://verify.example/a and pay scammer@upi or your account blocked")
	}
	disp.Wait()

	if sink.count() != 1 {
		t.Fatalf("dispatched %d dossiers, want 1", sink.count())
	}
	s := store.Get("s7")
	if !s.CallbackSent {
		t.Error("CallbackSent should be latched")
	}

	d := sink.dossiers[0]
	if !d.ScamDetected {
		t.Error("ScamDetected should be true")
	}
	if d.ReportID == "" {
		t.Error("ReportID missing")
	}
	if d.AgentNotes == "" {
		t.Error("AgentNotes missing")
	}
	if len(d.ExtractedIntelligence[session.CategoryPaymentHandle]) == 0 ||
		len(d.ExtractedIntelligence[session.CategoryPhishingLink]) == 0 {
		t.Errorf("dossier intelligence incomplete: %v", d.ExtractedIntelligence)
	}
}

func TestHandleTurnInvariants(t *testing.T) {
	orch, store, _, _ := newTestPipeline()

	messages := []string{
		"hello",
		"urgent refund waiting, verify your account",
		"click http://claim.example/now",
		"pay the processing fee to fraudster@paytm",
		"call me on 9876543210",
		"urgent urgent urgent verify verify",
		"ok",
	}

	prevScore := 0
	for i, msg := range messages {
		orch.HandleTurn(context.Background(), "s8", msg)
		s := store.Get("s8")
		s.Lock()
		if s.ScamScore < prevScore {
			t.Errorf("turn %d: score decreased %d -> %d", i+1, prevScore, s.ScamScore)
		}
		if s.ScamScore < 0 || s.ScamScore > 100 {
			t.Errorf("turn %d: score %d outside [0,100]", i+1, s.ScamScore)
		}
		if s.ThreatLevel < 0 || s.ThreatLevel > 10 {
			t.Errorf("turn %d: threat %d outside [0,10]", i+1, s.ThreatLevel)
		}
		for cat, evs := range s.Intelligence {
			seen := map[string]bool{}
			for _, ev := range evs {
				if seen[ev.Value] {
					t.Errorf("turn %d: duplicate %q under %q", i+1, ev.Value, cat)
				}
				seen[ev.Value] = true
				if ev.Confidence < 0.6 || ev.Confidence > 1.0 {
					t.Errorf("turn %d: confidence %v outside [0.6,1.0]", i+1, ev.Confidence)
				}
			}
		}
		prevScore = s.ScamScore
		s.Unlock()
	}

	s := store.Get("s8")
	if s.TurnCount() != len(messages) {
		t.Errorf("TurnCount = %d, want %d", s.TurnCount(), len(messages))
	}
	if len(s.ReasoningTrace) == 0 {
		t.Error("reasoning trace is empty")
	}
}

func TestHandleTurnConcurrentSameSession(t *testing.T) {
	var sends atomic.Int64
	store := session.NewStore()
	disp := report.NewDispatcher(report.SinkFunc(func(context.Context, *report.Dossier) error {
		sends.Add(1)
		return nil
	}), time.Second)
	orch := New(store, disp)

	const workers, turns = 4, 5
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < turns; i++ {
				orch.HandleTurn(context.Background(),
					"hammer", fmt.Sprintf("urgent upi payment %d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()
	disp.Wait()

	s := store.Get("hammer")
	if got := s.TurnCount(); got != workers*turns {
		t.Errorf("TurnCount = %d, want %d", got, workers*turns)
	}
	if s.ScamScore > 100 {
		t.Errorf("ScamScore = %d, breached cap under contention", s.ScamScore)
	}
	if got := sends.Load(); got != 1 {
		t.Errorf("dispatched %d dossiers under contention, want 1", got)
	}
}
