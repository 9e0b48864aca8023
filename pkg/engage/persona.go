package engage

import (
	"math/rand"
	"sync"
)

// neutralReply is the fixed acknowledgement used while scam mode is
// inactive.
const neutralReply = "Thanks for the message. How can I help you?"

// clarifyReply is returned for empty or unreadable messages.
const clarifyReply = "Sorry, I did not catch that. Could you say it again?"

// personaPool are cooperative, slightly confused filler replies used once
// every probe has been asked, so the conversation neither stalls nor loops
// verbatim.
var personaPool = []string{
	"Sorry, I am a bit confused. I received some messages earlier. Can you explain what I need to do?",
	"I am trying to follow along, but this is all new to me. Could you walk me through it once more?",
	"My nephew usually helps me with these things. Can you tell me the steps again slowly?",
	"I want to sort this out today. What should I do first?",
	"I think I did something wrong on my side. Can you repeat the details?",
}

// Persona generates replies under a replaceable random source so tests can
// pin the selection deterministically.
type Persona struct {
	pool []string
	rng  *rand.Rand
	mu   sync.Mutex
}

// PersonaOption configures a Persona.
type PersonaOption func(*Persona)

// WithRand replaces the random source used for pool selection.
func WithRand(rng *rand.Rand) PersonaOption {
	return func(p *Persona) { p.rng = rng }
}

// WithPool replaces the reply pool. Empty pools are ignored.
func WithPool(pool []string) PersonaOption {
	return func(p *Persona) {
		if len(pool) > 0 {
			p.pool = pool
		}
	}
}

// NewPersona creates a reply generator over the default pool.
func NewPersona(opts ...PersonaOption) *Persona {
	p := &Persona{
		pool: personaPool,
		rng:  rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NeutralReply returns the fixed acknowledgement for non-scam traffic.
func (p *Persona) NeutralReply() string { return neutralReply }

// ClarifyReply returns the recovery reply for empty or malformed input.
func (p *Persona) ClarifyReply() string { return clarifyReply }

// PersonaReply picks one cooperative filler reply from the pool.
func (p *Persona) PersonaReply() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool[p.rng.Intn(len(p.pool))]
}
