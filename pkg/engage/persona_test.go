package engage

import (
	"math/rand"
	"testing"
)

func TestPersonaReplyStaysInPool(t *testing.T) {
	p := NewPersona(WithRand(rand.New(rand.NewSource(1))))

	inPool := func(reply string) bool {
		for _, candidate := range personaPool {
			if reply == candidate {
				return true
			}
		}
		return false
	}
	for i := 0; i < 50; i++ {
		if reply := p.PersonaReply(); !inPool(reply) {
			t.Fatalf("PersonaReply returned %q, not in pool", reply)
		}
	}
}

func TestPersonaWithPool(t *testing.T) {
	p := NewPersona(WithPool([]string{"pinned"}))

	if got := p.PersonaReply(); got != "pinned" {
		t.Errorf("PersonaReply = %q, want pinned", got)
	}
	// Empty pools must not wipe the default.
	p = NewPersona(WithPool(nil))
	if got := p.PersonaReply(); got == "" {
		t.Error("PersonaReply returned empty string with default pool")
	}
}

func TestFixedReplies(t *testing.T) {
	p := NewPersona()

	if p.NeutralReply() != neutralReply {
		t.Errorf("NeutralReply = %q", p.NeutralReply())
	}
	if p.ClarifyReply() != clarifyReply {
		t.Errorf("ClarifyReply = %q", p.ClarifyReply())
	}
}
