package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesOverride(t *testing.T) {
	t.Cleanup(ResetRules)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
keyword_weights:
  lottery: 30
  prize: 20
payment_markers:
  - cashapp
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadRules(path); err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	sc := NewScamScorer()

	if got := sc.Score("you won the lottery prize"); got != 50 {
		t.Errorf("Score with overridden table = %d, want 50", got)
	}
	// The override replaces the keyword table wholesale.
	if got := sc.Score("urgent"); got != 0 {
		t.Errorf("Score(urgent) after override = %d, want 0", got)
	}
	if !sc.StrongSignal("cashapp me the fee") {
		t.Error("StrongSignal should honor overridden payment markers")
	}
	// Sections absent from the file keep their defaults.
	if !sc.StrongSignal("your account is suspended") {
		t.Error("StrongSignal should keep default account-threat markers")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadRules on a missing file should fail")
	}
}

func TestLoadRulesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("keyword_weights: [not, a, map]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadRules(path); err == nil {
		t.Error("LoadRules on malformed YAML should fail")
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"URGENT", "urgent"},
		{"ürgent", "urgent"},
		{"ＵＰＩ", "upi"},
		{"plain text", "plain text"},
	}

	for _, tc := range testCases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
