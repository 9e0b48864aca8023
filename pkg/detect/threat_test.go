package detect

import "testing"

func TestThreatWeights(t *testing.T) {
	testCases := []struct {
		name string
		sig  Signals
		want int
	}{
		{"none", Signals{}, 0},
		{"urgency only", Signals{Urgency: true}, 2},
		{"payment only", Signals{PaymentRedirect: true}, 3},
		{"phishing only", Signals{Phishing: true}, 3},
		{"multi-step only", Signals{MultiStep: true}, 2},
		{"all", Signals{Urgency: true, PaymentRedirect: true, Phishing: true, MultiStep: true}, 10},
		{"pair", Signals{Urgency: true, Phishing: true}, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Threat(tc.sig)
			if got != tc.want {
				t.Errorf("Threat(%+v) = %d, want %d", tc.sig, got, tc.want)
			}
			if got < 0 || got > 10 {
				t.Errorf("Threat(%+v) = %d, outside [0,10]", tc.sig, got)
			}
		})
	}
}

func TestDeriveSignals(t *testing.T) {
	testCases := []struct {
		name        string
		text        string
		probesAsked int
		want        Signals
	}{
		{
			name: "urgent payment",
			text: "urgent: send via upi",
			want: Signals{Urgency: true, PaymentRedirect: true},
		},
		{
			name: "link",
			text: "open https://bad.example",
			want: Signals{Phishing: true},
		},
		{
			name:        "multi-step after two probes",
			text:        "ok",
			probesAsked: 2,
			want:        Signals{MultiStep: true},
		},
		{
			name:        "one probe is not multi-step",
			text:        "ok",
			probesAsked: 1,
			want:        Signals{},
		},
		{
			name: "urgency marker variant",
			text: "do this immediately",
			want: Signals{Urgency: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveSignals(tc.text, tc.probesAsked); got != tc.want {
				t.Errorf("DeriveSignals(%q, %d) = %+v, want %+v", tc.text, tc.probesAsked, got, tc.want)
			}
		})
	}
}
