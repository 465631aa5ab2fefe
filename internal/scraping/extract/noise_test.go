// backend/internal/scraping/extract/noise_test.go
package extract

import (
	"strings"
	"testing"
)

func TestClassifyText(t *testing.T) {
	plain := strings.Repeat("Ett väletablerat företag med stabil kundbas. ", 3)

	tests := []struct {
		name     string
		text     string
		wantRule string
	}{
		{
			name:     "plain narrative accepted",
			text:     plain,
			wantRule: "",
		},
		{
			name:     "tracking call rejected",
			text:     plain + ` gtag('event', 'page_view');`,
			wantRule: RuleScriptMarker,
		},
		{
			name:     "data layer push rejected",
			text:     plain + " dataLayer.push({});",
			wantRule: RuleScriptMarker,
		},
		{
			name:     "inline css rejected",
			text:     plain + " font-family: Arial; color: #333",
			wantRule: RuleCSSToken,
		},
		{
			name:     "short fragment rejected",
			text:     "Mer info",
			wantRule: RuleTooShort,
		},
		{
			name:     "paren density rejected",
			text:     plain + " (a) (b) (c) (d)",
			wantRule: RuleParenDensity,
		},
		{
			name:     "semicolon density rejected",
			text:     plain + " ett; två; tre;",
			wantRule: RuleSemicolonDensity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ClassifyText(tt.text)
			if v.Rule != tt.wantRule {
				t.Errorf("rule = %q, want %q", v.Rule, tt.wantRule)
			}
			if v.Noise != (tt.wantRule != "") {
				t.Errorf("noise = %v, rule = %q", v.Noise, v.Rule)
			}
		})
	}
}

func TestClassifyTextAcceptsLongPlainLanguage(t *testing.T) {
	text := strings.Repeat("Verksamheten har växt stadigt under de senaste åren. ", 4)
	if len(text) < 100 {
		t.Fatal("fixture too short")
	}
	if v := ClassifyText(text); v.Noise {
		t.Errorf("plain text over 100 chars rejected by rule %q", v.Rule)
	}
}
