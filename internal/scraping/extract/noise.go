// backend/internal/scraping/extract/noise.go
package extract

import "strings"

// Classification rules, in evaluation order.
const (
	RuleScriptMarker     = "script-marker"
	RuleCSSToken         = "css-token"
	RuleTooShort         = "too-short"
	RuleParenDensity     = "paren-density"
	RuleSemicolonDensity = "semicolon-density"
)

// minContentLength is the shortest text span worth keeping as narrative.
const minContentLength = 30

// scriptMarkers are substrings that give away inline script or tracking
// calls leaking into text nodes.
var scriptMarkers = []string{
	"gtag(",
	"datalayer",
	"googletag",
	"fbq(",
	"function(",
	"window.",
	"document.",
}

// cssTokens are CSS-property-like fragments that show up when style
// blocks bleed into extracted text.
var cssTokens = []string{
	"font-family:",
	"font-size:",
	"color:",
	"padding:",
	"margin:",
	"background:",
	"-webkit-",
	"display:",
}

// Verdict is the result of classifying one text span.
type Verdict struct {
	Noise bool
	Rule  string // which rule rejected the span; empty for content
}

// ClassifyText decides whether a text span is listing narrative or
// embedded script/style noise. Each rejection names the rule that
// triggered it so the heuristic stays enumerable and testable.
func ClassifyText(s string) Verdict {
	t := strings.TrimSpace(s)
	lower := strings.ToLower(t)

	for _, m := range scriptMarkers {
		if strings.Contains(lower, m) {
			return Verdict{Noise: true, Rule: RuleScriptMarker}
		}
	}
	for _, tok := range cssTokens {
		if strings.Contains(lower, tok) {
			return Verdict{Noise: true, Rule: RuleCSSToken}
		}
	}
	if len(t) < minContentLength {
		return Verdict{Noise: true, Rule: RuleTooShort}
	}
	if strings.Count(t, "(") > 3 {
		return Verdict{Noise: true, Rule: RuleParenDensity}
	}
	if strings.Count(t, ";") > 2 {
		return Verdict{Noise: true, Rule: RuleSemicolonDensity}
	}
	return Verdict{}
}
