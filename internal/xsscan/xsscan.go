// Package xsscan scans text for known cross-site-scripting injection patterns.
// Detection is advisory pattern matching for education; it is not a sanitizer
// and never executes or renders the analyzed content.
package xsscan

import (
	"regexp"
	"strings"
)

// Severity buckets for matched patterns.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Remediation families used to select recommendations.
const (
	familyScript  = "script"
	familyHandler = "handler"
	familyJSURL   = "jsurl"
	familyIframe  = "iframe"
	familyNone    = ""
)

// Threat is a single pattern match in the scanned content.
type Threat struct {
	Type        string `json:"type"`
	Level       string `json:"level"`
	MatchedText string `json:"matchedText"`
	Position    int    `json:"position"`
}

// Report aggregates all matches over the scanned content.
type Report struct {
	IsClean         bool     `json:"isClean"`
	RiskLevel       string   `json:"riskLevel"`
	SecurityScore   int      `json:"securityScore"`
	Threats         []Threat `json:"threats"`
	Recommendations []string `json:"recommendations"`
}

// rule is one entry in the fixed, ordered signature set.
type rule struct {
	name     string
	severity string
	family   string
	re       *regexp.Regexp
}

// The twelve signature categories, evaluated in this order. Overlapping
// matches are all recorded; the score makes no attempt to deduplicate.
var rules = []rule{
	{"script tag", SeverityHigh, familyScript,
		regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)},
	{"unclosed script tag", SeverityHigh, familyScript,
		regexp.MustCompile(`(?i)<script\b[^>]*>`)},
	{"inline event handler", SeverityHigh, familyHandler,
		regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)},
	{"javascript: URL", SeverityHigh, familyJSURL,
		regexp.MustCompile(`(?i)javascript\s*:`)},
	{"script-bearing data URL", SeverityMedium, familyJSURL,
		regexp.MustCompile(`(?i)data:[^,"'\s]*(?:script|html)[^,"'\s]*,`)},
	{"HTML character entity", SeverityLow, familyNone,
		regexp.MustCompile(`(?i)&#x[0-9a-f]+;?|&#[0-9]+;?`)},
	{"iframe tag", SeverityMedium, familyIframe,
		regexp.MustCompile(`(?i)<iframe\b[^>]*>`)},
	{"object/embed tag", SeverityMedium, familyNone,
		regexp.MustCompile(`(?i)<(?:object|embed)\b[^>]*>`)},
	{"form with javascript action", SeverityHigh, familyJSURL,
		regexp.MustCompile(`(?is)<form\b[^>]*action\s*=\s*["']?\s*javascript:`)},
	{"meta refresh tag", SeverityMedium, familyNone,
		regexp.MustCompile(`(?is)<meta\b[^>]*http-equiv\s*=\s*["']?refresh`)},
	{"svg script payload", SeverityHigh, familyScript,
		regexp.MustCompile(`(?is)<svg\b[^>]*>.*?<script`)},
	{"CSS expression", SeverityMedium, familyNone,
		regexp.MustCompile(`(?i)expression\s*\(`)},
}

const maxMatchedText = 100

// Scan evaluates content against the signature set and returns the aggregated
// report. Empty or whitespace-only content returns nil.
func Scan(content string) *Report {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	score := 100
	var threats []Threat
	families := make(map[string]bool)

	for _, rl := range rules {
		for _, loc := range rl.re.FindAllStringIndex(content, -1) {
			matched := content[loc[0]:loc[1]]
			if len(matched) > maxMatchedText {
				matched = matched[:maxMatchedText] + "..."
			}

			threats = append(threats, Threat{
				Type:        rl.name,
				Level:       rl.severity,
				MatchedText: matched,
				Position:    loc[0],
			})

			if rl.family != familyNone {
				families[rl.family] = true
			}

			switch rl.severity {
			case SeverityHigh:
				score -= 30
			case SeverityMedium:
				score -= 15
			case SeverityLow:
				score -= 5
			}
		}
	}

	if score < 0 {
		score = 0
	}

	return &Report{
		IsClean:         len(threats) == 0,
		RiskLevel:       riskLevel(threats),
		SecurityScore:   score,
		Threats:         threats,
		Recommendations: recommendations(len(threats) == 0, families),
	}
}

// riskLevel is the highest severity present across all threats.
func riskLevel(threats []Threat) string {
	level := SeverityLow
	for _, th := range threats {
		switch th.Level {
		case SeverityHigh:
			return SeverityHigh
		case SeverityMedium:
			level = SeverityMedium
		}
	}
	return level
}

// recommendations builds remediation tips: one per threat family present in
// priority order, a clean notice when nothing matched, then the general tips.
func recommendations(clean bool, families map[string]bool) []string {
	var tips []string

	if families[familyScript] {
		tips = append(tips, "Remove or encode <script> blocks before rendering user-supplied content")
	}
	if families[familyHandler] {
		tips = append(tips, "Strip inline event handler attributes (onclick, onerror, onload, ...)")
	}
	if families[familyJSURL] {
		tips = append(tips, "Reject javascript: and script-bearing data: URLs in links and form actions")
	}
	if families[familyIframe] {
		tips = append(tips, "Disallow untrusted iframes or isolate them with the sandbox attribute")
	}

	if clean {
		tips = append(tips, "No known injection patterns were found in this content")
	}

	tips = append(tips,
		"Encode output for its HTML context before rendering",
		"Serve a Content-Security-Policy header to restrict script execution",
	)

	return tips
}
