// internal/xsscan/xsscan_test.go
package xsscan

import (
	"strings"
	"testing"
)

// TestScanEmptyContent tests the blank-input guard
func TestScanEmptyContent(t *testing.T) {
	if Scan("") != nil {
		t.Errorf("Expected nil report for empty content")
	}
	if Scan("  \n\t ") != nil {
		t.Errorf("Expected nil report for whitespace-only content")
	}
}

// TestScanCleanContent tests scoring of harmless text
func TestScanCleanContent(t *testing.T) {
	report := Scan("Hello, this is a perfectly ordinary paragraph.")
	if report == nil {
		t.Fatalf("Expected a report, got nil")
	}

	if !report.IsClean {
		t.Errorf("Expected clean content, got threats: %v", report.Threats)
	}
	if report.SecurityScore != 100 {
		t.Errorf("Expected score 100, got %d", report.SecurityScore)
	}
	if report.RiskLevel != SeverityLow {
		t.Errorf("Expected risk level low, got %s", report.RiskLevel)
	}

	foundClean := false
	for _, tip := range report.Recommendations {
		if tip == "No known injection patterns were found in this content" {
			foundClean = true
		}
	}
	if !foundClean {
		t.Errorf("Expected clean notice in recommendations: %v", report.Recommendations)
	}
}

// TestScanScriptTag tests that a script block matches both script rules
func TestScanScriptTag(t *testing.T) {
	report := Scan("<script>alert(1)</script>")
	if report == nil {
		t.Fatalf("Expected a report, got nil")
	}

	if report.IsClean {
		t.Errorf("Expected threats for a script tag")
	}
	// Matches both the paired and the unclosed script rules
	if len(report.Threats) != 2 {
		t.Errorf("Expected 2 threats, got %d: %v", len(report.Threats), report.Threats)
	}
	if report.SecurityScore != 40 {
		t.Errorf("Expected score 40, got %d", report.SecurityScore)
	}
	if report.RiskLevel != SeverityHigh {
		t.Errorf("Expected risk level high, got %s", report.RiskLevel)
	}
}

// TestScanSeverityDeductions tests the per-severity point deductions
func TestScanSeverityDeductions(t *testing.T) {
	tests := []struct {
		content string
		score   int
		level   string
	}{
		{`<a href="javascript:void(0)">x</a>`, 70, SeverityHigh},
		{`<iframe src="https://example.com"></iframe>`, 85, SeverityMedium},
		{`&#x41;`, 95, SeverityLow},
	}

	for _, tt := range tests {
		report := Scan(tt.content)
		if report.SecurityScore != tt.score {
			t.Errorf("%q: expected score %d, got %d", tt.content, tt.score, report.SecurityScore)
		}
		if report.RiskLevel != tt.level {
			t.Errorf("%q: expected risk %s, got %s", tt.content, tt.level, report.RiskLevel)
		}
	}
}

// TestScanScoreFloor tests that the score never goes negative
func TestScanScoreFloor(t *testing.T) {
	payload := strings.Repeat("<script>alert(1)</script>", 5)
	report := Scan(payload)

	if report.SecurityScore != 0 {
		t.Errorf("Expected score floored at 0, got %d", report.SecurityScore)
	}
}

// TestScanEventHandler tests the inline handler rule and its recommendation
func TestScanEventHandler(t *testing.T) {
	report := Scan(`<img src=x onerror=alert(1)>`)
	if report.IsClean {
		t.Fatalf("Expected a threat for an inline event handler")
	}

	found := false
	for _, th := range report.Threats {
		if th.Type == "inline event handler" && th.Level == SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected an inline event handler threat: %v", report.Threats)
	}

	foundTip := false
	for _, tip := range report.Recommendations {
		if strings.Contains(tip, "event handler attributes") {
			foundTip = true
		}
	}
	if !foundTip {
		t.Errorf("Expected handler recommendation: %v", report.Recommendations)
	}
}

// TestScanMatchedTextTruncation tests the matched-text length cap
func TestScanMatchedTextTruncation(t *testing.T) {
	payload := "<script>" + strings.Repeat("a", 200) + "</script>"
	report := Scan(payload)

	for _, th := range report.Threats {
		if len(th.MatchedText) > maxMatchedText+len("...") {
			t.Errorf("Matched text too long (%d): %q", len(th.MatchedText), th.MatchedText)
		}
		if len(th.MatchedText) == maxMatchedText+len("...") &&
			!strings.HasSuffix(th.MatchedText, "...") {
			t.Errorf("Expected truncation marker on %q", th.MatchedText)
		}
	}
}

// TestScanGeneralRecommendations tests that the general tips always close the list
func TestScanGeneralRecommendations(t *testing.T) {
	for _, content := range []string{"plain text", "<script>alert(1)</script>"} {
		report := Scan(content)
		n := len(report.Recommendations)
		if n < 2 {
			t.Fatalf("%q: expected at least 2 recommendations, got %v", content, report.Recommendations)
		}
		if report.Recommendations[n-2] != "Encode output for its HTML context before rendering" {
			t.Errorf("%q: unexpected second-to-last tip %q", content, report.Recommendations[n-2])
		}
		if report.Recommendations[n-1] != "Serve a Content-Security-Policy header to restrict script execution" {
			t.Errorf("%q: unexpected last tip %q", content, report.Recommendations[n-1])
		}
	}
}

// TestScanPositions tests that threat positions index into the content
func TestScanPositions(t *testing.T) {
	content := `leading text <iframe src="x">`
	report := Scan(content)

	if len(report.Threats) == 0 {
		t.Fatalf("Expected a threat")
	}
	th := report.Threats[0]
	if th.Position != strings.Index(content, "<iframe") {
		t.Errorf("Expected position %d, got %d", strings.Index(content, "<iframe"), th.Position)
	}
}
