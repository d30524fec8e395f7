// internal/urltool/urltool_test.go
package urltool

import (
	"errors"
	"testing"
)

// TestAnalyzeFullURL tests decomposition of a URL with every component
func TestAnalyzeFullURL(t *testing.T) {
	analysis, err := Analyze("https://example.com:8443/a/b/c?x=1&y=2#frag")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.Protocol != "https:" {
		t.Errorf("Expected protocol https:, got %s", analysis.Protocol)
	}
	if analysis.Hostname != "example.com" {
		t.Errorf("Expected hostname example.com, got %s", analysis.Hostname)
	}
	if analysis.Port != "8443" {
		t.Errorf("Expected port 8443, got %s", analysis.Port)
	}
	if analysis.Pathname != "/a/b/c" {
		t.Errorf("Expected pathname /a/b/c, got %s", analysis.Pathname)
	}
	if analysis.Search != "?x=1&y=2" {
		t.Errorf("Expected search ?x=1&y=2, got %s", analysis.Search)
	}
	if analysis.Hash != "#frag" {
		t.Errorf("Expected hash #frag, got %s", analysis.Hash)
	}
	if analysis.Origin != "https://example.com:8443" {
		t.Errorf("Expected origin https://example.com:8443, got %s", analysis.Origin)
	}
	if !analysis.IsSecure {
		t.Errorf("Expected https URL to be secure")
	}
	if !analysis.HasQuery {
		t.Errorf("Expected hasQuery true")
	}

	if len(analysis.PathSegments) != 3 {
		t.Fatalf("Expected 3 path segments, got %v", analysis.PathSegments)
	}
	for i, want := range []string{"a", "b", "c"} {
		if analysis.PathSegments[i] != want {
			t.Errorf("Segment %d: expected %s, got %s", i, want, analysis.PathSegments[i])
		}
	}

	if analysis.QueryParams["x"] != "1" || analysis.QueryParams["y"] != "2" {
		t.Errorf("Unexpected query params: %v", analysis.QueryParams)
	}
}

// TestAnalyzeDefaultPorts tests the scheme-derived port defaults
func TestAnalyzeDefaultPorts(t *testing.T) {
	secure, err := Analyze("https://example.com")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if secure.Port != "443" {
		t.Errorf("Expected default port 443 for https, got %s", secure.Port)
	}
	if secure.Pathname != "/" {
		t.Errorf("Expected default pathname /, got %s", secure.Pathname)
	}

	plain, err := Analyze("http://example.com")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if plain.Port != "80" {
		t.Errorf("Expected default port 80 for http, got %s", plain.Port)
	}
	if plain.IsSecure {
		t.Errorf("Expected http URL to not be secure")
	}
}

// TestAnalyzeEmptyComponents tests representation of absent components
func TestAnalyzeEmptyComponents(t *testing.T) {
	analysis, err := Analyze("http://example.com/path")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.Search != "" {
		t.Errorf("Expected empty search, got %q", analysis.Search)
	}
	if analysis.Hash != "" {
		t.Errorf("Expected empty hash, got %q", analysis.Hash)
	}
	if analysis.HasQuery {
		t.Errorf("Expected hasQuery false")
	}
	if len(analysis.QueryParams) != 0 {
		t.Errorf("Expected no query params, got %v", analysis.QueryParams)
	}
}

// TestAnalyzeDuplicateQueryKeys tests last-value-wins for repeated keys
func TestAnalyzeDuplicateQueryKeys(t *testing.T) {
	analysis, err := Analyze("https://example.com/?k=first&k=second")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.QueryParams["k"] != "second" {
		t.Errorf("Expected last value to win, got %q", analysis.QueryParams["k"])
	}
}

// TestAnalyzeInvalidInput tests rejection of malformed and relative URLs
func TestAnalyzeInvalidInput(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a url",
		"/relative/path",
		"example.com/missing-scheme",
		"://no-scheme",
	}

	for _, input := range inputs {
		if _, err := Analyze(input); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Input %q: expected ErrInvalidURL, got %v", input, err)
		}
	}
}
