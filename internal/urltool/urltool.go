// Package urltool decomposes URLs into their structural components for the
// Security Toolbox URL analyzer.
package urltool

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when the input cannot be parsed as an absolute URL.
var ErrInvalidURL = errors.New("invalid URL")

// Analysis is the decomposition of a well-formed URL.
type Analysis struct {
	Protocol     string            `json:"protocol"`
	Hostname     string            `json:"hostname"`
	Port         string            `json:"port"`
	Pathname     string            `json:"pathname"`
	Search       string            `json:"search"`
	Hash         string            `json:"hash"`
	Origin       string            `json:"origin"`
	IsSecure     bool              `json:"isSecure"`
	HasQuery     bool              `json:"hasQuery"`
	PathSegments []string          `json:"pathSegments"`
	QueryParams  map[string]string `json:"queryParams"`
}

// Analyze parses raw as an absolute URL and returns its structural breakdown.
// Malformed input yields ErrInvalidURL, never a partial analysis.
func Analyze(raw string) (*Analysis, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	// url.Parse accepts relative references; the analyzer requires a full URL.
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidURL
	}

	pathname := u.Path
	if pathname == "" {
		pathname = "/"
	}

	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	search := ""
	if u.RawQuery != "" {
		search = "?" + u.RawQuery
	}

	fragment := ""
	if u.Fragment != "" {
		fragment = "#" + u.Fragment
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	// Last value wins for duplicate keys, matching query-string semantics.
	params := make(map[string]string)
	for key, values := range u.Query() {
		if len(values) > 0 {
			params[key] = values[len(values)-1]
		}
	}

	return &Analysis{
		Protocol:     u.Scheme + ":",
		Hostname:     u.Hostname(),
		Port:         port,
		Pathname:     pathname,
		Search:       search,
		Hash:         fragment,
		Origin:       u.Scheme + "://" + u.Host,
		IsSecure:     u.Scheme == "https",
		HasQuery:     u.RawQuery != "",
		PathSegments: segments,
		QueryParams:  params,
	}, nil
}
