// Package toolkit ties the individual tool engines together behind a single
// typed dispatch surface. Tools are identified by an enumerated variant rather
// than a string tag, so dispatch over them is exhaustive at compile time.
package toolkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sectoolbox/internal/cipher"
	"sectoolbox/internal/config"
	"sectoolbox/internal/hashtool"
	"sectoolbox/internal/jsontool"
	"sectoolbox/internal/ledger"
	"sectoolbox/internal/models"
	"sectoolbox/internal/password"
	"sectoolbox/internal/portscan"
	"sectoolbox/internal/urltool"
	"sectoolbox/internal/xsscan"
)

// Tool enumerates the available tool engines.
type Tool int

const (
	ToolHash Tool = iota
	ToolPassword
	ToolPortScan
	ToolCipher
	ToolURL
	ToolXSS
	ToolJSON
)

// String returns the tool's display name, used as the ledger tool name.
func (t Tool) String() string {
	switch t {
	case ToolHash:
		return "Hash Generator"
	case ToolPassword:
		return "Password Strength"
	case ToolPortScan:
		return "Port Scanner"
	case ToolCipher:
		return "Encryption Tool"
	case ToolURL:
		return "URL Analyzer"
	case ToolXSS:
		return "XSS Detector"
	case ToolJSON:
		return "JSON Validator"
	default:
		return "Unknown Tool"
	}
}

// ParseTool maps an API slug to its tool variant.
func ParseTool(slug string) (Tool, error) {
	switch slug {
	case "hash":
		return ToolHash, nil
	case "password":
		return ToolPassword, nil
	case "portscan":
		return ToolPortScan, nil
	case "cipher":
		return ToolCipher, nil
	case "url":
		return ToolURL, nil
	case "xss":
		return ToolXSS, nil
	case "json":
		return ToolJSON, nil
	default:
		return 0, fmt.Errorf("unknown tool: %q", slug)
	}
}

// ErrEmptyInput is returned when a tool is invoked without its required input.
var ErrEmptyInput = errors.New("input is required")

// Request describes one tool invocation.
type Request struct {
	Tool       Tool
	Input      string
	Passphrase string // cipher only
	Decrypt    bool   // cipher only
}

// Response is the outcome of a tool invocation. Payload holds the structured
// engine result; Summary is its serialized form suitable for the ledger.
type Response struct {
	ToolName string            `json:"toolName"`
	Summary  string            `json:"summary"`
	Metadata map[string]string `json:"metadata"`
	Payload  interface{}       `json:"payload"`
}

// Service owns the tool engines and the shared results ledger.
type Service struct {
	config  *config.Config
	store   *ledger.Store
	scanner *portscan.Simulator
	logger  zerolog.Logger
}

// New creates the toolkit service.
func New(cfg *config.Config, store *ledger.Store) *Service {
	return &Service{
		config:  cfg,
		store:   store,
		scanner: portscan.New(cfg),
		logger:  log.With().Str("component", "toolkit").Logger(),
	}
}

// Scanner exposes the port-scan simulator for status and cancellation.
func (s *Service) Scanner() *portscan.Simulator {
	return s.scanner
}

// Ledger exposes the results ledger.
func (s *Service) Ledger() *ledger.Store {
	return s.store
}

// Run dispatches a request to the engine selected by its tool variant.
func (s *Service) Run(req Request) (*Response, error) {
	switch req.Tool {
	case ToolHash:
		return s.runHash(req)
	case ToolPassword:
		return s.runPassword(req)
	case ToolPortScan:
		return s.runPortScan(req)
	case ToolCipher:
		return s.runCipher(req)
	case ToolURL:
		return s.runURL(req)
	case ToolXSS:
		return s.runXSS(req)
	case ToolJSON:
		return s.runJSON(req)
	default:
		return nil, fmt.Errorf("unknown tool variant: %d", req.Tool)
	}
}

// SaveResult persists a completed response to the ledger.
func (s *Service) SaveResult(resp *Response, input string) (*models.ToolResult, error) {
	return s.store.Save(resp.ToolName, input, resp.Summary, resp.Metadata)
}

func (s *Service) runHash(req Request) (*Response, error) {
	digests := hashtool.Digests(req.Input)
	if digests == nil {
		return nil, ErrEmptyInput
	}

	return s.respond(req.Tool, digests, map[string]string{
		"algorithms": "MD5, SHA-1, SHA-256, SHA-512",
	})
}

func (s *Service) runPassword(req Request) (*Response, error) {
	assessment := password.Assess(req.Input)
	if assessment == nil {
		return nil, ErrEmptyInput
	}

	return s.respond(req.Tool, assessment, map[string]string{
		"level": assessment.Level,
		"score": fmt.Sprintf("%d/7", assessment.Score),
	})
}

func (s *Service) runPortScan(req Request) (*Response, error) {
	if err := s.scanner.Start(req.Input); err != nil {
		if errors.Is(err, portscan.ErrBlankHost) {
			return nil, ErrEmptyInput
		}
		return nil, err
	}

	snapshot := s.scanner.Snapshot()
	return s.respond(req.Tool, snapshot, map[string]string{
		"host":  snapshot.Host,
		"ports": strconv.Itoa(snapshot.Total),
	})
}

func (s *Service) runCipher(req Request) (*Response, error) {
	if req.Input == "" || req.Passphrase == "" {
		return nil, ErrEmptyInput
	}

	mode := "encrypt"
	var result string
	var err error
	if req.Decrypt {
		mode = "decrypt"
		result, err = cipher.Decrypt(req.Input, req.Passphrase)
	} else {
		result, err = cipher.Encrypt(req.Input, req.Passphrase)
	}
	if err != nil {
		return nil, err
	}

	resp := &Response{
		ToolName: req.Tool.String(),
		Summary:  result,
		Metadata: map[string]string{"mode": mode, "algorithm": "AES-256-GCM"},
		Payload:  map[string]string{"mode": mode, "result": result},
	}
	return resp, nil
}

func (s *Service) runURL(req Request) (*Response, error) {
	if req.Input == "" {
		return nil, ErrEmptyInput
	}

	analysis, err := urltool.Analyze(req.Input)
	if err != nil {
		return nil, err
	}

	return s.respond(req.Tool, analysis, map[string]string{
		"protocol": analysis.Protocol,
		"secure":   strconv.FormatBool(analysis.IsSecure),
	})
}

func (s *Service) runXSS(req Request) (*Response, error) {
	report := xsscan.Scan(req.Input)
	if report == nil {
		return nil, ErrEmptyInput
	}

	return s.respond(req.Tool, report, map[string]string{
		"riskLevel":     report.RiskLevel,
		"securityScore": strconv.Itoa(report.SecurityScore),
		"threats":       strconv.Itoa(len(report.Threats)),
	})
}

func (s *Service) runJSON(req Request) (*Response, error) {
	analysis := jsontool.Analyze(req.Input)
	if analysis == nil {
		return nil, ErrEmptyInput
	}

	metadata := map[string]string{"valid": strconv.FormatBool(analysis.Valid)}
	if analysis.Profile != nil {
		metadata["type"] = analysis.Profile.Type
	}

	return s.respond(req.Tool, analysis, metadata)
}

// respond serializes the payload for the ledger and assembles the response.
func (s *Service) respond(tool Tool, payload interface{}, metadata map[string]string) (*Response, error) {
	summary, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s result: %w", tool, err)
	}

	return &Response{
		ToolName: tool.String(),
		Summary:  string(summary),
		Metadata: metadata,
		Payload:  payload,
	}, nil
}
