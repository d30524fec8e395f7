// Package models defines the data structures shared across the Security Toolbox
// service. It contains the persisted result record and the request bodies accepted
// by the HTTP API.
package models

import "time"

// ToolResult is a single saved tool invocation in the results ledger.
// Entries are immutable once created; only deletion is supported.
type ToolResult struct {
	ID        string            `json:"id"`
	ToolName  string            `json:"toolName"`
	Input     string            `json:"input"`
	Result    string            `json:"result"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp time.Time         `json:"timestamp"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
}

// ToolInput is the request body for single-input tool endpoints
// (hash, password, URL, XSS, JSON).
type ToolInput struct {
	Input string `json:"input"`
}

// CipherInput is the request body for the cipher endpoints.
type CipherInput struct {
	Text       string `json:"text,omitempty"`
	Ciphertext string `json:"ciphertext,omitempty"`
	Passphrase string `json:"passphrase"`
}

// ScanTarget is the request body for starting a simulated port scan.
type ScanTarget struct {
	Host string `json:"host"`
}

// SaveResultRequest is the request body for persisting a tool result.
type SaveResultRequest struct {
	ToolName string            `json:"toolName"`
	Input    string            `json:"input"`
	Result   string            `json:"result"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
