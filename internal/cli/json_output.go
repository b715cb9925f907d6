// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for the --json flag.

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every command writes in JSON mode.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to w, indented.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData is returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// SessionData is one row of the history listing.
type SessionData struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Language   string     `json:"language"`
	Input      string     `json:"input"`
	Utterances int        `json:"utterances"`
	Applied    int        `json:"applied"`
	Failed     int        `json:"failed"`
	Saved      int        `json:"saved"`
}

// UtteranceData is one journaled utterance.
type UtteranceData struct {
	Seq     int       `json:"seq"`
	At      time.Time `json:"at"`
	Text    string    `json:"text"`
	Kind    string    `json:"kind,omitempty"`
	Outcome string    `json:"outcome"`
	Message string    `json:"message,omitempty"`
}

// SavedTableData is one table exported during a session.
type SavedTableData struct {
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	Format  string     `json:"format"`
	Records [][]string `json:"records"`
	SavedAt time.Time  `json:"saved_at"`
}

// SessionDetailData is returned by "history <session>".
type SessionDetailData struct {
	Session    SessionData      `json:"session"`
	Utterances []UtteranceData  `json:"utterances"`
	Saved      []SavedTableData `json:"saved"`
}

// TemplateData is one template of the catalogue.
type TemplateData struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
}
