package model

import (
	"fmt"
	"strings"
)

// ToolKind identifies one of the supported external enumeration tools.
// The set is fixed at compile time.
type ToolKind string

const (
	ToolMaigret  ToolKind = "maigret"
	ToolSherlock ToolKind = "sherlock"
	ToolHolehe   ToolKind = "holehe"
)

// Kinds returns all supported tool kinds in a stable order.
func Kinds() []ToolKind {
	return []ToolKind{ToolMaigret, ToolSherlock, ToolHolehe}
}

// ParseToolKind converts a string to a ToolKind.
func ParseToolKind(s string) (ToolKind, error) {
	switch k := ToolKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ToolMaigret, ToolSherlock, ToolHolehe:
		return k, nil
	default:
		return "", fmt.Errorf("unknown tool %q", s)
	}
}

func (k ToolKind) String() string {
	return string(k)
}

// ScanJob is one query dispatched to one tool kind. ScanID is generated at
// submission time and correlates the job with its eventual result. A job is
// owned by exactly one of submitter, inbound channel or worker at any
// instant.
type ScanJob struct {
	Query  string
	ScanID string
}

// ToolRunResult is the outcome of one external tool invocation. It is
// produced exactly once per picked up job and never mutated afterwards.
// Failures (timeout, missing executable, non-zero exit) are encoded in
// Succeeded/Stderr/ExitCode, they are data, not errors.
type ToolRunResult struct {
	ScanID    string   `json:"scan_id"`
	Tool      ToolKind `json:"tool"`
	Query     string   `json:"query"`
	Succeeded bool     `json:"succeeded"`
	Stdout    string   `json:"stdout,omitempty"`
	Stderr    string   `json:"stderr,omitempty"`
	ExitCode  int      `json:"exit_code"`
}

// ToolAvailability is the result of the start-up probe for one tool,
// computed once per manager instance and cached for its lifetime.
type ToolAvailability struct {
	Tool      ToolKind `json:"tool"`
	Available bool     `json:"available"`
}
