package model

import "time"

// ProbeStatus classifies the outcome of one signup-page probe.
type ProbeStatus string

const (
	ProbeRegistered ProbeStatus = "registered"
	ProbeAvailable  ProbeStatus = "available"
	ProbeUnknown    ProbeStatus = "unknown"
	ProbeError      ProbeStatus = "error"
)

// ProbeFinding is the outcome of probing one site for the queried address.
type ProbeFinding struct {
	Site    string      `json:"site"`
	URL     string      `json:"url"`
	Status  ProbeStatus `json:"status"`
	Detail  string      `json:"detail,omitempty"` // matched keyword or transport error
	Elapsed float64     `json:"elapsed_s"`
}

// DomainRecord holds WHOIS derived facts about the address domain.
type DomainRecord struct {
	Domain      string   `json:"domain"`
	Registrar   string   `json:"registrar,omitempty"`
	Created     string   `json:"created,omitempty"`
	Expires     string   `json:"expires,omitempty"`
	NameServers []string `json:"name_servers,omitempty"`
	Statuses    []string `json:"statuses,omitempty"`
}

// ToolSection is one external tool contribution to a report.
type ToolSection struct {
	Result   ToolRunResult `json:"result"`
	Skipped  bool          `json:"skipped"`           // tool was unavailable or collect timed out
	SkipNote string        `json:"skipped_reason,omitempty"`
	Elapsed  float64       `json:"elapsed_s"`
}

// Report is the merged outcome of one full scan of one email address.
type Report struct {
	SessionID    string                        `json:"session_id"`
	Email        EmailAddr                     `json:"email"`
	Started      time.Time                     `json:"started"`
	Finished     time.Time                     `json:"finished"`
	Availability map[ToolKind]ToolAvailability `json:"availability"`
	Tools        map[ToolKind]ToolSection      `json:"tools"`
	Probes       []ProbeFinding                `json:"probes,omitempty"`
	Whois        *DomainRecord                 `json:"whois,omitempty"`
}

// SucceededTools counts tool sections which ran and exited zero.
func (r Report) SucceededTools() int {
	var n int
	for _, s := range r.Tools {
		if !s.Skipped && s.Result.Succeeded {
			n++
		}
	}
	return n
}

// RegisteredSites lists probe findings with registered status.
func (r Report) RegisteredSites() []string {
	var out []string
	for _, p := range r.Probes {
		if p.Status == ProbeRegistered {
			out = append(out, p.Site)
		}
	}
	return out
}
