package analysis

import (
	"time"
)

// Status enum
type Status string

const (
	StatusSafe       Status = "SEGURO"
	StatusSuspicious Status = "SUSPEITO"
)

// Severity enum
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityCounts value object
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// Finding is one output of a single detector rule.
type Finding struct {
	RuleID      string   `json:"rule_id"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	MatchedSpan string   `json:"matched_span,omitempty"`
}

// Result is the persisted outcome of screening one document text.
// Build it with NewResult so Status always agrees with Findings.
type Result struct {
	ID              string         `json:"id"`
	Fingerprint     Fingerprint    `json:"content_fingerprint"`
	Status          Status         `json:"status"`
	Findings        []Finding      `json:"findings"`
	Counts          SeverityCounts `json:"counts"`
	Text            string         `json:"text"`
	HighlightedText string         `json:"highlighted_text"`
	DocumentURL     string         `json:"document_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewResult derives status and counts from findings.
func NewResult(id string, fp Fingerprint, text, highlighted string, findings []Finding, createdAt time.Time) *Result {
	if findings == nil {
		findings = []Finding{}
	}
	return &Result{
		ID:              id,
		Fingerprint:     fp,
		Status:          Classify(findings),
		Findings:        findings,
		Counts:          CountSeverities(findings),
		Text:            text,
		HighlightedText: highlighted,
		CreatedAt:       createdAt,
	}
}

// Classify: SUSPEITO kalau ada finding, selain itu SEGURO.
func Classify(findings []Finding) Status {
	if len(findings) > 0 {
		return StatusSuspicious
	}
	return StatusSafe
}

func CountSeverities(findings []Finding) SeverityCounts {
	var c SeverityCounts
	for _, f := range findings {
		switch f.Severity {
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		default:
			c.Low++
		}
		c.Total++
	}
	return c
}

// Suspicious reports whether the result should trigger an alert.
func (r *Result) Suspicious() bool {
	return r != nil && r.Status == StatusSuspicious
}
