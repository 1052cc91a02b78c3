package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// AnalysisStatus tracks the lifecycle of one business-intelligence run.
type AnalysisStatus string

// Analysis lifecycle states. PENDING is instantaneous: the pipeline creates
// the record PENDING and advances it to IN_PROGRESS before any external I/O.
// COMPLETED, COMPLETED_PARTIAL, and FAILED are terminal. COMPLETED_PARTIAL
// marks a run that finished its stages but persisted zero personas.
const (
	StatusPending          AnalysisStatus = "PENDING"
	StatusInProgress       AnalysisStatus = "IN_PROGRESS"
	StatusCompleted        AnalysisStatus = "COMPLETED"
	StatusCompletedPartial AnalysisStatus = "COMPLETED_PARTIAL"
	StatusFailed           AnalysisStatus = "FAILED"
)

// Terminal reports whether the status is a final state.
func (s AnalysisStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCompletedPartial || s == StatusFailed
}

// Succeeded reports whether the run finished without a fatal error.
// COMPLETED_PARTIAL counts as success: the analysis fields are populated,
// only the persona stage came up empty.
func (s AnalysisStatus) Succeeded() bool {
	return s == StatusCompleted || s == StatusCompletedPartial
}

// CanAdvanceTo reports whether next is a legal transition from s.
// Transitions are monotonic; terminal states admit no successor.
func (s AnalysisStatus) CanAdvanceTo(next AnalysisStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusFailed
	case StatusInProgress:
		return next.Terminal()
	default:
		return false
	}
}

// Analysis is one business-intelligence run over a source URL.
type Analysis struct {
	ID           string           `json:"id"`
	BusinessID   string           `json:"businessId"`
	Status       AnalysisStatus   `json:"status"`
	SourceURL    string           `json:"sourceUrl"`
	SWOT         StructuredResult `json:"swot,omitempty"`
	Competitors  StructuredResult `json:"competitors,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// StructuredResult is the outcome of an AI extraction whose response was
// expected to be JSON: either the parsed value, or the raw string tagged with
// a parse-failed marker. The zero value means "not populated".
//
// Every consumer must branch on IsParsed rather than assume a shape.
type StructuredResult struct {
	value    json.RawMessage
	raw      string
	parsed   bool
	unparsed bool
}

// Parsed wraps a successfully parsed JSON value.
func Parsed(value json.RawMessage) StructuredResult {
	return StructuredResult{value: value, parsed: true}
}

// Unparsed wraps the raw text of a response that failed to parse.
func Unparsed(raw string) StructuredResult {
	return StructuredResult{raw: raw, unparsed: true}
}

// IsParsed reports whether the result holds a parsed JSON value.
func (r StructuredResult) IsParsed() bool { return r.parsed }

// IsZero reports whether the result is unpopulated.
func (r StructuredResult) IsZero() bool { return !r.parsed && !r.unparsed }

// Value returns the parsed JSON value, or nil for unparsed/zero results.
func (r StructuredResult) Value() json.RawMessage { return r.value }

// Raw returns the unparseable raw text, or "" for parsed/zero results.
func (r StructuredResult) Raw() string { return r.raw }

// parseFailedMarker is the in-band error tag for unparseable AI responses.
const parseFailedMarker = "parse-failed"

type unparsedEnvelope struct {
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

// MarshalJSON emits the parsed value verbatim, the tagged envelope
// {"error":"parse-failed","raw":...} for unparsed results, or null.
func (r StructuredResult) MarshalJSON() ([]byte, error) {
	switch {
	case r.parsed:
		return r.value, nil
	case r.unparsed:
		return json.Marshal(unparsedEnvelope{Error: parseFailedMarker, Raw: r.raw})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON restores either arm of the union. An object carrying
// error == "parse-failed" is treated as the unparsed arm; anything else is
// kept as a parsed raw message.
func (r *StructuredResult) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = StructuredResult{}
		return nil
	}

	var env unparsedEnvelope
	if err := json.Unmarshal(trimmed, &env); err == nil && env.Error == parseFailedMarker {
		*r = Unparsed(env.Raw)
		return nil
	}

	value := make(json.RawMessage, len(trimmed))
	copy(value, trimmed)
	*r = Parsed(value)
	return nil
}
