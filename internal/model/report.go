package model

import "time"

// Report is the complete analysis of one provenance record
type Report struct {
	Subject     string       `json:"subject"`           // Artwork or record identifier
	Source      string       `json:"source,omitempty"`  // Where the record came from (file path or URL)
	RetrievedAt time.Time    `json:"retrieved_at"`      // When the record was processed
	Harvest     *HarvestMeta `json:"harvest,omitempty"` // HTTP metadata when harvested from the web

	Record     string    `json:"record"`     // Raw provenance text as given
	Periods    []*Period `json:"periods"`    // Extracted custody periods in order
	Provenance string    `json:"provenance"` // Reassembled prose with renumbered footnotes

	Stats ExtractionStats `json:"stats"` // Extraction diagnostics
	Score Score           `json:"score"` // Completeness index and scoring breakdown

	Principles Principles `json:"principles"` // Scoring posture applied

	Warnings []string `json:"warnings,omitempty"` // Non-fatal extraction warnings

	LLM *LLMSummary `json:"llm,omitempty"` // Optional LLM review (separate, never affects score)
}

// HarvestMeta contains HTTP metadata from fetching the record source
type HarvestMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// ExtractionStats counts what the pipeline saw and what it had to drop
type ExtractionStats struct {
	Fragments      int `json:"fragments"`                 // Ownership fragments segmented from the body
	Periods        int `json:"periods"`                   // Periods linked into the timeline
	DroppedPeriods int `json:"dropped_periods,omitempty"` // Periods rejected by date-conflict checks
	Unparsable     int `json:"unparsable,omitempty"`      // Fragments whose date range could not be resolved
	DroppedDates   int `json:"dropped_dates,omitempty"`   // Date matches discarded instead of parsed
	Footnotes      int `json:"footnotes"`                 // Footnotes parsed from the block
	DanglingNotes  int `json:"dangling_notes,omitempty"`  // Markers referencing a missing footnote
}

// Score represents the transparent scoring breakdown
type Score struct {
	Index      int      `json:"index"`      // Overall completeness index (0-100)
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Conflict   bool     `json:"conflict"`   // Whether impossible date orderings were detected
	Signals    []Signal `json:"signals"`    // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Transparent scoring data (formulas, inputs)
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalParseCoverage    SignalType = "parse_coverage"    // Fragments fully parsed vs dropped or unparsable
	SignalCertainty        SignalType = "certainty"         // Share of periods marked uncertain
	SignalContinuity       SignalType = "continuity"        // Direct-transfer chain coverage
	SignalAnonymousParties SignalType = "anonymous_parties" // Unnamed or placeholder owners
	SignalWartimeGap       SignalType = "wartime_gap"       // Custody gap overlapping 1933-1945
	SignalDateConflict     SignalType = "date_conflict"     // Periods rejected for impossible ordering
	SignalDanglingNotes    SignalType = "dangling_notes"    // Footnote markers without note text
	SignalUndatedPeriods   SignalType = "undated_periods"   // Periods with no time bounds at all
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Principles documents which scoring principles were applied
type Principles struct {
	NonNormative bool `json:"non_normative"` // Evaluates documentation, not authenticity or title
	Transparent  bool `json:"transparent"`   // All scoring explainable
	Symmetric    bool `json:"symmetric"`     // Same rules for every record
}

// DefaultPrinciples returns the standard scoring principles
func DefaultPrinciples() Principles {
	return Principles{
		NonNormative: true,
		Transparent:  true,
		Symmetric:    true,
	}
}

// LLMSummary contains an optional LLM-generated review of the record
// CRITICAL: This never affects scoring and is clearly separated
type LLMSummary struct {
	Enabled        bool     `json:"enabled"`
	Provider       string   `json:"provider,omitempty"`   // openai, anthropic, ollama
	Model          string   `json:"model,omitempty"`      // Model name
	StrictEvidence bool     `json:"strict_evidence"`      // Whether party-reference enforcement was enabled
	SummaryMD      string   `json:"summary_md,omitempty"` // Markdown summary
	Warnings       []string `json:"warnings,omitempty"`   // Any issues (e.g., unverifiable references)
}
