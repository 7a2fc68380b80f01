package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

// Renderer writes reports as JSON, CSV, Markdown, and the terminal
// summary. A path of "-" writes to stdout.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a Renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// csvHeader lists one row per custody period. Every date carries its
// own precision and certainty columns.
var csvHeader = []string{
	"subject", "party", "party_birth", "party_death", "location",
	"acquisition_method", "stock_number", "certain", "parsable", "direct_transfer",
	"begin_earliest", "begin_earliest_precision", "begin_earliest_certain",
	"begin_latest", "begin_latest_precision", "begin_latest_certain",
	"end_earliest", "end_earliest_precision", "end_earliest_certain",
	"end_latest", "end_latest_precision", "end_latest_certain",
	"notes", "original_text",
}

// RenderCSV writes one row per custody period
func (r *Renderer) RenderCSV(report *model.Report, path string) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create CSV file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, p := range report.Periods {
		row := []string{
			report.Subject,
			p.Party.Name,
			dateCell(p.Party.Birth),
			dateCell(p.Party.Death),
			p.Location,
			p.AcquisitionMethod,
			p.StockNumber,
			strconv.FormatBool(p.Certain),
			strconv.FormatBool(p.Parsable),
			strconv.FormatBool(p.DirectTransfer),
		}
		row = append(row, dateColumns(p.Span.BeginEarliest)...)
		row = append(row, dateColumns(p.Span.BeginLatest)...)
		row = append(row, dateColumns(p.Span.EndEarliest)...)
		row = append(row, dateColumns(p.Span.EndLatest)...)
		row = append(row, joinNotes(p.Notes), p.OriginalText)

		if err := w.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// dateColumns renders a date as value, precision, certainty
func dateColumns(d *model.Date) []string {
	if d == nil {
		return []string{"", "", ""}
	}
	return []string{d.Display(), string(d.Precision), strconv.FormatBool(d.Certain)}
}

func dateCell(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func joinNotes(notes []model.Note) string {
	if len(notes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.Text != "" {
			parts = append(parts, n.Text)
		} else {
			parts = append(parts, fmt.Sprintf("[%d]", n.Index))
		}
	}
	return strings.Join(parts, " | ")
}

// RenderMarkdown writes a human-readable report document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Provenance Report: %s\n\n", report.Subject)
	if report.Source != "" {
		fmt.Fprintf(&sb, "**Source:** %s\n", report.Source)
	}
	fmt.Fprintf(&sb, "**Retrieved:** %s\n\n", report.RetrievedAt.Format("2006-01-02 15:04 UTC"))

	fmt.Fprintf(&sb, "## Completeness: %d/100 (%s confidence)\n\n", report.Score.Index, report.Score.Confidence)
	if report.Score.Conflict {
		sb.WriteString("**Date conflict detected.** One or more periods could not be placed without breaking chronological order.\n\n")
	}

	if len(report.Score.Signals) > 0 {
		sb.WriteString("| Signal | Severity | Description |\n")
		sb.WriteString("|--------|----------|-------------|\n")
		for _, sig := range report.Score.Signals {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", sig.Type, sig.Severity, escapePipes(sig.Description))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Custody Periods (%d)\n\n", len(report.Periods))
	for i, p := range report.Periods {
		sb.WriteString(periodMarkdown(i+1, p))
	}

	if report.Provenance != "" {
		sb.WriteString("## Regenerated Record\n\n")
		for _, line := range strings.Split(report.Provenance, "\n") {
			fmt.Fprintf(&sb, "> %s\n", line)
		}
		sb.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("## Extraction Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Extraction Stats\n\n")
	fmt.Fprintf(&sb, "- Fragments: %d\n", report.Stats.Fragments)
	fmt.Fprintf(&sb, "- Periods: %d\n", report.Stats.Periods)
	fmt.Fprintf(&sb, "- Footnotes: %d\n", report.Stats.Footnotes)
	if report.Stats.DroppedPeriods > 0 {
		fmt.Fprintf(&sb, "- Dropped periods: %d\n", report.Stats.DroppedPeriods)
	}
	if report.Stats.Unparsable > 0 {
		fmt.Fprintf(&sb, "- Unparsable fragments: %d\n", report.Stats.Unparsable)
	}
	sb.WriteString("\n")

	if r.includeFooter {
		sb.WriteString("---\n")
		sb.WriteString("*Generated by [museum-provenance](https://github.com/codeforkjeff/museum-provenance). ")
		sb.WriteString("The completeness index measures how well the record documents custody. It never asserts authenticity or title.*\n")
	}

	if path == "-" {
		_, err := os.Stdout.WriteString(sb.String())
		return err
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// periodMarkdown renders one custody period as a numbered entry
func periodMarkdown(n int, p *model.Period) string {
	var sb strings.Builder

	name := p.Party.Name
	if name == "" {
		name = "(anonymous)"
	}
	header := fmt.Sprintf("%d. **%s**", n, name)
	if life := lifeDates(p.Party); life != "" {
		header += " " + life
	}
	if p.Location != "" {
		header += ", " + p.Location
	}
	if phrase := p.Span.Phrase(); phrase != "" {
		header += ", " + phrase
	}
	if !p.Certain {
		header += " *(uncertain)*"
	}
	sb.WriteString(header + "\n")

	if p.AcquisitionMethod != "" {
		fmt.Fprintf(&sb, "   - Acquired by %s\n", p.AcquisitionMethod)
	}
	if p.StockNumber != "" {
		fmt.Fprintf(&sb, "   - Stock number: %s\n", p.StockNumber)
	}
	if p.DirectTransfer {
		sb.WriteString("   - Passed directly to the next owner\n")
	}
	if !p.Parsable {
		sb.WriteString("   - Date range could not be resolved\n")
	}
	for _, note := range p.Notes {
		if note.Text != "" {
			fmt.Fprintf(&sb, "   - Note [%d]: %s\n", note.Index, note.Text)
		}
	}
	sb.WriteString("\n")

	return sb.String()
}

func lifeDates(party model.Party) string {
	switch {
	case party.Birth != nil && party.Death != nil:
		return fmt.Sprintf("(%s to %s)", party.Birth.String(), party.Death.String())
	case party.Birth != nil:
		return fmt.Sprintf("(born %s)", party.Birth.String())
	case party.Death != nil:
		return fmt.Sprintf("(died %s)", party.Death.String())
	}
	return ""
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// RenderLLMMarkdown writes the already-rendered LLM review document
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if markdown == "" {
		return nil
	}
	if path == "-" {
		_, err := os.Stdout.WriteString(markdown)
		return err
	}
	return os.WriteFile(path, []byte(markdown), 0644)
}

// RenderSummary prints the terminal summary for one report
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("  %s\n", report.Subject)
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("\n")
	fmt.Printf("  Completeness:  %d/100 (%s confidence)\n", report.Score.Index, report.Score.Confidence)
	fmt.Printf("  Periods:       %s\n", periodCount(report.Stats))
	fmt.Printf("  Footnotes:     %d\n", report.Stats.Footnotes)
	if report.Score.Conflict {
		fmt.Printf("  ✗ Date conflict: %d period(s) dropped\n", report.Stats.DroppedPeriods)
	}
	fmt.Printf("\n")

	if len(report.Score.Signals) > 0 {
		fmt.Printf("  Signals:\n")
		for _, sig := range report.Score.Signals {
			fmt.Printf("    %s %s\n", severityGlyph(sig.Severity), sig.Description)
		}
		fmt.Printf("\n")
	}

	if report.LLM != nil && report.LLM.Enabled {
		fmt.Printf("  LLM review: %s/%s (written separately)\n", report.LLM.Provider, report.LLM.Model)
		fmt.Printf("\n")
	}
}

func periodCount(stats model.ExtractionStats) string {
	s := strconv.Itoa(stats.Periods)
	var qualifiers []string
	if stats.Unparsable > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf("%d undated", stats.Unparsable))
	}
	if stats.DroppedPeriods > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf("%d dropped", stats.DroppedPeriods))
	}
	if len(qualifiers) > 0 {
		s += " (" + strings.Join(qualifiers, ", ") + ")"
	}
	return s
}

func severityGlyph(severity model.SignalSeverity) string {
	switch severity {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "•"
	}
}
