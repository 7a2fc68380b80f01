package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

func sampleReport() *model.Report {
	birth := model.YearDate(1900)
	death := model.YearDate(1950)
	begin := model.YearDate(1955)
	end := model.YearDate(1960)

	return &model.Report{
		Subject:     "Still Life with Flowers",
		Source:      "https://collection.example.org/objects/42",
		RetrievedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Record:      "Purchased by John Doe (1900-1950), New York, 1955 [1].",
		Periods: []*model.Period{
			{
				Certain:           true,
				Parsable:          true,
				OriginalText:      "Purchased by John Doe (1900-1950), New York, 1955 [1]",
				AcquisitionMethod: "purchase",
				Party:             model.Party{Name: "John Doe", Birth: &birth, Death: &death},
				Location:          "New York",
				Notes:             []model.Note{{Index: 1, Text: "Receipt."}},
				Span:              model.TimeSpan{BeginEarliest: &begin, BeginLatest: &begin},
			},
			{
				Certain:  false,
				Parsable: true,
				Party:    model.Party{Name: "his son"},
				Span:     model.TimeSpan{BeginEarliest: &end, BeginLatest: &end},
			},
		},
		Provenance: "Purchased by John Doe (1900-1950), New York, 1955 [1].",
		Stats:      model.ExtractionStats{Fragments: 2, Periods: 2, Footnotes: 1},
		Score: model.Score{
			Index:      82,
			Confidence: "high",
			Signals: []model.Signal{
				{Type: model.SignalParseCoverage, Severity: model.SeverityInfo, Description: "All 2 periods parsed"},
				{Type: model.SignalCertainty, Severity: model.SeverityWarning, Description: "1 of 2 periods uncertain"},
			},
		},
		Principles: model.DefaultPrinciples(),
	}
}

func TestRenderJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	r := NewRenderer(true)
	if err := r.RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded.Subject != "Still Life with Flowers" {
		t.Errorf("Expected subject round-tripped, got %q", decoded.Subject)
	}
	if len(decoded.Periods) != 2 {
		t.Errorf("Expected 2 periods round-tripped, got %d", len(decoded.Periods))
	}
	if decoded.Score.Index != 82 {
		t.Errorf("Expected score round-tripped, got %d", decoded.Score.Index)
	}
}

func TestRenderCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")

	r := NewRenderer(true)
	if err := r.RenderCSV(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open CSV: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Expected parseable CSV, got %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected header plus one row per period, got %d rows", len(rows))
	}
	if len(rows[0]) != len(csvHeader) {
		t.Errorf("Expected %d header columns, got %d", len(csvHeader), len(rows[0]))
	}

	header := rows[0]
	first := rows[1]
	cell := func(name string) string {
		for i, h := range header {
			if h == name {
				return first[i]
			}
		}
		t.Fatalf("column %q missing", name)
		return ""
	}

	if cell("party") != "John Doe" {
		t.Errorf("Expected party column, got %q", cell("party"))
	}
	if cell("acquisition_method") != "purchase" {
		t.Errorf("Expected acquisition column, got %q", cell("acquisition_method"))
	}
	if cell("begin_earliest") != "1955" {
		t.Errorf("Expected begin date rendered, got %q", cell("begin_earliest"))
	}
	if cell("begin_earliest_precision") != "year" {
		t.Errorf("Expected precision in its own column, got %q", cell("begin_earliest_precision"))
	}
	if cell("begin_earliest_certain") != "true" {
		t.Errorf("Expected certainty in its own column, got %q", cell("begin_earliest_certain"))
	}
	if cell("end_earliest") != "" {
		t.Errorf("Expected empty cell for an open bound, got %q", cell("end_earliest"))
	}
	if cell("notes") != "Receipt." {
		t.Errorf("Expected note text, got %q", cell("notes"))
	}

	second := rows[2]
	if second[1] != "his son" {
		t.Errorf("Expected second period party, got %q", second[1])
	}
}

func TestRenderMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")

	r := NewRenderer(true)
	if err := r.RenderMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	content := string(data)

	requiredSections := []string{
		"# Provenance Report: Still Life with Flowers",
		"**Source:** https://collection.example.org/objects/42",
		"## Completeness: 82/100 (high confidence)",
		"| parse_coverage | info |",
		"## Custody Periods (2)",
		"1. **John Doe** (1900 to 1950), New York, 1955",
		"   - Acquired by purchase",
		"   - Note [1]: Receipt.",
		"2. **his son**, 1960 *(uncertain)*",
		"## Regenerated Record",
		"> Purchased by John Doe",
		"## Extraction Stats",
		"never asserts authenticity",
	}
	for _, section := range requiredSections {
		if !strings.Contains(content, section) {
			t.Errorf("Expected markdown to contain %q", section)
		}
	}
}

func TestRenderMarkdown_NoFooter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")

	r := NewRenderer(false)
	if err := r.RenderMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Generated by") {
		t.Error("Expected no footer when disabled")
	}
}

func TestRenderMarkdown_ConflictBanner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")

	report := sampleReport()
	report.Score.Conflict = true
	report.Stats.DroppedPeriods = 1

	r := NewRenderer(false)
	if err := r.RenderMarkdown(report, path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Date conflict detected") {
		t.Error("Expected the conflict called out")
	}
}

func TestRenderLLMMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.llm.md")

	r := NewRenderer(true)
	if err := r.RenderLLMMarkdown("# LLM Summary\n\ntext\n", path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read LLM markdown: %v", err)
	}
	if !strings.Contains(string(data), "# LLM Summary") {
		t.Error("Expected the review written as given")
	}

	// An empty review writes nothing
	emptyPath := filepath.Join(dir, "empty.llm.md")
	if err := r.RenderLLMMarkdown("", emptyPath); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := os.Stat(emptyPath); !os.IsNotExist(err) {
		t.Error("Expected no file for an empty review")
	}
}

func TestPeriodMarkdown_Anonymous(t *testing.T) {
	p := &model.Period{Parsable: true, Certain: true}
	md := periodMarkdown(3, p)
	if !strings.Contains(md, "3. **(anonymous)**") {
		t.Errorf("Expected anonymous placeholder, got %q", md)
	}
}

func TestDateColumns(t *testing.T) {
	d := model.YearDate(1850).Uncertain()
	cols := dateColumns(&d)
	if cols[0] != "1850" || cols[1] != "year" || cols[2] != "false" {
		t.Errorf("Unexpected columns: %v", cols)
	}

	empty := dateColumns(nil)
	if empty[0] != "" || empty[1] != "" || empty[2] != "" {
		t.Errorf("Expected empty columns for nil, got %v", empty)
	}
}
