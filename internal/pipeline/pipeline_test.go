package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codeforkjeff/museum-provenance/internal/logging"
	"github.com/codeforkjeff/museum-provenance/internal/model"
)

const fullRecord = "Purchased by John Doe (1900-1950), New York, 1955 [1]. Probably his son, by descent, 1960 [2]. NOTES: 1. Receipt. 2. Family letter."

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.HTTP.RespectRobots = false
	return cfg
}

func newTestPipeline(t *testing.T, cfg *model.Config) *Pipeline {
	t.Helper()
	p, err := New(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("Expected pipeline construction to succeed, got %v", err)
	}
	return p
}

func TestPipeline_ParseText(t *testing.T) {
	p := newTestPipeline(t, testConfig())

	report, err := p.ParseText(context.Background(), "Test Painting", "records/test.txt", fullRecord)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.Subject != "Test Painting" {
		t.Errorf("Expected subject preserved, got %q", report.Subject)
	}
	if report.Source != "records/test.txt" {
		t.Errorf("Expected source preserved, got %q", report.Source)
	}
	if report.Stats.Periods != 2 || report.Stats.Footnotes != 2 {
		t.Errorf("Expected 2 periods and 2 footnotes, got %+v", report.Stats)
	}
	if report.Provenance != fullRecord {
		t.Errorf("Expected the record reconstructed exactly:\n got %q\nwant %q", report.Provenance, fullRecord)
	}
	if report.Score.Index == 0 {
		t.Error("Expected a non-zero completeness index")
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Expected a clean extraction without warnings, got %v", report.Warnings)
	}
	if report.RetrievedAt.IsZero() {
		t.Error("Expected RetrievedAt set")
	}
	if report.LLM != nil {
		t.Error("Expected no LLM review without a provider")
	}
}

func TestPipeline_ParseText_Empty(t *testing.T) {
	p := newTestPipeline(t, testConfig())

	if _, err := p.ParseText(context.Background(), "Empty", "", "   "); err == nil {
		t.Fatal("Expected error for an empty record")
	}
}

func TestPipeline_ParseText_CacheHit(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Enabled = true
	p := newTestPipeline(t, cfg)

	first, err := p.ParseText(context.Background(), "Cached", "", fullRecord)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := p.ParseText(context.Background(), "Cached", "", fullRecord)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A cache hit returns the stored report, including its timestamp
	if !second.RetrievedAt.Equal(first.RetrievedAt) {
		t.Errorf("Expected the second parse served from cache, got %v and %v", first.RetrievedAt, second.RetrievedAt)
	}
}

func TestPipeline_ParseSource_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "still-life-1887.txt")
	if err := os.WriteFile(path, []byte(fullRecord), 0644); err != nil {
		t.Fatalf("write record file: %v", err)
	}

	p := newTestPipeline(t, testConfig())
	report, err := p.ParseSource(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Subject != "still life 1887" {
		t.Errorf("Expected subject derived from the file name, got %q", report.Subject)
	}
	if report.Source != path {
		t.Errorf("Expected source set to the path, got %q", report.Source)
	}
	if report.Harvest != nil {
		t.Error("Expected no harvest metadata for a file source")
	}
}

func TestPipeline_ParseSource_MissingFile(t *testing.T) {
	p := newTestPipeline(t, testConfig())
	if _, err := p.ParseSource(context.Background(), "does/not/exist.txt"); err == nil {
		t.Fatal("Expected error for a missing record file")
	}
}

func TestPipeline_HarvestURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, collectionPage)
	}))
	defer server.Close()

	p := newTestPipeline(t, testConfig())
	report, err := p.HarvestURL(context.Background(), server.URL+"/objects/42")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.Subject != "Still Life with Flowers" {
		t.Errorf("Expected subject from the page title, got %q", report.Subject)
	}
	if report.Harvest == nil || report.Harvest.StatusCode != 200 {
		t.Errorf("Expected harvest metadata recorded, got %+v", report.Harvest)
	}
	if report.Stats.Periods != 2 {
		t.Errorf("Expected 2 periods extracted from the section, got %+v", report.Stats)
	}
	if !report.Periods[0].DirectTransfer {
		t.Error("Expected the semicolon to mark a direct transfer")
	}
	if report.Stats.Footnotes != 1 {
		t.Errorf("Expected the note block parsed, got %+v", report.Stats)
	}
}

func TestPipeline_HarvestURL_NoSection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body><p>Nothing here.</p></body></html>")
	}))
	defer server.Close()

	p := newTestPipeline(t, testConfig())
	_, err := p.HarvestURL(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error when the page has no provenance section")
	}
	if !strings.Contains(err.Error(), "no provenance section") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestPipeline_ParseSource_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, collectionPage)
	}))
	defer server.Close()

	p := newTestPipeline(t, testConfig())
	report, err := p.ParseSource(context.Background(), server.URL+"/objects/42")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Harvest == nil {
		t.Error("Expected a URL source routed through the harvester")
	}
}

func TestPipeline_RenderReport(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t, testConfig())

	report, err := p.ParseText(context.Background(), "Render Test", "", fullRecord)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	csvPath := filepath.Join(dir, "report.csv")

	if err := p.RenderReport(report, jsonPath, mdPath, csvPath, false); err != nil {
		t.Fatalf("Expected rendering to succeed, got %v", err)
	}

	for _, path := range []string{jsonPath, mdPath, csvPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("Expected %s written: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("Expected %s non-empty", path)
		}
	}
}

func TestPipeline_LexiconOverlay(t *testing.T) {
	dir := t.TempDir()
	overlayPath := filepath.Join(dir, "lexicon.yaml")
	overlay := "acquisitions:\n  - name: \"long-term loan\"\n    forms:\n      - \"on long-term loan to\"\n"
	if err := os.WriteFile(overlayPath, []byte(overlay), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cfg := testConfig()
	cfg.Extract.LexiconPath = overlayPath
	p := newTestPipeline(t, cfg)

	report, err := p.ParseText(context.Background(), "Overlay", "", "On long-term loan to the City Museum, 1990.")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(report.Periods) != 1 || report.Periods[0].AcquisitionMethod != "long-term loan" {
		t.Errorf("Expected the overlay acquisition recognized, got %+v", report.Periods)
	}
}

func TestPipeline_BadLexiconPath(t *testing.T) {
	cfg := testConfig()
	cfg.Extract.LexiconPath = "does/not/exist.yaml"
	if _, err := New(cfg, logging.Nop()); err == nil {
		t.Fatal("Expected error for a missing lexicon overlay")
	}
}

func TestExtractionWarnings(t *testing.T) {
	warnings := extractionWarnings(model.ExtractionStats{
		DroppedPeriods: 1,
		Unparsable:     2,
		DanglingNotes:  1,
	})
	if len(warnings) != 3 {
		t.Fatalf("Expected 3 warnings, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "dropped") {
		t.Errorf("Expected dropped-period warning first, got %q", warnings[0])
	}

	if got := extractionWarnings(model.ExtractionStats{Periods: 3}); got != nil {
		t.Errorf("Expected no warnings for a clean extraction, got %v", got)
	}
}

func TestFileSubject(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"records/still-life-1887.txt", "still life 1887"},
		{"/abs/path/Self_Portrait.txt", "Self Portrait"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := fileSubject(tt.path); got != tt.expected {
			t.Errorf("fileSubject(%q) = %q, expected %q", tt.path, got, tt.expected)
		}
	}
}
