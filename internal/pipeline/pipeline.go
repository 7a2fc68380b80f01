package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/codeforkjeff/museum-provenance/internal/cache"
	"github.com/codeforkjeff/museum-provenance/internal/extract"
	"github.com/codeforkjeff/museum-provenance/internal/lexicon"
	"github.com/codeforkjeff/museum-provenance/internal/llm"
	"github.com/codeforkjeff/museum-provenance/internal/model"
	"github.com/codeforkjeff/museum-provenance/internal/score"
)

// Pipeline orchestrates extraction of one provenance record into a
// complete report: segment, parse, link, score, render, and the
// optional LLM review
type Pipeline struct {
	extractor  *extract.Extractor
	scorer     *score.Scorer
	renderer   *Renderer
	harvester  *Harvester
	store      cache.Cache // nil when caching is disabled
	summarizer *llm.Summarizer
	config     *model.Config
	log        zerolog.Logger
}

// New builds a pipeline from configuration. The lexicon overlay file
// is the only construction step that can fail.
func New(cfg *model.Config, log zerolog.Logger) (*Pipeline, error) {
	lex, err := lexicon.Load(cfg.Extract.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	if cfg.Extract.FootnoteDivider != "" {
		lex.FootnoteDivider = cfg.Extract.FootnoteDivider
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Directory != "" {
			store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Directory, cfg.Cache.TTL)
		} else {
			store = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			log.Warn().Err(err).Msg("LLM review disabled")
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		extractor:  extract.New(lex),
		scorer:     score.NewScorer(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		harvester:  NewHarvester(cfg.HTTP),
		store:      store,
		summarizer: summarizer,
		config:     cfg,
		log:        log,
	}, nil
}

// ParseSource processes a record source, which is either a URL to
// harvest or a path to a file holding the record text. Implements the
// batch worker's Parser interface.
func (p *Pipeline) ParseSource(ctx context.Context, source string) (*model.Report, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.HarvestURL(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}

	return p.ParseText(ctx, fileSubject(source), source, string(data))
}

// HarvestURL fetches a collection page, locates its provenance
// section, and runs extraction over it. Harvested reports are cached
// by URL.
func (p *Pipeline) HarvestURL(ctx context.Context, rawURL string) (*model.Report, error) {
	if report, ok := p.cachedReport(cache.Key(rawURL)); ok {
		p.log.Debug().Str("url", rawURL).Msg("harvest cache hit")
		return report, nil
	}

	result, err := p.harvester.Harvest(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("harvest: %w", err)
	}
	if !result.SectionFound {
		return nil, fmt.Errorf("no provenance section found at %s", result.FinalURL)
	}

	report, err := p.ParseText(ctx, result.Subject, result.FinalURL, result.ProvenanceText)
	if err != nil {
		return nil, err
	}
	report.Harvest = &result.Meta

	p.storeReport(cache.Key(rawURL), report)
	return report, nil
}

// ParseText runs extraction over raw record text and assembles the
// report. Identical texts resolve from the cache.
func (p *Pipeline) ParseText(ctx context.Context, subject, source, text string) (*model.Report, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty provenance record")
	}

	key := cache.Key(text)
	if report, ok := p.cachedReport(key); ok {
		p.log.Debug().Str("subject", subject).Msg("record cache hit")
		return report, nil
	}

	tl, stats := p.extractor.Extract(text)
	periods := tl.Periods()

	report := &model.Report{
		Subject:     subject,
		Source:      source,
		RetrievedAt: time.Now().UTC(),
		Record:      text,
		Periods:     periods,
		Provenance:  tl.Provenance(),
		Stats:       stats,
		Score:       p.scorer.Calculate(periods, stats),
		Principles:  model.DefaultPrinciples(),
		Warnings:    extractionWarnings(stats),
	}

	p.log.Info().
		Str("subject", subject).
		Int("periods", stats.Periods).
		Int("dropped_periods", stats.DroppedPeriods).
		Int("unparsable", stats.Unparsable).
		Int("index", report.Score.Index).
		Msg("record extracted")

	// The review runs after scoring and never feeds back into it
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			p.log.Warn().Err(err).Msg("LLM review failed")
		} else if summary != nil {
			report.LLM = summary
		}
	}

	p.storeReport(key, report)
	return report, nil
}

func (p *Pipeline) cachedReport(key string) (*model.Report, bool) {
	if p.store == nil {
		return nil, false
	}
	data, ok := p.store.Get(key)
	if !ok {
		return nil, false
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (p *Pipeline) storeReport(key string, report *model.Report) {
	if p.store == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	p.store.Set(key, data, 0)
}

// extractionWarnings turns non-zero drop counters into report
// warnings so silent data loss never happens
func extractionWarnings(stats model.ExtractionStats) []string {
	var warnings []string
	if stats.DroppedPeriods > 0 {
		warnings = append(warnings, fmt.Sprintf("%d period(s) dropped: insertion would break date ordering", stats.DroppedPeriods))
	}
	if stats.Unparsable > 0 {
		warnings = append(warnings, fmt.Sprintf("%d fragment(s) kept without a resolvable date range", stats.Unparsable))
	}
	if stats.DroppedDates > 0 {
		warnings = append(warnings, fmt.Sprintf("%d date match(es) discarded during parsing", stats.DroppedDates))
	}
	if stats.DanglingNotes > 0 {
		warnings = append(warnings, fmt.Sprintf("%d footnote marker(s) reference a missing note", stats.DanglingNotes))
	}
	return warnings
}

// RenderReport writes the report to the requested outputs and prints
// the terminal summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath, csvPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if csvPath != "" {
		if err := p.renderer.RenderCSV(report, csvPath); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s\n", csvPath)
		}
	}

	// The LLM review goes to its own file, never inline in the report
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write LLM review: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM review: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}

// fileSubject derives a readable subject from a record file path
func fileSubject(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return base
}
