package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

// Summarizer wraps a provider and produces the optional LLM review of
// a report. The review is cosmetic: it never feeds back into
// extraction or scoring, and any provider failure degrades to
// warnings instead of failing the analysis.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer from configuration. An empty
// provider name yields a disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		provider: provider,
		config:   config,
	}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider's name
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary produces the LLM review for a report. A disabled
// summarizer returns nil. Provider unavailability and generation
// errors come back as warnings on the summary.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}

	summary := &model.LLMSummary{
		Provider:       s.provider.Name(),
		Model:          s.config.Model,
		StrictEvidence: s.config.StrictEvidence,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Enabled = false
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("LLM provider %s is not available; review skipped", s.provider.Name()))
		return summary, nil
	}

	summary.Enabled = true

	req := SummarizeRequest{
		Report:     report,
		SourceURLs: collectSourceURLs(report),
		PartyNames: collectPartyNames(report),
		Model:      s.config.Model,
		MaxTokens:  s.config.MaxTokens,
	}

	resp, err := s.provider.Summarize(ctx, req)
	if err != nil {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("LLM review generation failed: %v", err))
		return summary, nil
	}

	summary.SummaryMD = resp.Summary
	if resp.Model != "" {
		summary.Model = resp.Model
	}
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))

	if s.config.StrictEvidence {
		verified := len(resp.CitedURLs) + countMentionedNames(resp.Summary, req.PartyNames)
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("Verified %d citations against the extracted record", verified))
	}

	return summary, nil
}

// collectPartyNames lists the named owners in timeline order
func collectPartyNames(report model.Report) []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range report.Periods {
		name := p.Party.Name
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// collectSourceURLs gathers the allowed citation targets: the harvest
// source when it is a URL, plus any URLs inside footnote texts
func collectSourceURLs(report model.Report) []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	if strings.HasPrefix(report.Source, "http://") || strings.HasPrefix(report.Source, "https://") {
		add(report.Source)
	}
	for _, p := range report.Periods {
		for _, note := range p.Notes {
			for _, u := range extractURLs(note.Text) {
				add(u)
			}
		}
	}
	return urls
}

// countMentionedNames counts how many allowlisted names the review
// actually uses
func countMentionedNames(summary string, names []string) int {
	count := 0
	for _, name := range names {
		if name != "" && strings.Contains(summary, name) {
			count++
		}
	}
	return count
}

// RenderSeparateMarkdown renders the LLM review as a standalone
// markdown section, clearly fenced off from the scored report
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder

	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT** - This section was produced by a language model.\n")
	b.WriteString("> The completeness index above was determined independently and is never\n")
	b.WriteString("> affected by this review.\n\n")

	fmt.Fprintf(&b, "- **Provider**: %s\n", summary.Provider)
	fmt.Fprintf(&b, "- **Model**: %s\n", summary.Model)
	fmt.Fprintf(&b, "- **Strict Evidence Mode**: %t\n\n", summary.StrictEvidence)

	if summary.SummaryMD == "" {
		b.WriteString("No summary generated.\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, warning := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	return b.String()
}
