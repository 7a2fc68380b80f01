package llm

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

// reviewSystemPrompt frames every provider call the same way.
const reviewSystemPrompt = "You are a careful assistant that reviews museum provenance documentation with strict adherence to citation constraints."

// reviewTemperature keeps the output factual rather than creative.
const reviewTemperature = 0.3

// Provider is one backend capable of reviewing a report.
type Provider interface {
	Name() string

	// Summarize generates the curator review under the evidence rules
	// in the request.
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable reports whether the backend is configured and
	// reachable right now.
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest carries everything a provider needs for one review.
type SummarizeRequest struct {
	// Report is the provenance analysis under review.
	Report model.Report

	// SourceURLs is the allowlist of citable URLs: the harvest source
	// plus URLs appearing in footnote texts. The review may not cite
	// anything else.
	SourceURLs []string

	// PartyNames are the owners extracted from the record. The review
	// must not introduce names beyond these.
	PartyNames []string

	// Prompt overrides the default prompt when non-empty.
	Prompt string

	// Model and MaxTokens override the provider's configured values.
	Model     string
	MaxTokens int
}

// SummarizeResponse is a provider's finished review.
type SummarizeResponse struct {
	Summary string

	// CitedURLs is every URL found in the summary text, checked
	// against the allowlist when strict evidence is on.
	CitedURLs []string

	// Model is the model that actually answered.
	Model string

	TokensUsed int
}

// Config selects and tunes a provider backend.
type Config struct {
	// Provider is "openai", "anthropic", "ollama", or empty for off.
	Provider string

	Model  string
	APIKey string

	// BaseURL points at a custom endpoint, e.g. a remote Ollama.
	BaseURL string

	// Timeout is the per-request limit in seconds.
	Timeout int

	// StrictEvidence rejects reviews citing URLs outside the
	// allowlist.
	StrictEvidence bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig leaves review off and strict evidence on.
func DefaultConfig() Config {
	return Config{
		Provider:       "",
		Model:          "",
		Timeout:        30,
		StrictEvidence: true,
		MaxTokens:      1000,
	}
}

// BuildPrompt constructs the default review prompt. The allowlist and
// the extracted owner chain are embedded so the model has nothing else
// to draw on.
func BuildPrompt(report model.Report, sourceURLs []string, partyNames []string) string {
	prompt := fmt.Sprintf(`You are reviewing a museum provenance record analysis. The analysis evaluates how completely an ownership history is documented - it NEVER asserts authenticity, attribution, or legal title.

CRITICAL RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. You MUST ONLY name owners from this extracted chain:
%s

3. DO NOT infer, speculate, or cite external sources beyond these lists.
4. If documentation is insufficient or missing, state that explicitly.
5. Focus on DOCUMENTATION QUALITY, not authenticity. Use phrases like:
   - "The chain of custody is documented from..."
   - "Documentation is lacking for..."
   - "The record cites footnotes for..."
6. Never say "this work is genuine" or "title is clear" - only describe documentation.

Record Summary:
- Subject: %s
- Completeness Index: %d/100
- Custody Periods: %d
- Footnotes: %d
- Unparsable Fragments: %d

Key Signals:
`, joinURLs(sourceURLs), joinNames(partyNames), report.Subject, report.Score.Index, len(report.Periods), report.Stats.Footnotes, report.Stats.Unparsable)

	// Top three signals only; the full list repeats what the numbers
	// already say.
	for i, signal := range report.Score.Signals {
		if i >= 3 {
			break
		}
		prompt += fmt.Sprintf("- %s: %s\n", signal.Type, signal.Description)
	}

	prompt += "\nProvide a 3-4 sentence review focusing on documentation quality, not authenticity."

	return prompt
}

// promptListCap bounds how many allowlist entries the prompt spells
// out before truncating.
const promptListCap = 20

func joinURLs(urls []string) string {
	return joinCapped(urls, "(No source URLs available)", "URLs")
}

func joinNames(names []string) string {
	return joinCapped(names, "(No named owners extracted)", "names")
}

func joinCapped(items []string, empty, noun string) string {
	if len(items) == 0 {
		return empty
	}
	var b strings.Builder
	for i, item := range items {
		if i == promptListCap {
			fmt.Fprintf(&b, "\n... and %d more %s", len(items)-promptListCap, noun)
			break
		}
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}

var urlRe = regexp.MustCompile(`https?://[^\s\)]+`)

// extractURLs returns the distinct URLs cited in text, trailing
// punctuation stripped, in order of first appearance.
func extractURLs(text string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, u := range urlRe.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}

// verifyCitations rejects a review citing any URL outside the
// allowlist. A leak suppresses the review; it never touches the
// extraction or the score.
func verifyCitations(cited, allowed []string) error {
	for _, u := range cited {
		if !slices.Contains(allowed, u) {
			return fmt.Errorf("CITATION LEAK: LLM cited disallowed URL: %s", u)
		}
	}
	return nil
}
