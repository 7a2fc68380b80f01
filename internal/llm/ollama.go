package llm

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codeforkjeff/museum-provenance/internal/util"
)

// OllamaProvider reviews reports through a local Ollama instance.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`

	// Token counts only appear on the final, done response.
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaProvider builds a provider backed by a local or remote
// Ollama server. No API key is involved.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := cmp.Or(config.BaseURL, "http://localhost:11434")

	// Local models answer slowly, so the default timeout is generous.
	timeout := time.Duration(cmp.Or(config.Timeout, 60)) * time.Second

	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
		config: config,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks whether an Ollama server answers on the base URL.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ollama availability check: %v\n", err)
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ollama availability check: cannot reach %s: %v\n", p.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "ollama availability check: HTTP %d from %s\n", resp.StatusCode, p.baseURL)
		return false
	}
	return true
}

// Summarize generates the curator review and enforces the citation
// allowlist on the result.
func (p *OllamaProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.SourceURLs, req.PartyNames)
	}
	model := cmp.Or(req.Model, p.config.Model)
	if model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}
	maxTokens := cmp.Or(req.MaxTokens, p.config.MaxTokens, 1000)

	var resp ollamaResponse
	err := postJSON(ctx, p.httpClient, p.baseURL+"/api/generate", nil, ollamaRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		System: reviewSystemPrompt,
		Options: ollamaOptions{
			Temperature: reviewTemperature,
			NumPredict:  maxTokens,
		},
	}, &resp, func(body []byte) string {
		var apiErr ollamaError
		if json.Unmarshal(body, &apiErr) != nil {
			return ""
		}
		return apiErr.Error
	})
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	summary := strings.TrimSpace(resp.Response)
	cited := extractURLs(summary)
	if p.config.StrictEvidence {
		if err := verifyCitations(cited, req.SourceURLs); err != nil {
			return nil, err
		}
	}

	// Some models report zero counts, so fall back to a rough
	// 4-characters-per-token estimate.
	tokensUsed := resp.PromptEvalCount + resp.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(prompt) + len(summary)) / 4
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedURLs:  cited,
		Model:      resp.Model,
		TokensUsed: tokensUsed,
	}, nil
}
