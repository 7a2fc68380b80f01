package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

// Parser turns one record source (file path or URL) into a report
type Parser interface {
	ParseSource(ctx context.Context, source string) (*model.Report, error)
}

// ParseJob analyzes a single provenance record source
type ParseJob struct {
	Index   int
	Source  string
	Parser  Parser
	Limiter *Limiter
}

// Execute executes the parse job. Remote sources clear the per-domain
// rate limiter first.
func (j *ParseJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil && isRemote(j.Source) {
		if err := j.Limiter.Wait(ctx, j.Source); err != nil {
			return &ParseResult{Index: j.Index, Source: j.Source, Error: err}
		}
	}

	report, err := j.Parser.ParseSource(ctx, j.Source)
	if err != nil {
		return &ParseResult{Index: j.Index, Source: j.Source, Error: err}
	}
	return &ParseResult{Index: j.Index, Source: j.Source, Report: report}
}

// ParseResult represents the result of one record analysis
type ParseResult struct {
	Index  int
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the parse result
func (r *ParseResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple record sources concurrently
type BatchProcessor struct {
	parser      Parser
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. A positive
// requestsPerSecond installs a per-domain rate limit for remote
// sources.
func NewBatchProcessor(parser Parser, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}

	return &BatchProcessor{
		parser:      parser,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessSources analyzes record sources concurrently. Results come
// back in input order regardless of completion order.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*ParseResult {
	if len(sources) == 0 {
		return []*ParseResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit from a goroutine so batches larger than the queue buffer
	// keep flowing while results drain below.
	go func() {
		for i, source := range sources {
			pool.Submit(&ParseJob{
				Index:   i,
				Source:  source,
				Parser:  b.parser,
				Limiter: b.limiter,
			})
		}
		pool.Close()
	}()

	ordered := make([]*ParseResult, len(sources))
	for result := range pool.Results() {
		r := result.(*ParseResult)
		ordered[r.Index] = r
	}

	return ordered
}

// ProcessFile reads record sources from a list file and analyzes them
// concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ParseResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads record sources from a file, one per line.
// Blank lines and # comments are skipped and duplicates collapse.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// isRemote reports whether the source is fetched over HTTP
func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
