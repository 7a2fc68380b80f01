package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeforkjeff/museum-provenance/internal/model"
	"github.com/codeforkjeff/museum-provenance/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	outCSV       string
	subjectFlag  string
	lexiconPath  string
	noteDivider  string
	parseTimeout time.Duration
	noCache      bool
	noFooter     bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <record-file>",
	Short: "Parse a provenance record into a structured timeline report",
	Long: `Parse reads one free-text provenance record and produces a report:
- Segment the record into ownership periods
- Extract parties, places, acquisition methods, dates, and footnotes
- Link periods into an ordered custody timeline
- Regenerate the record prose with densely renumbered footnotes
- Score documentation completeness with transparent signals

Use "-" to read the record from stdin.

Example:
  museum-provenance parse record.txt
  museum-provenance parse record.txt --json report.json --md report.md
  museum-provenance parse - --subject "Still Life with Flowers" < record.txt
  museum-provenance parse record.txt --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	// Output flags
	parseCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (\"-\" for stdout)")
	parseCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	parseCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path, one row per period (optional)")

	// Extraction flags
	parseCmd.Flags().StringVar(&subjectFlag, "subject", "", "record subject (default: derived from the file name)")
	parseCmd.Flags().StringVar(&lexiconPath, "lexicon", "", "YAML lexicon overlay (abbreviations, acquisition forms, ...)")
	parseCmd.Flags().StringVar(&noteDivider, "divider", "", "footnote divider literal (default: NOTES:)")
	parseCmd.Flags().DurationVar(&parseTimeout, "timeout", 30*time.Second, "overall parse timeout")
	parseCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the extraction cache")
	parseCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	parseCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the LLM review of the finished report")
	parseCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	parseCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runParse(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
	defer cancel()

	// Build configuration from flags
	cfg := loadConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	if lexiconPath != "" {
		cfg.Extract.LexiconPath = lexiconPath
	}
	if noteDivider != "" {
		cfg.Extract.FootnoteDivider = noteDivider
	}

	if llmEnabled {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	p, err := pipeline.New(cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	report, err := parseOne(ctx, p, source)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	if subjectFlag != "" {
		report.Subject = subjectFlag
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d custody periods\n", report.Stats.Periods)
		fmt.Fprintf(os.Stderr, "✓ Completeness index: %d/100\n", report.Score.Index)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM review using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, outCSV, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// parseOne routes a record through the pipeline: stdin text, a record
// file, or a collection URL.
func parseOne(ctx context.Context, p *pipeline.Pipeline, source string) (*model.Report, error) {
	if source != "-" {
		return p.ParseSource(ctx, source)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	subject := subjectFlag
	if subject == "" {
		subject = "Untitled Record"
	}
	return p.ParseText(ctx, subject, "stdin", string(data))
}
