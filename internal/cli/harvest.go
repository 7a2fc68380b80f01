package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeforkjeff/museum-provenance/internal/pipeline"
)

var (
	harvestTimeout time.Duration
	userAgent      string
	maxBytes       int64
	noRobots       bool
	insecureTLS    bool
	httpProxy      string
	httpsProxy     string
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest <url>",
	Short: "Fetch a collection page and parse its provenance section",
	Long: `Harvest fetches a museum collection page, locates the provenance
section in the HTML, and runs the extraction pipeline over it.

The fetch respects robots.txt, follows a capped number of redirects,
and retries transient failures. Harvested reports are cached.

Example:
  museum-provenance harvest https://collection.example.org/objects/42
  museum-provenance harvest https://collection.example.org/objects/42 --json report.json --md report.md
  museum-provenance harvest https://collection.example.org/objects/42 --no-robots --timeout 1m`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	// Output flags
	harvestCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (\"-\" for stdout)")
	harvestCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	harvestCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path, one row per period (optional)")

	// HTTP flags
	harvestCmd.Flags().DurationVar(&harvestTimeout, "timeout", 2*time.Minute, "overall harvest timeout")
	harvestCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from configuration)")
	harvestCmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read (default from configuration)")
	harvestCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip the robots.txt check")
	harvestCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	harvestCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	harvestCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	harvestCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	harvestCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	harvestCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the LLM review of the finished report")
	harvestCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	harvestCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), harvestTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Harvesting: %s\n", url)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", harvestTimeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	// Build configuration from flags
	cfg := loadConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.RespectRobots = !noRobots
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
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

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Fetching page...\n")
	}

	report, err := p.HarvestURL(ctx, url)
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Located provenance section\n")
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
