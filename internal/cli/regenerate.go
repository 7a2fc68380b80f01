package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeforkjeff/museum-provenance/internal/model"
	"github.com/codeforkjeff/museum-provenance/internal/score"
)

var (
	regenRecordsOut string
	regenScore      bool
)

// regenerateCmd represents the regenerate command
var regenerateCmd = &cobra.Command{
	Use:   "regenerate <records.json>",
	Short: "Rebuild provenance prose from saved period records",
	Long: `Regenerate reads a saved period-record list and rebuilds the
provenance prose without rerunning text extraction.

The input is either a bare JSON array of period records or a full
report, whose "periods" array is used. Footnote markers are renumbered
densely by first appearance and the note block is appended after the
divider. Malformed records are fatal.

Example:
  museum-provenance regenerate records.json
  museum-provenance regenerate report.json --score
  museum-provenance regenerate records.json --records normalized.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRegenerate,
}

func init() {
	rootCmd.AddCommand(regenerateCmd)

	regenerateCmd.Flags().StringVar(&regenRecordsOut, "records", "", "write the normalized period records to this path")
	regenerateCmd.Flags().BoolVar(&regenScore, "score", false, "also print the completeness index for the loaded records")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	tl, err := loadTimeline(data)
	if err != nil {
		return err
	}

	fmt.Println(tl.Provenance())

	if regenScore {
		periods := tl.Periods()
		stats := model.ExtractionStats{
			Fragments: tl.Len(),
			Periods:   tl.Len(),
			Footnotes: countFootnotes(periods),
		}
		result := score.NewScorer().Calculate(periods, stats)
		fmt.Fprintf(os.Stderr, "\nCompleteness: %d/100 (%s confidence)\n", result.Index, result.Confidence)
	}

	if regenRecordsOut != "" {
		f, err := os.Create(regenRecordsOut)
		if err != nil {
			return fmt.Errorf("create records file: %w", err)
		}
		defer f.Close()
		if err := model.SaveRecords(f, tl); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote records: %s\n", regenRecordsOut)
		}
	}

	return nil
}

// loadTimeline accepts either a bare record array or a full report
func loadTimeline(data []byte) (*model.Timeline, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var report model.Report
		if err := json.Unmarshal(trimmed, &report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		recordData, err := json.Marshal(report.Periods)
		if err != nil {
			return nil, fmt.Errorf("encode period records: %w", err)
		}
		return model.LoadRecords(bytes.NewReader(recordData))
	}
	return model.LoadRecords(bytes.NewReader(trimmed))
}

// countFootnotes counts the distinct note indexes carrying text
func countFootnotes(periods []*model.Period) int {
	seen := map[int]bool{}
	for _, p := range periods {
		for _, n := range p.Notes {
			if n.Index > 0 && n.Text != "" {
				seen[n.Index] = true
			}
		}
	}
	return len(seen)
}
