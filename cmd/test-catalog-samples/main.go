// Test program to run the extractor over catalog-style provenance records.
// This shows segmentation, date resolution and completeness scoring working
// on the kinds of records museums actually publish.
package main

import (
	"fmt"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/extract"
	"github.com/codeforkjeff/museum-provenance/internal/lexicon"
	"github.com/codeforkjeff/museum-provenance/internal/model"
	"github.com/codeforkjeff/museum-provenance/internal/score"
)

type sample struct {
	subject string
	record  string
}

var samples = []sample{
	{
		subject: "At the Moulin Rouge",
		record: "Galerie Durand-Ruel, Paris, 1891 [1]; purchased by Mrs. Potter Palmer, " +
			"Chicago, 1892; by descent to her son, Honoré Palmer, 1918; given to the " +
			"Art Institute of Chicago, 1922. NOTES: 1. Stock no. 1142.",
	},
	{
		subject: "Seated Woman in Blue",
		record: "Paul Rosenberg, Paris, by 1932. Private collection, Switzerland, " +
			"by 1948. Purchased by the museum, 1970.",
	},
	{
		subject: "Portrait of a Cardinal",
		record: "Possibly commissioned by a member of the Barberini family, Rome [1]. " +
			"Anonymous sale, Christie's, London, July 7, 1978, lot 42. " +
			"NOTES: 1. The attribution is traditional.",
	},
	{
		subject: "Fragment (stress test)",
		record:  "???; John Doe (1900-1950), New York, 1955; zzz unintelligible zzz.",
	},
}

func main() {
	fmt.Println("=== Catalog Record Extraction Test ===")
	fmt.Println()

	ext := extract.New(lexicon.Default())
	scorer := score.NewScorer()

	for _, s := range samples {
		fmt.Printf("Record: %s\n", s.subject)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("  Input: %s\n\n", s.record)

		tl, stats := ext.Extract(s.record)
		periods := tl.Periods()

		for i, p := range periods {
			name := p.Party.Name
			if name == "" {
				name = "(anonymous)"
			}
			marker := "✓"
			if !p.Parsable {
				marker = "⚠️ "
			}
			fmt.Printf("  %s Period %d: %s", marker, i+1, name)
			if p.Location != "" {
				fmt.Printf(", %s", p.Location)
			}
			if phrase := p.Span.Phrase(); phrase != "" {
				fmt.Printf(", %s", phrase)
			}
			if !p.Certain {
				fmt.Printf(" (uncertain)")
			}
			fmt.Println()
			if p.AcquisitionMethod != "" {
				fmt.Printf("       acquired: %s\n", p.AcquisitionMethod)
			}
			for _, n := range p.Notes {
				fmt.Printf("       note [%d]: %s\n", n.Index, n.Text)
			}
		}

		fmt.Printf("\n  Stats: %d fragments, %d periods, %d unparsable, %d footnotes",
			stats.Fragments, stats.Periods, stats.Unparsable, stats.Footnotes)
		if stats.DroppedPeriods > 0 {
			fmt.Printf(", %d dropped", stats.DroppedPeriods)
		}
		fmt.Println()

		result := scorer.Calculate(periods, stats)
		fmt.Printf("  Completeness: %d/100 (%s confidence)\n", result.Index, result.Confidence)
		for _, sig := range result.Signals {
			if sig.Severity == model.SeverityInfo {
				continue
			}
			fmt.Printf("    ⚠️  [%s] %s\n", sig.Type, sig.Description)
		}

		fmt.Printf("\n  Regenerated: %s\n", tl.Provenance())
		fmt.Println()
	}

	fmt.Println("=== Test Complete ===")
	fmt.Println()
	fmt.Println("Note: the completeness index measures documentation coverage.")
	fmt.Println("It never asserts authenticity, attribution, or legal title.")
}
