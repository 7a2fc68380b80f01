package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/lexicon"
	"github.com/codeforkjeff/museum-provenance/internal/model"
)

// Fragment is one provenance sentence or semicolon clause in record
// order. Direct marks a clause that followed a semicolon, meaning the
// object passed straight from the previous party.
type Fragment struct {
	Text   string
	Direct bool
}

var bracketedNoteRe = regexp.MustCompile(`\[(\d+)\]\s*([^\[]*)`)

// Segmenter splits a raw provenance record into ordered fragments and
// a footnote table.
type Segmenter struct {
	norm    *Normalizer
	divider string
}

func NewSegmenter(lex *lexicon.Lexicon) *Segmenter {
	divider := lex.FootnoteDivider
	if divider == "" {
		divider = model.DefaultFootnoteDivider
	}
	return &Segmenter{
		norm:    NewNormalizer(lex.Abbreviations),
		divider: divider,
	}
}

// Segment splits text into fragments and parses the trailing footnote
// block. The block starts at the configured divider, or failing that
// at " 1. "; sentence splitting never breaks on protected
// abbreviation periods.
func (s *Segmenter) Segment(text string) ([]Fragment, map[int]string) {
	text = collapseWhitespace(text)

	body := text
	block := ""
	if i := strings.Index(text, s.divider); i >= 0 {
		body, block = text[:i], text[i+len(s.divider):]
	} else if i := strings.Index(text, " 1. "); i >= 0 {
		body, block = text[:i], text[i:]
	}

	notes := map[int]string{}
	parseNotes(block, notes)
	return s.fragments(body), notes
}

func (s *Segmenter) fragments(body string) []Fragment {
	var out []Fragment
	for _, sentence := range strings.Split(s.norm.Protect(body), ".") {
		for j, clause := range strings.Split(sentence, ";") {
			text := strings.TrimSpace(s.norm.Restore(clause))
			if text == "" {
				continue
			}
			out = append(out, Fragment{Text: text, Direct: j > 0})
		}
	}
	return out
}

// parseNotes fills notes from a footnote block, bracketed ("[1] text")
// or enumerated ("1. text"). Enumerated parsing only splits on the
// next sequential index, so a stray number inside a note does not
// start a new one.
func parseNotes(block string, notes map[int]string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	if strings.HasPrefix(block, "[") {
		for _, m := range bracketedNoteRe.FindAllStringSubmatch(block, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				notes[n] = strings.TrimSpace(m[2])
			}
		}
		return
	}
	if !strings.HasPrefix(block, "1.") {
		notes[1] = block
		return
	}
	rest := strings.TrimSpace(block[len("1."):])
	for k := 1; ; k++ {
		marker := fmt.Sprintf(" %d. ", k+1)
		i := strings.Index(rest, marker)
		if i < 0 {
			notes[k] = strings.TrimSpace(rest)
			return
		}
		notes[k] = strings.TrimSpace(rest[:i])
		rest = rest[i+len(marker):]
	}
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
