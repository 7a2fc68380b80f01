package extract

import (
	"github.com/codeforkjeff/museum-provenance/internal/lexicon"
	"github.com/codeforkjeff/museum-provenance/internal/model"
)

// Extractor parses raw provenance records into ordered timelines.
type Extractor struct {
	segmenter *Segmenter
	fields    *FieldExtractor
}

func New(lex *lexicon.Lexicon) *Extractor {
	return &Extractor{
		segmenter: NewSegmenter(lex),
		fields:    NewFieldExtractor(lex),
	}
}

// Extract segments text, builds a period per fragment and inserts
// them in record order. A fragment that followed a semicolon marks
// its predecessor as a direct transfer. Periods whose insertion the
// timeline rejects are counted as dropped rather than lost silently.
func (e *Extractor) Extract(text string) (*model.Timeline, model.ExtractionStats) {
	fragments, notes := e.segmenter.Segment(text)

	tl := model.NewTimeline()
	stats := model.ExtractionStats{
		Fragments: len(fragments),
		Footnotes: len(notes),
	}

	dangling := map[int]bool{}
	for _, frag := range fragments {
		p, dropped := e.fields.Extract(frag, notes)
		stats.DroppedDates += dropped
		if !p.Parsable {
			stats.Unparsable++
		}

		var err error
		if frag.Direct {
			err = tl.InsertDirect(p)
		} else {
			err = tl.Insert(p)
		}
		if err != nil {
			stats.DroppedPeriods++
			continue
		}
		for _, n := range p.Notes {
			if n.Index > 0 && n.Text == "" {
				dangling[n.Index] = true
			}
		}
	}

	stats.Periods = tl.Len()
	stats.DanglingNotes = len(dangling)
	return tl, stats
}
