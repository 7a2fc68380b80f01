package extract

import (
	"testing"

	"github.com/codeforkjeff/museum-provenance/internal/lexicon"
)

func TestSegmenter_SentencesAndClauses(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	frags, notes := s.Segment("Smith; then Jones. Museum purchase.")

	if len(notes) != 0 {
		t.Fatalf("Expected no footnotes, got %d", len(notes))
	}
	want := []Fragment{
		{Text: "Smith", Direct: false},
		{Text: "then Jones", Direct: true},
		{Text: "Museum purchase", Direct: false},
	}
	if len(frags) != len(want) {
		t.Fatalf("Expected %d fragments, got %d: %+v", len(want), len(frags), frags)
	}
	for i, w := range want {
		if frags[i] != w {
			t.Fatalf("Expected fragment %d to be %+v, got %+v", i, w, frags[i])
		}
	}
}

func TestSegmenter_AbbreviationsSurviveSplit(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	frags, _ := s.Segment("Sold by J. Smith, ca. 1900. Private collection, Paris.")

	if len(frags) != 2 {
		t.Fatalf("Expected two fragments, got %d: %+v", len(frags), frags)
	}
	if frags[0].Text != "Sold by J. Smith, ca. 1900" {
		t.Fatalf("Expected the abbreviation periods restored, got %q", frags[0].Text)
	}
	if frags[1].Text != "Private collection, Paris" {
		t.Fatalf("Expected the second sentence intact, got %q", frags[1].Text)
	}
}

func TestSegmenter_EnumeratedNotes(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	frags, notes := s.Segment("Alpha [1]. Beta [2]. NOTES: 1. First note. 2. Second note.")

	if len(frags) != 2 {
		t.Fatalf("Expected two fragments, got %+v", frags)
	}
	if notes[1] != "First note." || notes[2] != "Second note." {
		t.Fatalf("Expected both notes parsed, got %+v", notes)
	}
}

func TestSegmenter_EnumeratedNotesSequentialLookahead(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	_, notes := s.Segment("Alpha [1]. NOTES: 1. Sold for 300. 5. francs at auction. 2. The receipt.")

	if len(notes) != 2 {
		t.Fatalf("Expected two notes, got %+v", notes)
	}
	if notes[1] != "Sold for 300. 5. francs at auction." {
		t.Fatalf("Expected the stray number kept inside note one, got %q", notes[1])
	}
	if notes[2] != "The receipt." {
		t.Fatalf("Expected note two found after the stray number, got %q", notes[2])
	}
}

func TestSegmenter_BracketedNotes(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	_, notes := s.Segment("Alpha [2]. NOTES: [1] The invoice. [2] The catalog entry.")

	if notes[1] != "The invoice." || notes[2] != "The catalog entry." {
		t.Fatalf("Expected bracketed notes parsed, got %+v", notes)
	}
}

func TestSegmenter_FallbackDivider(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	frags, notes := s.Segment("Alpha [1]. 1. The only note.")

	if len(frags) != 1 || frags[0].Text != "Alpha [1]" {
		t.Fatalf("Expected the body split before the bare list, got %+v", frags)
	}
	if notes[1] != "The only note." {
		t.Fatalf("Expected the note found without a divider, got %+v", notes)
	}
}

func TestSegmenter_CollapsesNewlines(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	frags, _ := s.Segment("Alpha,\n1900.\r\nBeta, 1910.")

	if len(frags) != 2 {
		t.Fatalf("Expected two fragments, got %+v", frags)
	}
	if frags[0].Text != "Alpha, 1900" {
		t.Fatalf("Expected newlines collapsed, got %q", frags[0].Text)
	}
}

func TestSegmenter_EmptyInput(t *testing.T) {
	s := NewSegmenter(lexicon.Default())
	frags, notes := s.Segment("")
	if len(frags) != 0 || len(notes) != 0 {
		t.Fatalf("Expected nothing, got %+v %+v", frags, notes)
	}
}
