package extract

import (
	"testing"

	"github.com/codeforkjeff/museum-provenance/internal/lexicon"
	"github.com/codeforkjeff/museum-provenance/internal/model"
)

func TestFieldExtractor_FullFragment(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	notes := map[int]string{1: "Invoice in the archive."}

	p, dropped := fe.Extract(Fragment{Text: "Possibly purchased by John Doe (1900-1950), New York, 1955 until 1960, no. 44 [1]"}, notes)
	if dropped != 0 {
		t.Fatalf("Expected no dropped dates, got %d", dropped)
	}
	if p.Certain {
		t.Fatalf("Expected the qualifier to mark the period uncertain")
	}
	if !p.Parsable {
		t.Fatalf("Expected a parsable period")
	}
	if p.AcquisitionMethod != "purchase" {
		t.Fatalf("Expected purchase, got %q", p.AcquisitionMethod)
	}
	if p.Party.Name != "John Doe" {
		t.Fatalf("Expected party John Doe, got %q", p.Party.Name)
	}
	if p.Party.Birth == nil || p.Party.Birth.Year != 1900 {
		t.Fatalf("Expected birth 1900, got %+v", p.Party.Birth)
	}
	if p.Party.Death == nil || p.Party.Death.Year != 1950 {
		t.Fatalf("Expected death 1950, got %+v", p.Party.Death)
	}
	if p.Location != "New York" {
		t.Fatalf("Expected location New York, got %q", p.Location)
	}
	if p.StockNumber != "no. 44" {
		t.Fatalf("Expected stock number no. 44, got %q", p.StockNumber)
	}
	if p.Span.BeginEarliest == nil || p.Span.BeginEarliest.Year != 1955 {
		t.Fatalf("Expected begin 1955, got %+v", p.Span.BeginEarliest)
	}
	if p.Span.EndLatest == nil || p.Span.EndLatest.Year != 1960 {
		t.Fatalf("Expected end 1960, got %+v", p.Span.EndLatest)
	}
	if len(p.Notes) != 1 || p.Notes[0].Index != 1 || p.Notes[0].Text != "Invoice in the archive." {
		t.Fatalf("Expected the footnote resolved, got %+v", p.Notes)
	}
}

func TestFieldExtractor_LifeDates(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	tests := []struct {
		desc  string
		text  string
		birth *model.Date
		death *model.Date
	}{
		{"paired years", "John Doe (1900-1950)", year(1900), year(1950)},
		{"explicit markers", "John Doe (b. 1900-d. 1950)", year(1900), year(1950)},
		{"death only month precision", "Jane Roe (d. March 1844), London", nil, func() *model.Date {
			d := model.MonthDate(1844, 3)
			return &d
		}()},
		{"birth only", "Jane Roe (b. 1900)", year(1900), nil},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p, _ := fe.Extract(Fragment{Text: tt.text}, nil)
			if (p.Party.Birth == nil) != (tt.birth == nil) {
				t.Fatalf("Expected birth %+v, got %+v", tt.birth, p.Party.Birth)
			}
			if tt.birth != nil && !p.Party.Birth.Equal(*tt.birth) {
				t.Fatalf("Expected birth %+v, got %+v", tt.birth, p.Party.Birth)
			}
			if (p.Party.Death == nil) != (tt.death == nil) {
				t.Fatalf("Expected death %+v, got %+v", tt.death, p.Party.Death)
			}
			if tt.death != nil && !p.Party.Death.Equal(*tt.death) {
				t.Fatalf("Expected death %+v, got %+v", tt.death, p.Party.Death)
			}
			if p.Party.Name != "John Doe" && p.Party.Name != "Jane Roe" {
				t.Fatalf("Expected the parenthetical stripped from the name, got %q", p.Party.Name)
			}
		})
	}
}

func TestFieldExtractor_UncertainLifeDates(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	p, _ := fe.Extract(Fragment{Text: "John Doe (1900?-1950)"}, nil)
	if p.Party.Birth == nil || p.Party.Birth.Certain {
		t.Fatalf("Expected uncertain birth, got %+v", p.Party.Birth)
	}
	if p.Party.Death == nil || !p.Party.Death.Certain {
		t.Fatalf("Expected certain death, got %+v", p.Party.Death)
	}
}

func TestFieldExtractor_AcquisitionStripped(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	p, _ := fe.Extract(Fragment{Text: "given to the museum in 1955"}, nil)
	if p.AcquisitionMethod != "gift" {
		t.Fatalf("Expected gift, got %q", p.AcquisitionMethod)
	}
	if p.Party.Name != "the museum" {
		t.Fatalf("Expected party the museum, got %q", p.Party.Name)
	}
	if p.Span.BeginEarliest == nil || p.Span.BeginEarliest.Year != 1955 {
		t.Fatalf("Expected begin 1955, got %+v", p.Span.BeginEarliest)
	}
}

func TestFieldExtractor_NameExtenders(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	p, _ := fe.Extract(Fragment{Text: "John Doe, Jr., Paris, 1950"}, nil)
	if p.Party.Name != "John Doe, Jr." {
		t.Fatalf("Expected the suffix kept in the name, got %q", p.Party.Name)
	}
	if p.Location != "Paris" {
		t.Fatalf("Expected location Paris, got %q", p.Location)
	}
}

func TestFieldExtractor_LotNumber(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	p, _ := fe.Extract(Fragment{Text: "sold Christie's, London, July 14, 1950, lot 55"}, nil)
	if p.AcquisitionMethod != "sale" {
		t.Fatalf("Expected sale, got %q", p.AcquisitionMethod)
	}
	if p.StockNumber != "lot 55" {
		t.Fatalf("Expected lot 55, got %q", p.StockNumber)
	}
	d := p.Span.BeginEarliest
	if d == nil || d.Precision != model.PrecisionDay || d.Day != 14 {
		t.Fatalf("Expected the sale day resolved, got %+v", d)
	}
	if p.Location != "London" {
		t.Fatalf("Expected location London, got %q", p.Location)
	}
}

func TestFieldExtractor_Unparsable(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	p, dropped := fe.Extract(Fragment{Text: "Anonymous dealer, in the 120s bc"}, nil)
	if p.Parsable {
		t.Fatalf("Expected the period marked not parsable")
	}
	if dropped != 1 {
		t.Fatalf("Expected one dropped date, got %d", dropped)
	}
	if p.Party.Name != "Anonymous dealer" {
		t.Fatalf("Expected the name preserved, got %q", p.Party.Name)
	}
}

func TestFieldExtractor_DanglingNote(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	p, _ := fe.Extract(Fragment{Text: "Smith [2]"}, map[int]string{})
	if len(p.Notes) != 1 || p.Notes[0].Index != 2 || p.Notes[0].Text != "" {
		t.Fatalf("Expected a dangling note reference, got %+v", p.Notes)
	}
}

func TestFieldExtractor_SeeNoteReference(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	p, _ := fe.Extract(Fragment{Text: "Smith [see note 3]"}, map[int]string{3: "The letter."})
	if len(p.Notes) != 1 || p.Notes[0].Index != 3 || p.Notes[0].Text != "The letter." {
		t.Fatalf("Expected the note reference resolved, got %+v", p.Notes)
	}
	if p.Party.Name != "Smith" {
		t.Fatalf("Expected the marker stripped, got %q", p.Party.Name)
	}
}

func TestFieldExtractor_OriginalTextKept(t *testing.T) {
	fe := NewFieldExtractor(lexicon.Default())
	text := "Possibly John Doe, 1950"
	p, _ := fe.Extract(Fragment{Text: text}, nil)
	if p.OriginalText != text {
		t.Fatalf("Expected the fragment preserved, got %q", p.OriginalText)
	}
}
