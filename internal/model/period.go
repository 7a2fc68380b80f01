package model

import (
	"regexp"
	"strconv"
	"strings"
)

// Note is one footnote attached to a period. Index is the source
// marker number when the note came from a numbered reference; Text is
// empty for a dangling reference whose note body never appeared.
type Note struct {
	Index int    `json:"index,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Party is the owner or custodian named by a period.
type Party struct {
	Name  string `json:"name"`
	Birth *Date  `json:"birth,omitempty"`
	Death *Date  `json:"death,omitempty"`
}

// TimeSpan bounds a period of custody with up to four dates. The
// period began no earlier than BeginEarliest and no later than
// BeginLatest, and ended no earlier than EndEarliest and no later than
// EndLatest. Any side may be open.
type TimeSpan struct {
	BeginEarliest *Date `json:"begin_earliest,omitempty"`
	BeginLatest   *Date `json:"begin_latest,omitempty"`
	EndEarliest   *Date `json:"end_earliest,omitempty"`
	EndLatest     *Date `json:"end_latest,omitempty"`
}

// IsZero reports whether no bound is set.
func (s TimeSpan) IsZero() bool {
	return s.BeginEarliest == nil && s.BeginLatest == nil && s.EndEarliest == nil && s.EndLatest == nil
}

// Phrase renders the span as catalog prose: "1920 until 1935",
// "by 1950", "between 1920 and 1925", "until March 1940".
func (s TimeSpan) Phrase() string {
	begin := sidePhrase(s.BeginEarliest, s.BeginLatest, "after", "by")
	end := sidePhrase(s.EndEarliest, s.EndLatest, "", "before")
	switch {
	case begin != "" && end != "":
		return begin + " until " + end
	case begin != "":
		return begin
	case end != "":
		if strings.HasPrefix(end, "before ") {
			return end
		}
		return "until " + end
	}
	return ""
}

// sidePhrase renders one side of a span. A single earliest bound uses
// openEarly ("after 1920"), a single latest bound uses openLate
// ("by 1920"), two distinct bounds become "between X and Y".
func sidePhrase(earliest, latest *Date, openEarly, openLate string) string {
	switch {
	case earliest != nil && latest != nil:
		if earliest.Equal(*latest) && earliest.Certain == latest.Certain {
			return earliest.String()
		}
		return "between " + earliest.String() + " and " + latest.String()
	case earliest != nil:
		if openEarly == "" {
			return earliest.String()
		}
		return openEarly + " " + earliest.String()
	case latest != nil:
		return openLate + " " + latest.String()
	}
	return ""
}

// Period is one custody interval in an object's history.
type Period struct {
	Certain           bool     `json:"certain"`
	OriginalText      string   `json:"original_text,omitempty"`
	AcquisitionMethod string   `json:"acquisition_method,omitempty"`
	Notes             []Note   `json:"notes,omitempty"`
	StockNumber       string   `json:"stock_number,omitempty"`
	Party             Party    `json:"party"`
	Location          string   `json:"location,omitempty"`
	DirectTransfer    bool     `json:"direct_transfer"`
	Parsable          bool     `json:"parsable"`
	Span              TimeSpan `json:"span"`
}

var footnoteMarkerRe = regexp.MustCompile(`(?i)\s*(?:\[\d+\]|\[[^\]]*note\s+\d+\])`)

// Fragment returns the period's prose form without footnote markers or
// trailing punctuation. Periods built from parsed text return that
// text; periods built programmatically compose a fragment from their
// fields, in the order field extraction undoes.
func (p *Period) Fragment() string {
	if p.OriginalText != "" {
		text := footnoteMarkerRe.ReplaceAllString(p.OriginalText, "")
		text = strings.TrimSpace(text)
		text = strings.TrimRight(text, ".;")
		return strings.TrimSpace(text)
	}
	return p.compose()
}

func (p *Period) compose() string {
	var b strings.Builder
	b.WriteString(p.Party.Name)
	p.writeLifeDates(&b)
	if p.Location != "" {
		b.WriteString(", ")
		b.WriteString(p.Location)
	}
	if phrase := p.Span.Phrase(); phrase != "" {
		b.WriteString(", ")
		b.WriteString(phrase)
	}
	if p.AcquisitionMethod != "" {
		b.WriteString(", ")
		b.WriteString(p.AcquisitionMethod)
	}
	if p.StockNumber != "" {
		b.WriteString(", ")
		b.WriteString(p.StockNumber)
	}
	text := b.String()
	if !p.Certain {
		text = "Possibly " + text
	}
	return text
}

// writeLifeDates appends the party's life dates. Two year-precision
// dates collapse to the usual "(1900-1950)" form; anything else is
// written as separate birth and death parentheticals so each can be
// parsed back on its own.
func (p *Period) writeLifeDates(b *strings.Builder) {
	birth, death := p.Party.Birth, p.Party.Death
	if birth == nil && death == nil {
		return
	}
	if birth != nil && death != nil &&
		birth.Precision == PrecisionYear && death.Precision == PrecisionYear &&
		birth.Year > 0 && death.Year > 0 {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(birth.Year))
		if !birth.Certain {
			b.WriteString("?")
		}
		b.WriteString("-")
		b.WriteString(strconv.Itoa(death.Year))
		if !death.Certain {
			b.WriteString("?")
		}
		b.WriteString(")")
		return
	}
	if birth != nil {
		b.WriteString(" (b. ")
		b.WriteString(birth.String())
		b.WriteString(")")
	}
	if death != nil {
		b.WriteString(" (d. ")
		b.WriteString(death.String())
		b.WriteString(")")
	}
}
