package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTimeline_InsertOrder(t *testing.T) {
	tl := NewTimeline()
	a := certainPeriod("Alpha")
	b := certainPeriod("Beta")
	c := certainPeriod("Gamma")

	for _, p := range []*Period{a, b, c} {
		if err := tl.Insert(p); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	if tl.Len() != 3 {
		t.Fatalf("Expected 3 periods, got %d", tl.Len())
	}
	if tl.Earliest() != a {
		t.Error("Expected Alpha earliest")
	}
	if tl.Latest() != c {
		t.Error("Expected Gamma latest")
	}
	if tl.At(1) != b {
		t.Error("Expected Beta at index 1")
	}
	if tl.At(3) != nil {
		t.Error("Expected nil past the end")
	}

	order := tl.Periods()
	if len(order) != 3 || order[0] != a || order[1] != b || order[2] != c {
		t.Errorf("Expected insertion order preserved, got %v", names(order))
	}
}

func TestTimeline_InsertBeforeAfter(t *testing.T) {
	tl := NewTimeline()
	c := certainPeriod("Gamma")
	if err := tl.Insert(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	a := certainPeriod("Alpha")
	if err := tl.InsertBefore(c, a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tl.Earliest() != a {
		t.Error("Expected Alpha to become earliest")
	}

	b := certainPeriod("Beta")
	if err := tl.InsertAfter(a, b); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	order := names(tl.Periods())
	if order != "Alpha,Beta,Gamma" {
		t.Errorf("Expected Alpha,Beta,Gamma, got %s", order)
	}

	d := certainPeriod("Delta")
	if err := tl.InsertAfter(c, d); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tl.Latest() != d {
		t.Error("Expected Delta to become latest")
	}
}

func TestTimeline_InsertEarliest(t *testing.T) {
	tl := NewTimeline()
	b := certainPeriod("Beta")
	if err := tl.InsertEarliest(b); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	a := certainPeriod("Alpha")
	if err := tl.InsertEarliest(a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if names(tl.Periods()) != "Alpha,Beta" {
		t.Errorf("Expected Alpha,Beta, got %s", names(tl.Periods()))
	}
}

func TestTimeline_InsertDirect(t *testing.T) {
	tl := NewTimeline()
	smith := certainPeriod("Smith")
	jones := certainPeriod("Jones")

	if err := tl.Insert(smith); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := tl.InsertDirect(jones); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !smith.DirectTransfer {
		t.Error("Expected predecessor to be marked as direct transfer")
	}
	if jones.DirectTransfer {
		t.Error("Expected appended period not to be marked")
	}
}

func TestTimeline_InsertDirectlyAfter(t *testing.T) {
	tl := NewTimeline()
	a := certainPeriod("Alpha")
	b := certainPeriod("Beta")

	if err := tl.Insert(a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := tl.InsertDirectlyAfter(a, b); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The flag lands on the inserted period, not its predecessor.
	if a.DirectTransfer {
		t.Error("Expected anchor not to be marked")
	}
	if !b.DirectTransfer {
		t.Error("Expected inserted period to be marked as direct transfer")
	}
}

func TestTimeline_DateConflictRejected(t *testing.T) {
	tl := NewTimeline()
	begin1950 := YearDate(1950)
	anchor := certainPeriod("Anchor")
	anchor.Span = TimeSpan{BeginEarliest: &begin1950}
	if err := tl.Insert(anchor); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	begin1900 := YearDate(1900)
	node := certainPeriod("Node")
	node.Span = TimeSpan{BeginLatest: &begin1900}

	err := tl.InsertAfter(anchor, node)
	if err == nil {
		t.Fatal("Expected date conflict error")
	}
	if !strings.Contains(err.Error(), "date conflict") {
		t.Errorf("Expected date conflict error, got %v", err)
	}
	if tl.Len() != 1 {
		t.Errorf("Expected rejected period not to be linked, got %d periods", tl.Len())
	}

	// The mirrored check applies to InsertBefore.
	if err := tl.InsertBefore(anchor, node); err != nil {
		t.Fatalf("Expected earlier period to splice before, got %v", err)
	}
}

func TestTimeline_OverlappingDatesAccepted(t *testing.T) {
	tl := NewTimeline()
	century := CenturyDate(1800)
	anchor := certainPeriod("Anchor")
	anchor.Span = TimeSpan{BeginEarliest: &century}
	if err := tl.Insert(anchor); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 1850 falls inside the 19th century, so ordering is not provably
	// wrong and the insert goes through.
	y1850 := YearDate(1850)
	node := certainPeriod("Node")
	node.Span = TimeSpan{BeginLatest: &y1850}
	if err := tl.InsertAfter(anchor, node); err != nil {
		t.Fatalf("Expected overlapping dates to be accepted, got %v", err)
	}
}

func TestTimeline_InsertErrors(t *testing.T) {
	tl := NewTimeline()
	a := certainPeriod("Alpha")
	if err := tl.Insert(a); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	outside := certainPeriod("Outside")
	if err := tl.InsertAfter(outside, certainPeriod("Node")); err == nil {
		t.Error("Expected error for anchor not in timeline")
	}
	if err := tl.Insert(a); err == nil {
		t.Error("Expected error for period already in timeline")
	}
}

func TestTimeline_FootnoteRenumbering(t *testing.T) {
	tl := NewTimeline()
	periods := []*Period{
		certainPeriod("Alpha"),
		certainPeriod("Beta"),
		certainPeriod("Gamma"),
		certainPeriod("Delta"),
	}
	periods[0].Notes = []Note{{Index: 3, Text: "Sold at auction."}}
	periods[1].Notes = []Note{{Index: 1, Text: "Archival letter."}}
	periods[2].Notes = []Note{{Index: 1, Text: "Archival letter."}}
	periods[3].Notes = []Note{{Index: 2, Text: "Estate inventory."}}

	for _, p := range periods {
		if err := tl.Insert(p); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	expected := "Alpha [1]. Beta [2]. Gamma [2]. Delta [3]. " +
		"NOTES: 1. Sold at auction. 2. Archival letter. 3. Estate inventory."
	if got := tl.Provenance(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestTimeline_ProvenanceDirectTransfer(t *testing.T) {
	tl := NewTimeline()
	smith := certainPeriod("Smith")
	jones := certainPeriod("Jones")
	if err := tl.Insert(smith); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := tl.InsertDirect(jones); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := tl.Provenance(); got != "Smith; Jones." {
		t.Errorf("Expected 'Smith; Jones.', got %q", got)
	}
}

func TestTimeline_ProvenanceDanglingNote(t *testing.T) {
	tl := NewTimeline()
	p := certainPeriod("Alpha")
	p.Notes = []Note{{Index: 4}}
	if err := tl.Insert(p); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A dangling reference keeps its marker but contributes no block.
	if got := tl.Provenance(); got != "Alpha [1]." {
		t.Errorf("Expected 'Alpha [1].', got %q", got)
	}
}

func TestTimeline_ProvenanceEmpty(t *testing.T) {
	if got := NewTimeline().Provenance(); got != "" {
		t.Errorf("Expected empty provenance, got %q", got)
	}
}

func TestTimeline_ProvenanceWithCustomDivider(t *testing.T) {
	tl := NewTimeline()
	p := certainPeriod("Alpha")
	p.Notes = []Note{{Index: 1, Text: "Inventory card."}}
	if err := tl.Insert(p); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := tl.ProvenanceWith("Notes:")
	if got != "Alpha [1]. Notes: 1. Inventory card." {
		t.Errorf("Expected custom divider in output, got %q", got)
	}
}

func TestTimeline_JSONRoundTrip(t *testing.T) {
	tl := NewTimeline()
	begin := DecadeDate(1920)
	death := YearDate(1950)
	first := &Period{
		Certain:           true,
		Parsable:          true,
		Party:             Party{Name: "John Doe", Death: &death},
		Location:          "New York",
		AcquisitionMethod: "purchase",
		Notes:             []Note{{Index: 1, Text: "Gallery records."}},
		Span:              TimeSpan{BeginEarliest: &begin, BeginLatest: &begin},
	}
	second := &Period{
		Certain:  false,
		Parsable: true,
		Party:    Party{Name: "Estate of John Doe"},
	}
	if err := tl.Insert(first); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := tl.InsertDirect(second); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := json.Marshal(tl)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loaded, err := LoadRecords(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("Expected 2 periods, got %d", loaded.Len())
	}
	got := loaded.Periods()
	if got[0].Party.Name != "John Doe" || got[1].Party.Name != "Estate of John Doe" {
		t.Errorf("Expected period order preserved, got %s", names(got))
	}
	if !got[0].DirectTransfer {
		t.Error("Expected direct transfer flag preserved")
	}
	if got[0].Party.Death == nil || got[0].Party.Death.Year != 1950 {
		t.Error("Expected death date preserved")
	}
	if got[0].Span.BeginEarliest == nil || got[0].Span.BeginEarliest.Precision != PrecisionDecade {
		t.Error("Expected span precision preserved")
	}
	if got[1].Certain {
		t.Error("Expected uncertainty preserved")
	}
	if len(got[0].Notes) != 1 || got[0].Notes[0].Text != "Gallery records." {
		t.Error("Expected notes preserved")
	}
}

func TestLoadRecords_Malformed(t *testing.T) {
	tests := []struct {
		input string
		desc  string
	}{
		{input: `{"not":"a list"}`, desc: "object instead of list"},
		{input: `[{"party":{"name":"X"},"bogus_field":1}]`, desc: "unknown field"},
		{input: `[{"party":{"name":"X"}}] trailing`, desc: "trailing data"},
		{input: `[null]`, desc: "null record"},
		{input: `[{`, desc: "truncated input"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if _, err := LoadRecords(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error for malformed record input")
			}
		})
	}
}

func TestSaveRecords(t *testing.T) {
	tl := NewTimeline()
	if err := tl.Insert(certainPeriod("Alpha")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var buf bytes.Buffer
	if err := SaveRecords(&buf, tl); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loaded, err := LoadRecords(&buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loaded.Len() != 1 || loaded.Earliest().Party.Name != "Alpha" {
		t.Error("Expected saved records to load back")
	}
}

func names(periods []*Period) string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.Party.Name
	}
	return strings.Join(out, ",")
}
