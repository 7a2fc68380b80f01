package cli

import (
	"testing"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Still Life with Flowers", "Still-Life-with-Flowers"},
		{"Portrait: A Study", "Portrait_-A-Study"},
		{"a/b\\c", "a_b_c"},
		{"", "record"},
		{"...", "record"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	if got := sanitizeFilename(string(long)); len(got) != 100 {
		t.Errorf("Expected 100 characters, got %d", len(got))
	}
}

func TestLoadTimeline_RecordArray(t *testing.T) {
	data := []byte(`[{"certain":true,"parsable":true,"party":{"name":"John Doe"},"direct_transfer":false,"span":{}}]`)

	tl, err := loadTimeline(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tl.Len() != 1 || tl.At(0).Party.Name != "John Doe" {
		t.Errorf("Expected one period for John Doe, got %d", tl.Len())
	}
}

func TestLoadTimeline_FullReport(t *testing.T) {
	data := []byte(`{"subject":"Test","record":"x","provenance":"x","periods":[{"certain":true,"parsable":true,"party":{"name":"Jane Roe"},"direct_transfer":false,"span":{}}],"stats":{"fragments":1,"periods":1,"footnotes":0},"score":{"index":50,"confidence":"low","conflict":false,"signals":null},"principles":{"non_normative":true,"transparent":true,"symmetric":true},"retrieved_at":"2024-03-01T12:00:00Z"}`)

	tl, err := loadTimeline(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tl.Len() != 1 || tl.At(0).Party.Name != "Jane Roe" {
		t.Errorf("Expected the report's period list loaded, got %d", tl.Len())
	}
}

func TestLoadTimeline_Malformed(t *testing.T) {
	if _, err := loadTimeline([]byte(`[{"no_such_field":1}]`)); err == nil {
		t.Fatal("Expected error for unknown fields")
	}
	if _, err := loadTimeline([]byte(`not json`)); err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
}

func TestCountFootnotes(t *testing.T) {
	periods := []*model.Period{
		{Notes: []model.Note{{Index: 1, Text: "Receipt."}, {Index: 2, Text: "Letter."}}},
		{Notes: []model.Note{{Index: 1, Text: "Receipt."}, {Index: 3, Text: ""}}},
	}
	if got := countFootnotes(periods); got != 2 {
		t.Errorf("Expected 2 distinct footnotes with text, got %d", got)
	}
}
