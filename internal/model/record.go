package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON encodes the timeline as its ordered period list.
func (t *Timeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Periods())
}

// UnmarshalJSON rebuilds a timeline from an ordered period list.
// Unknown fields and shape mismatches are errors surfaced to the
// caller: there is no text fallback for a structured record set.
func (t *Timeline) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var periods []*Period
	if err := dec.Decode(&periods); err != nil {
		return fmt.Errorf("decoding period records: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("decoding period records: trailing data after record list")
	}
	*t = *NewTimeline()
	for _, p := range periods {
		if p == nil {
			return fmt.Errorf("decoding period records: null record")
		}
		t.push(p)
	}
	return nil
}

// LoadRecords rebuilds a timeline from a JSON record stream, without
// running the text pipeline.
func LoadRecords(r io.Reader) (*Timeline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	t := NewTimeline()
	if err := t.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return t, nil
}

// SaveRecords writes the timeline's ordered period list as indented
// JSON, the same shape LoadRecords reads back.
func SaveRecords(w io.Writer, t *Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Periods()); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}
