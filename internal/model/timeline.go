package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFootnoteDivider separates provenance prose from its footnote
// block when no custom divider is configured.
const DefaultFootnoteDivider = "NOTES:"

const none = -1

// Timeline is an ordered sequence of custody periods. Periods live in
// an arena slice, with previous/next links kept as arena indices
// alongside it, so nodes never form reference cycles and a serialized
// timeline is just the ordered walk. The earliest node has no previous
// link and the latest has no next; every insertion keeps both
// directions consistent. Timelines only grow.
type Timeline struct {
	periods  []*Period
	prev     []int
	next     []int
	earliest int
	latest   int
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{earliest: none, latest: none}
}

// Len returns the number of periods.
func (t *Timeline) Len() int {
	return len(t.periods)
}

// Earliest returns the first period, or nil when the timeline is empty.
func (t *Timeline) Earliest() *Period {
	if t.earliest == none {
		return nil
	}
	return t.periods[t.earliest]
}

// Latest returns the last period, or nil when the timeline is empty.
func (t *Timeline) Latest() *Period {
	if t.latest == none {
		return nil
	}
	return t.periods[t.latest]
}

// At returns the i-th period counting forward from the earliest, or
// nil when i is out of range.
func (t *Timeline) At(i int) *Period {
	if i < 0 {
		return nil
	}
	idx := t.earliest
	for idx != none && i > 0 {
		idx = t.next[idx]
		i--
	}
	if idx == none {
		return nil
	}
	return t.periods[idx]
}

// Periods returns the periods in earliest-to-latest order. The slice
// is freshly allocated; the periods are shared.
func (t *Timeline) Periods() []*Period {
	out := make([]*Period, 0, len(t.periods))
	for idx := t.earliest; idx != none; idx = t.next[idx] {
		out = append(out, t.periods[idx])
	}
	return out
}

func (t *Timeline) indexOf(p *Period) int {
	for i, q := range t.periods {
		if q == p {
			return i
		}
	}
	return none
}

// arena adds p unlinked and returns its index.
func (t *Timeline) arena(p *Period) int {
	t.periods = append(t.periods, p)
	t.prev = append(t.prev, none)
	t.next = append(t.next, none)
	return len(t.periods) - 1
}

// push links p after the current latest with no ordering check. Used
// when rebuilding a timeline from an already-ordered record set.
func (t *Timeline) push(p *Period) {
	ni := t.arena(p)
	if t.latest == none {
		t.earliest, t.latest = ni, ni
		return
	}
	t.prev[ni] = t.latest
	t.next[t.latest] = ni
	t.latest = ni
}

// checkOrder rejects a splice only when the dates prove it wrong: the
// period meant to come second is known to begin entirely before the
// first period can have begun. Open or overlapping bounds pass.
func checkOrder(first, second *Period) error {
	a := first.Span.BeginEarliest
	b := second.Span.BeginLatest
	if a != nil && b != nil && b.Before(*a) {
		return fmt.Errorf("date conflict: period beginning by %s cannot follow period beginning no earlier than %s", b.Display(), a.Display())
	}
	return nil
}

// InsertBefore splices node immediately before anchor, becoming the
// new earliest if anchor had no previous period.
func (t *Timeline) InsertBefore(anchor, node *Period) error {
	ai := t.indexOf(anchor)
	if ai == none {
		return fmt.Errorf("insert before: anchor period not in timeline")
	}
	if t.indexOf(node) != none {
		return fmt.Errorf("insert before: period already in timeline")
	}
	if err := checkOrder(node, anchor); err != nil {
		return err
	}
	ni := t.arena(node)
	pi := t.prev[ai]
	t.prev[ni] = pi
	t.next[ni] = ai
	t.prev[ai] = ni
	if pi == none {
		t.earliest = ni
	} else {
		t.next[pi] = ni
	}
	return nil
}

// InsertAfter splices node immediately after anchor, becoming the new
// latest if anchor had no next period.
func (t *Timeline) InsertAfter(anchor, node *Period) error {
	ai := t.indexOf(anchor)
	if ai == none {
		return fmt.Errorf("insert after: anchor period not in timeline")
	}
	if t.indexOf(node) != none {
		return fmt.Errorf("insert after: period already in timeline")
	}
	if err := checkOrder(anchor, node); err != nil {
		return err
	}
	ni := t.arena(node)
	xi := t.next[ai]
	t.next[ni] = xi
	t.prev[ni] = ai
	t.next[ai] = ni
	if xi == none {
		t.latest = ni
	} else {
		t.prev[xi] = ni
	}
	return nil
}

// InsertEarliest places node at the front of the timeline.
func (t *Timeline) InsertEarliest(node *Period) error {
	if t.earliest == none {
		t.push(node)
		return nil
	}
	return t.InsertBefore(t.periods[t.earliest], node)
}

// InsertLatest places node at the end of the timeline.
func (t *Timeline) InsertLatest(node *Period) error {
	if t.latest == none {
		t.push(node)
		return nil
	}
	return t.InsertAfter(t.periods[t.latest], node)
}

// Insert appends node at the end of the timeline.
func (t *Timeline) Insert(node *Period) error {
	return t.InsertLatest(node)
}

// InsertDirect appends node and marks the previous latest period as a
// direct transfer: no custody gap between it and node.
func (t *Timeline) InsertDirect(node *Period) error {
	prior := t.Latest()
	if err := t.InsertLatest(node); err != nil {
		return err
	}
	if prior != nil {
		prior.DirectTransfer = true
	}
	return nil
}

// InsertDirectlyAfter splices node immediately after anchor and marks
// node itself as a direct transfer. Unlike InsertDirect, the flag
// lands on the inserted period, not its predecessor.
func (t *Timeline) InsertDirectlyAfter(anchor, node *Period) error {
	if err := t.InsertAfter(anchor, node); err != nil {
		return err
	}
	node.DirectTransfer = true
	return nil
}

// Provenance reassembles catalog prose from the timeline using the
// default footnote divider.
func (t *Timeline) Provenance() string {
	return t.ProvenanceWith(DefaultFootnoteDivider)
}

// ProvenanceWith renders each period in order, appending footnote
// markers renumbered densely by first appearance across the whole
// timeline. A period whose transfer to its successor was direct ends
// with ";", all others with ".". The renumbered footnote block follows
// under the divider when any footnote has text.
func (t *Timeline) ProvenanceWith(divider string) string {
	assigned := make(map[string]int)
	var order []Note
	var fragments []string
	for idx := t.earliest; idx != none; idx = t.next[idx] {
		p := t.periods[idx]
		var b strings.Builder
		b.WriteString(p.Fragment())
		for _, n := range p.Notes {
			key := noteKey(n)
			num, ok := assigned[key]
			if !ok {
				num = len(order) + 1
				assigned[key] = num
				order = append(order, n)
			}
			b.WriteString(" [")
			b.WriteString(strconv.Itoa(num))
			b.WriteString("]")
		}
		if p.DirectTransfer {
			b.WriteString(";")
		} else {
			b.WriteString(".")
		}
		fragments = append(fragments, b.String())
	}
	out := strings.Join(fragments, " ")
	var block []string
	for i, n := range order {
		if n.Text == "" {
			continue
		}
		block = append(block, strconv.Itoa(i+1)+". "+n.Text)
	}
	if len(block) > 0 {
		out += " " + divider + " " + strings.Join(block, " ")
	}
	return out
}

// noteKey gives a footnote its identity for renumbering: notes that
// came from the same source marker number are the same note, and
// unnumbered notes are deduplicated by text.
func noteKey(n Note) string {
	if n.Index > 0 {
		return "i:" + strconv.Itoa(n.Index)
	}
	return "t:" + n.Text
}
