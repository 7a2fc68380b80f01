package score

import (
	"fmt"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

// wartimeBegin and wartimeEnd bound the era every provenance standard
// singles out for due diligence.
const (
	wartimeBegin = 1933
	wartimeEnd   = 1945
)

// Scorer calculates the completeness index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate calculates the completeness score and generates diagnostic signals
func (s *Scorer) Calculate(periods []*model.Period, stats model.ExtractionStats) model.Score {
	var signals []model.Signal

	// 1. Parse Coverage (0-40 points)
	coverageScore, coverageSignal := s.calculateParseCoverage(periods)
	signals = append(signals, coverageSignal)

	// 2. Certainty (0-30 points)
	certaintyScore, certaintySignal := s.calculateCertainty(periods)
	signals = append(signals, certaintySignal)

	// 3. Transfer Continuity (0-20 points)
	continuityScore, continuitySignal := s.calculateContinuity(periods)
	signals = append(signals, continuitySignal)

	// 4. Named Parties (0-10 points)
	namedScore, namedSignal := s.calculateNamedParties(periods)
	signals = append(signals, namedSignal)

	// 5. Date Conflicts (penalty)
	conflictDetected, conflictSignal := s.detectDateConflict(stats)
	if conflictDetected {
		signals = append(signals, conflictSignal)
	}

	// 6. Wartime Gap Detection
	wartimeSignal := s.detectWartimeGap(periods)
	if wartimeSignal.Type != "" {
		signals = append(signals, wartimeSignal)
	}

	// 7. Dangling Notes
	if stats.DanglingNotes > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalDanglingNotes,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d footnote references have no footnote text", stats.DanglingNotes),
			Data:        map[string]interface{}{"dangling": stats.DanglingNotes},
		})
	}

	// 8. Undated Periods
	undatedSignal := s.detectUndatedPeriods(periods)
	if undatedSignal.Type != "" {
		signals = append(signals, undatedSignal)
	}

	// Calculate total score
	totalScore := coverageScore + certaintyScore + continuityScore + namedScore

	// Apply conflict penalty
	if conflictDetected {
		totalScore -= 10
		if totalScore < 0 {
			totalScore = 0
		}
	}

	// Determine confidence level
	confidence := s.determineConfidence(totalScore, len(periods), conflictDetected)

	return model.Score{
		Index:      totalScore,
		Confidence: confidence,
		Conflict:   conflictDetected,
		Signals:    signals,
	}
}

// calculateParseCoverage calculates parse coverage score (0-40 points)
func (s *Scorer) calculateParseCoverage(periods []*model.Period) (int, model.Signal) {
	total := len(periods)
	if total == 0 {
		return 0, model.Signal{
			Type:        model.SignalParseCoverage,
			Severity:    model.SeverityCritical,
			Description: "No periods extracted",
			Data: map[string]interface{}{
				"periods":  0,
				"parsable": 0,
			},
		}
	}

	parsable := 0
	for _, p := range periods {
		if p.Parsable {
			parsable++
		}
	}

	ratio := float64(parsable) / float64(total)
	score := int(ratio * 40)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalParseCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Parsable periods: %d/%d", parsable, total),
		Data: map[string]interface{}{
			"periods":  total,
			"parsable": parsable,
			"ratio":    ratio,
			"score":    score,
			"formula":  "(parsable / periods) * 40",
		},
	}
}

// calculateCertainty calculates certainty score (0-30 points)
func (s *Scorer) calculateCertainty(periods []*model.Period) (int, model.Signal) {
	total := len(periods)
	if total == 0 {
		return 0, model.Signal{
			Type:        model.SignalCertainty,
			Severity:    model.SeverityWarning,
			Description: "No periods to assess",
			Data:        map[string]interface{}{"periods": 0},
		}
	}

	certain := 0
	for _, p := range periods {
		if p.Certain {
			certain++
		}
	}

	ratio := float64(certain) / float64(total)
	score := int(ratio * 30)

	severity := model.SeverityInfo
	if ratio < 0.4 {
		severity = model.SeverityCritical
	} else if ratio < 0.75 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalCertainty,
		Severity:    severity,
		Description: fmt.Sprintf("Certain periods: %d/%d", certain, total),
		Data: map[string]interface{}{
			"certain": certain,
			"total":   total,
			"ratio":   ratio,
			"score":   score,
			"formula": "(certain / periods) * 30",
		},
	}
}

// calculateContinuity calculates transfer continuity score (0-20 points).
// A transition counts as connected when it is an explicit direct
// transfer or both periods around it carry dates.
func (s *Scorer) calculateContinuity(periods []*model.Period) (int, model.Signal) {
	transitions := len(periods) - 1
	if transitions < 1 {
		return 20, model.Signal{
			Type:        model.SignalContinuity,
			Severity:    model.SeverityInfo,
			Description: "No transitions to bridge",
			Data:        map[string]interface{}{"transitions": 0, "score": 20},
		}
	}

	connected := 0
	for i := 0; i < transitions; i++ {
		prev, next := periods[i], periods[i+1]
		if prev.DirectTransfer || (!prev.Span.IsZero() && !next.Span.IsZero()) {
			connected++
		}
	}

	ratio := float64(connected) / float64(transitions)
	score := int(ratio * 20)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalContinuity,
		Severity:    severity,
		Description: fmt.Sprintf("Connected transitions: %d/%d", connected, transitions),
		Data: map[string]interface{}{
			"connected":   connected,
			"transitions": transitions,
			"ratio":       ratio,
			"score":       score,
			"formula":     "(connected_transitions / transitions) * 20",
		},
	}
}

// calculateNamedParties calculates named-party score (0-10 points)
func (s *Scorer) calculateNamedParties(periods []*model.Period) (int, model.Signal) {
	total := len(periods)
	if total == 0 {
		return 0, model.Signal{
			Type:        model.SignalAnonymousParties,
			Severity:    model.SeverityWarning,
			Description: "No periods to assess",
			Data:        map[string]interface{}{"periods": 0},
		}
	}

	named := 0
	for _, p := range periods {
		if p.Party.Name != "" {
			named++
		}
	}

	ratio := float64(named) / float64(total)
	score := int(ratio * 10)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalAnonymousParties,
		Severity:    severity,
		Description: fmt.Sprintf("Named parties: %d/%d", named, total),
		Data: map[string]interface{}{
			"named":   named,
			"total":   total,
			"ratio":   ratio,
			"score":   score,
			"formula": "(named_parties / periods) * 10",
		},
	}
}

// detectDateConflict reports periods the timeline rejected for
// violating chronological order
func (s *Scorer) detectDateConflict(stats model.ExtractionStats) (bool, model.Signal) {
	if stats.DroppedPeriods == 0 {
		return false, model.Signal{}
	}
	return true, model.Signal{
		Type:        model.SignalDateConflict,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d periods dropped for date conflicts", stats.DroppedPeriods),
		Data: map[string]interface{}{
			"dropped": stats.DroppedPeriods,
			"penalty": 10,
		},
	}
}

// detectWartimeGap flags custody changes that cross 1933-1945 without
// an explanation: the handoff is not a direct transfer and the
// incoming period states no acquisition method.
func (s *Scorer) detectWartimeGap(periods []*model.Period) model.Signal {
	gaps := 0
	for i := 0; i+1 < len(periods); i++ {
		prev, next := periods[i], periods[i+1]
		if prev.DirectTransfer || next.AcquisitionMethod != "" {
			continue
		}
		lo, okLo := latestKnownYear(prev)
		hi, okHi := earliestKnownYear(next)
		if !okLo || !okHi {
			continue
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo <= wartimeEnd && hi >= wartimeBegin {
			gaps++
		}
	}
	if gaps == 0 {
		return model.Signal{}
	}
	return model.Signal{
		Type:        model.SignalWartimeGap,
		Severity:    model.SeverityCritical,
		Description: fmt.Sprintf("%d unexplained custody changes overlap 1933-1945", gaps),
		Data: map[string]interface{}{
			"gaps":        gaps,
			"era":         "1933-1945",
			"explanation": "Ownership changes in this era without a stated acquisition method or direct transfer warrant documentary review under standard provenance due diligence",
		},
	}
}

// detectUndatedPeriods flags periods with no time span at all
func (s *Scorer) detectUndatedPeriods(periods []*model.Period) model.Signal {
	undated := 0
	for _, p := range periods {
		if p.Span.IsZero() {
			undated++
		}
	}
	if undated == 0 {
		return model.Signal{}
	}
	return model.Signal{
		Type:        model.SignalUndatedPeriods,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d periods carry no dates", undated),
		Data:        map[string]interface{}{"undated": undated},
	}
}

// latestKnownYear takes the latest year any set bound of the span can
// reach.
func latestKnownYear(p *model.Period) (int, bool) {
	for _, d := range []*model.Date{p.Span.EndLatest, p.Span.EndEarliest, p.Span.BeginLatest, p.Span.BeginEarliest} {
		if d != nil {
			return d.LatestYear(), true
		}
	}
	return 0, false
}

// earliestKnownYear takes the earliest year any set bound of the span
// can reach.
func earliestKnownYear(p *model.Period) (int, bool) {
	for _, d := range []*model.Date{p.Span.BeginEarliest, p.Span.BeginLatest, p.Span.EndEarliest, p.Span.EndLatest} {
		if d != nil {
			return d.EarliestYear(), true
		}
	}
	return 0, false
}

// determineConfidence determines the confidence level based on the score
func (s *Scorer) determineConfidence(score int, periodCount int, conflict bool) string {
	if conflict {
		return "low-medium"
	}

	if periodCount < 2 {
		return "low"
	}

	if score >= 80 {
		return "high"
	} else if score >= 60 {
		return "medium"
	} else {
		return "low"
	}
}
