package pmr

// Classify maps a normalized tracking score to its category. Missing score
// means no status at all, not a fourth category. The 0.8/0.6 cutoffs are
// specific to tracking scores; performance-ratio color bands use 0.7/0.5
// and must not be unified with these.
func Classify(score Maybe) Status {
	if !score.Valid {
		return ""
	}
	switch {
	case score.Value >= 0.8:
		return StatusOnTrack
	case score.Value >= 0.6:
		return StatusAtRisk
	default:
		return StatusOffTrack
	}
}

// Color is a traffic-light band for ratio cells and chart bars.
type Color string

const (
	ColorGreen Color = "green"
	ColorAmber Color = "amber"
	ColorRed   Color = "red"
)

// ColorFor bands a performance ratio on [0,1]. Both the on-screen grid and
// the document renderer consume this one function, so the two outputs can
// never disagree on a cell's color.
func ColorFor(ratio float64) Color {
	switch {
	case ratio >= 0.7:
		return ColorGreen
	case ratio >= 0.5:
		return ColorAmber
	default:
		return ColorRed
	}
}
