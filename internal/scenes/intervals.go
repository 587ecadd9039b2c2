package scenes

// Interval is one scene's half-open time range in milliseconds.
type Interval struct {
	StartMS int64
	EndMS   int64
}

// BuildIntervals turns cut timestamps (seconds) into ordered, non-overlapping
// scene intervals over a video of durationMS milliseconds: cuts at t1..tn
// produce [0,t1), [t1,t2) ... [tn,D). Milliseconds are taken by truncation.
// Zero cuts over a playable video yield a single full-length scene; a zero
// duration yields no scenes.
func BuildIntervals(cuts []float64, durationMS int64) []Interval {
	if durationMS <= 0 {
		return nil
	}

	bounds := []int64{0}
	for _, cut := range cuts {
		ms := int64(cut * 1000)
		if ms <= bounds[len(bounds)-1] || ms >= durationMS {
			continue
		}
		bounds = append(bounds, ms)
	}
	bounds = append(bounds, durationMS)

	intervals := make([]Interval, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		intervals = append(intervals, Interval{StartMS: bounds[i], EndMS: bounds[i+1]})
	}
	return intervals
}

// MidpointSeconds returns the instant used for representative frame grabs.
func (iv Interval) MidpointSeconds() float64 {
	return float64(iv.StartMS+iv.EndMS) / 2 / 1000
}
