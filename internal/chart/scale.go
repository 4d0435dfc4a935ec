package chart

import (
	"math"
	"strconv"
	"time"
)

// Tick is an axis mark at a pixel position.
type Tick struct {
	Pos   float64
	Label string
}

// TimeScale maps a UTC time domain linearly onto a pixel range.
type TimeScale struct {
	D0, D1 time.Time
	R0, R1 float64
}

// NewTimeScale builds a time scale. An empty domain is widened by half a day
// on each side.
func NewTimeScale(d0, d1 time.Time, r0, r1 float64) TimeScale {
	if !d1.After(d0) {
		d0 = d0.Add(-12 * time.Hour)
		d1 = d0.Add(24 * time.Hour)
	}
	return TimeScale{D0: d0, D1: d1, R0: r0, R1: r1}
}

func (s TimeScale) Scale(t time.Time) float64 {
	span := float64(s.D1.Sub(s.D0))
	return s.R0 + float64(t.Sub(s.D0))/span*(s.R1-s.R0)
}

// Invert returns the time at pixel px. Positions outside the range
// extrapolate.
func (s TimeScale) Invert(px float64) time.Time {
	span := float64(s.D1.Sub(s.D0))
	f := (px - s.R0) / (s.R1 - s.R0)
	return s.D0.Add(time.Duration(f * span))
}

// MonthTicks marks the first day of every month inside the domain.
func (s TimeScale) MonthTicks() []Tick {
	var ticks []Tick
	m := time.Date(s.D0.Year(), s.D0.Month(), 1, 0, 0, 0, 0, time.UTC)
	if m.Before(s.D0) {
		m = m.AddDate(0, 1, 0)
	}
	for ; !m.After(s.D1); m = m.AddDate(0, 1, 0) {
		ticks = append(ticks, Tick{Pos: s.Scale(m), Label: m.Month().String()})
	}
	return ticks
}

// LinearScale maps a numeric domain linearly onto a pixel range.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
	count  int
}

// NewLinearScale builds a scale over [lo, hi] niced to round tick values for
// count ticks. A zero-width domain is widened by one on each side.
func NewLinearScale(lo, hi, r0, r1 float64, count int) LinearScale {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	lo, hi = Nice(lo, hi, count)
	return LinearScale{D0: lo, D1: hi, R0: r0, R1: r1, count: count}
}

func (s LinearScale) Scale(v float64) float64 {
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

func (s LinearScale) Invert(px float64) float64 {
	return s.D0 + (px-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// Ticks returns the round values inside the domain.
func (s LinearScale) Ticks() []Tick {
	values, step := TickValues(s.D0, s.D1, s.count)
	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, Tick{Pos: s.Scale(v), Label: formatTick(v, step)})
	}
	return ticks
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickIncrement returns the step for about count ticks over [start, stop].
// Steps below one are returned as the negated inverse so tick values can be
// computed without accumulating float error.
func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// Nice extends [start, stop] outward to multiples of the tick step,
// iterating until the step settles.
func Nice(start, stop float64, count int) (float64, float64) {
	if count <= 0 || !(stop > start) {
		return start, stop
	}
	prestep := 0.0
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, count)
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return start, stop
		}
		prestep = step
	}
	return start, stop
}

// TickValues returns the tick values for [start, stop] and the step used.
func TickValues(start, stop float64, count int) ([]float64, float64) {
	if count <= 0 || !(stop > start) {
		return nil, 0
	}
	inc := tickIncrement(start, stop, count)
	var values []float64
	if inc > 0 {
		i0, i1 := math.Ceil(start/inc), math.Floor(stop/inc)
		for i := i0; i <= i1; i++ {
			values = append(values, i*inc)
		}
		return values, inc
	}
	inc = -inc
	i0, i1 := math.Ceil(start*inc), math.Floor(stop*inc)
	for i := i0; i <= i1; i++ {
		values = append(values, i/inc)
	}
	return values, 1 / inc
}

func formatTick(v, step float64) string {
	prec := 0
	if step > 0 && step < 1 {
		prec = int(math.Ceil(-math.Log10(step)))
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
