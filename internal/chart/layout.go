package chart

import (
	"time"

	"co2-chart/internal/emissions"
	"co2-chart/internal/types"
)

// ReferenceYear is the leap year every date is projected onto when all years
// share one calendar axis.
const ReferenceYear = 2000

const yTickCount = 10

type Margin struct {
	Top, Right, Bottom, Left int
}

type Options struct {
	Width, Height int
	Margin        Margin
	PointRadius   float64
	StrokeWidth   float64
}

func DefaultOptions() Options {
	return Options{
		Width:       1000,
		Height:      400,
		Margin:      Margin{Top: 20, Right: 30, Bottom: 30, Left: 50},
		PointRadius: 3,
		StrokeWidth: 1.5,
	}
}

// Layout is the geometry of one rendered chart.
type Layout struct {
	Options Options
	X       TimeScale
	Y       LinearScale
	Groups  []types.YearGroup
	Year    int

	// Reference is set when dates are projected onto ReferenceYear.
	Reference bool
	Legend    bool
	Overlay   bool
}

// NewLayout computes the scales for drawing visible. The y domain always
// comes from all so the vertical scale does not jump between selections.
// year 0 overlays every visible year on a common calendar axis.
func NewLayout(opts Options, all []types.DailyRecord, visible []types.YearGroup, year int) *Layout {
	l := &Layout{
		Options:   opts,
		Groups:    visible,
		Year:      year,
		Reference: year == 0,
		Legend:    year == 0,
		Overlay:   year != 0,
	}

	lo, hi, ok := emissions.Extent(all)
	if !ok {
		lo, hi = 0, 1
	}
	l.Y = NewLinearScale(lo, hi,
		float64(opts.Height-opts.Margin.Bottom), float64(opts.Margin.Top), yTickCount)

	first, last, ok := l.dateExtent()
	if !ok {
		first = time.Date(ReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		last = time.Date(ReferenceYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	l.X = NewTimeScale(first, last,
		float64(opts.Margin.Left), float64(opts.Width-opts.Margin.Right))
	return l
}

func (l *Layout) dateExtent() (first, last time.Time, ok bool) {
	for _, g := range l.Groups {
		for _, r := range g.Data {
			d := l.Project(r.Date)
			if !ok || d.Before(first) {
				first = d
			}
			if !ok || d.After(last) {
				last = d
			}
			ok = true
		}
	}
	return first, last, ok
}

// Project maps t onto the x axis domain.
func (l *Layout) Project(t time.Time) time.Time {
	if !l.Reference {
		return t
	}
	return time.Date(ReferenceYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Unproject maps an x axis time back into year.
func (l *Layout) Unproject(t time.Time, year int) time.Time {
	if !l.Reference {
		return t
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Point is the pixel position of r.
func (l *Layout) Point(r types.DailyRecord) (x, y float64) {
	return l.X.Scale(l.Project(r.Date)), l.Y.Scale(r.Total)
}

// PlotBox returns the inner drawing area in pixels.
func (l *Layout) PlotBox() (left, top, right, bottom int) {
	o := l.Options
	return o.Margin.Left, o.Margin.Top, o.Width - o.Margin.Right, o.Height - o.Margin.Bottom
}
