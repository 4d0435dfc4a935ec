package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"co2-chart/internal/types"
)

const (
	tickSize     = 6
	fontSize     = 10
	legendSwatch = 10
	legendGap    = 4
)

var axisColor = drawing.ColorFromHex("333333")

// Render draws visible into w as an SVG document and returns the layout it
// used. Every call produces a complete new document.
func Render(w io.Writer, opts Options, all []types.DailyRecord, visible []types.YearGroup, year int) (*Layout, error) {
	l := NewLayout(opts, all, visible, year)

	r, err := gochart.SVG(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("create svg renderer: %w", err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	p := &painter{r: r, font: font}
	p.xAxis(l)
	p.yAxis(l)
	for _, g := range l.Groups {
		p.series(l, g)
	}
	if l.Legend {
		p.legend(l)
	}
	if l.Overlay {
		p.overlay(l)
	}

	if err := r.Save(w); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}
	return l, nil
}

type painter struct {
	r    gochart.Renderer
	font *truetype.Font
}

func (p *painter) reset() {
	p.r.ResetStyle()
	p.r.SetFont(p.font)
}

func (p *painter) line(x0, y0, x1, y1 int) {
	p.r.MoveTo(x0, y0)
	p.r.LineTo(x1, y1)
	p.r.Stroke()
}

func (p *painter) text(s string, x, y int) {
	p.r.SetFont(p.font)
	p.r.SetFontSize(fontSize)
	p.r.SetFontColor(axisColor)
	p.r.Text(s, x, y)
}

func (p *painter) xAxis(l *Layout) {
	left, _, right, bottom := l.PlotBox()
	p.reset()
	p.r.SetStrokeColor(axisColor)
	p.r.SetStrokeWidth(1)
	p.line(left, bottom, right, bottom)

	for _, t := range l.X.MonthTicks() {
		x := px(t.Pos)
		p.line(x, bottom, x, bottom+tickSize)
		p.r.SetFontSize(fontSize)
		box := p.r.MeasureText(t.Label)
		p.text(t.Label, x-box.Width()/2, bottom+tickSize+box.Height()+2)
	}
}

func (p *painter) yAxis(l *Layout) {
	left, top, _, bottom := l.PlotBox()
	p.reset()
	p.r.SetStrokeColor(axisColor)
	p.r.SetStrokeWidth(1)
	p.line(left, top, left, bottom)

	for _, t := range l.Y.Ticks() {
		y := px(t.Pos)
		p.line(left-tickSize, y, left, y)
		p.r.SetFontSize(fontSize)
		box := p.r.MeasureText(t.Label)
		p.text(t.Label, left-tickSize-box.Width()-3, y+box.Height()/2)
	}
}

// series draws one year's polyline followed by its point markers.
func (p *painter) series(l *Layout, g types.YearGroup) {
	if len(g.Data) == 0 {
		return
	}
	color := ColorForYear(g.Year)

	p.reset()
	p.r.SetStrokeColor(color)
	p.r.SetStrokeWidth(l.Options.StrokeWidth)
	for i, rec := range g.Data {
		x, y := l.Point(rec)
		if i == 0 {
			p.r.MoveTo(px(x), px(y))
			continue
		}
		p.r.LineTo(px(x), px(y))
	}
	p.r.Stroke()

	p.reset()
	p.r.SetFillColor(color)
	for _, rec := range g.Data {
		x, y := l.Point(rec)
		p.r.Circle(l.Options.PointRadius, px(x), px(y))
	}
}

// legend lists each visible year with its colour, top right of the plot.
func (p *painter) legend(l *Layout) {
	_, top, right, _ := l.PlotBox()
	seen := make(map[int]bool)
	row := 0
	for _, g := range l.Groups {
		if seen[g.Year] {
			continue
		}
		seen[g.Year] = true

		label := strconv.Itoa(g.Year)
		p.reset()
		p.r.SetFontSize(fontSize)
		box := p.r.MeasureText(label)
		y := top + row*(legendSwatch+legendGap)
		x := right - box.Width() - legendSwatch - legendGap

		p.r.SetFillColor(ColorForYear(g.Year))
		p.rect(x, y, x+legendSwatch, y+legendSwatch)
		p.r.Fill()
		p.text(label, x+legendSwatch+legendGap, y+legendSwatch)
		row++
	}
}

// overlay covers the plot area with an invisible rect for pointer capture.
func (p *painter) overlay(l *Layout) {
	left, top, right, bottom := l.PlotBox()
	p.reset()
	p.r.SetFillColor(drawing.ColorTransparent)
	p.rect(left, top, right, bottom)
	p.r.Fill()
}

func (p *painter) rect(x0, y0, x1, y1 int) {
	p.r.MoveTo(x0, y0)
	p.r.LineTo(x1, y0)
	p.r.LineTo(x1, y1)
	p.r.LineTo(x0, y1)
	p.r.Close()
}

func px(v float64) int {
	return int(math.Round(v))
}
