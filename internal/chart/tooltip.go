package chart

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"co2-chart/internal/emissions"
	"co2-chart/internal/types"
)

// TooltipAt returns the sample of group nearest to pixel column x. Only the
// group's own records are searched. x is clamped to the plot area; NaN finds
// nothing.
func TooltipAt(l *Layout, group types.YearGroup, x float64) (types.Tooltip, bool) {
	if math.IsNaN(x) {
		return types.Tooltip{}, false
	}
	left, _, right, _ := l.PlotBox()
	x = math.Max(float64(left), math.Min(float64(right), x))

	t := l.Unproject(l.X.Invert(x), group.Year)
	rec, ok := emissions.Nearest(group.Data, t)
	if !ok {
		return types.Tooltip{}, false
	}
	px, py := l.Point(rec)
	date := rec.Date.Format(emissions.DateLayout)
	return types.Tooltip{
		Year:  group.Year,
		Date:  date,
		Total: rec.Total,
		Text:  fmt.Sprintf("Date: %s\nTotal: %s", date, FormatTotal(rec.Total)),
		X:     px,
		Y:     py,
	}, true
}

// FormatTotal rounds to three decimals and drops trailing zeros.
func FormatTotal(v float64) string {
	return decimal.NewFromFloat(v).Round(3).String()
}
