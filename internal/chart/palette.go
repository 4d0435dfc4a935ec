package chart

import "github.com/wcharczuk/go-chart/v2/drawing"

// category10 is the ten-colour categorical palette, as hex without the '#'.
var category10 = []string{
	"1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd",
	"8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf",
}

// ColorHex returns the palette entry for year. The mapping depends only on
// the year, so a line keeps its colour whatever else is visible.
func ColorHex(year int) string {
	return category10[((year%10)+10)%10]
}

func ColorForYear(year int) drawing.Color {
	return drawing.ColorFromHex(ColorHex(year))
}
