package server

import (
	"strconv"
	"strings"
)

const yearPlaceholder = "Select a year"

// YearOption is one entry of the year select control.
type YearOption struct {
	Value    string
	Label    string
	Selected bool
}

// YearOptions lists the placeholder followed by years in the given order.
func YearOptions(years []int, selected int) []YearOption {
	opts := make([]YearOption, 0, len(years)+1)
	opts = append(opts, YearOption{Value: "", Label: yearPlaceholder, Selected: selected == 0})
	for _, y := range years {
		v := strconv.Itoa(y)
		opts = append(opts, YearOption{Value: v, Label: v, Selected: y == selected})
	}
	return opts
}

// ParseYear reads a select value. Empty, "0" and anything that is not an
// integer mean no year is selected.
func ParseYear(v string) int {
	y, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return y
}
