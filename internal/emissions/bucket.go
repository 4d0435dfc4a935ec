package emissions

import "co2-chart/internal/types"

// GroupByYear splits records into maximal contiguous runs of one calendar year.
//
// The input must already be sorted by date. Nothing is sorted here: a year that
// reappears after a different year starts a new group, so unsorted input
// produces split or duplicate groups. Concatenating the groups' Data always
// reproduces the input.
func GroupByYear(records []types.DailyRecord) []types.YearGroup {
	groups := []types.YearGroup{}
	if len(records) == 0 {
		return groups
	}

	year := records[0].Date.Year()
	current := []types.DailyRecord{}

	for _, r := range records {
		if r.Date.Year() == year {
			current = append(current, r)
			continue
		}
		groups = append(groups, types.YearGroup{Year: year, Data: current})
		current = []types.DailyRecord{r}
		year = r.Date.Year()
	}

	return append(groups, types.YearGroup{Year: year, Data: current})
}

// Years lists each group's year in group order.
func Years(groups []types.YearGroup) []int {
	years := make([]int, 0, len(groups))
	seen := make(map[int]bool, len(groups))
	for _, g := range groups {
		if seen[g.Year] {
			continue
		}
		seen[g.Year] = true
		years = append(years, g.Year)
	}
	return years
}

// FilterYear returns the groups to draw for a selection. Zero selects every group.
func FilterYear(groups []types.YearGroup, year int) []types.YearGroup {
	if year == 0 {
		return groups
	}
	out := []types.YearGroup{}
	for _, g := range groups {
		if g.Year == year {
			out = append(out, g)
		}
	}
	return out
}

// Flatten concatenates the groups' records.
func Flatten(groups []types.YearGroup) []types.DailyRecord {
	n := 0
	for _, g := range groups {
		n += len(g.Data)
	}
	out := make([]types.DailyRecord, 0, n)
	for _, g := range groups {
		out = append(out, g.Data...)
	}
	return out
}
