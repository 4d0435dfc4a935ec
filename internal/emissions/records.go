package emissions

import (
	"fmt"
	"time"

	"co2-chart/internal/types"
)

// DateLayout is the wire format of a row's date.
const DateLayout = "2006-01-02"

// ParseRecords converts raw rows to records, keeping their order.
// A single unparsable date fails the whole batch.
func ParseRecords(rows []types.WorldCO2Row) ([]types.DailyRecord, error) {
	records := make([]types.DailyRecord, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(DateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i, row.Date, err)
		}
		records = append(records, types.DailyRecord{
			Date:  date,
			Total: row.Total,
			Sectors: types.Sectors{
				DomesticAviation:      row.DomesticAviation,
				GroundTransport:       row.GroundTransport,
				Industry:              row.Industry,
				InternationalAviation: row.InternationalAviation,
				Power:                 row.Power,
				Residential:           row.Residential,
			},
		})
	}
	return records, nil
}

// Extent returns the smallest and largest total. ok is false for empty input.
func Extent(records []types.DailyRecord) (lo, hi float64, ok bool) {
	if len(records) == 0 {
		return 0, 0, false
	}
	lo, hi = records[0].Total, records[0].Total
	for _, r := range records[1:] {
		if r.Total < lo {
			lo = r.Total
		}
		if r.Total > hi {
			hi = r.Total
		}
	}
	return lo, hi, true
}

// DateExtent returns the earliest and latest dates.
func DateExtent(records []types.DailyRecord) (first, last time.Time, ok bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, true
}
