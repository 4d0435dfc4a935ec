package source

import (
	"context"

	"co2-chart/internal/emissions"
	"co2-chart/internal/interfaces"
	"co2-chart/internal/types"
)

// Records fetches from src and parses the rows. A single bad row fails the
// whole load.
func Records(src interfaces.DataSource) func(ctx context.Context) ([]types.DailyRecord, error) {
	return func(ctx context.Context) ([]types.DailyRecord, error) {
		rows, err := src.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		records, err := emissions.ParseRecords(rows)
		if err != nil {
			return nil, fetchError(err)
		}
		return records, nil
	}
}
