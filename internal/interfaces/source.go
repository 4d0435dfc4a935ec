package interfaces

import (
	"context"

	"co2-chart/internal/types"
)

// DataSource yields the raw emissions rows, oldest first.
type DataSource interface {
	Name() string
	Fetch(ctx context.Context) ([]types.WorldCO2Row, error)
}
