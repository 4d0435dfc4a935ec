package source

import (
	"context"
	_ "embed"

	"co2-chart/internal/types"
)

// Daily world totals bundled with the binary, oldest first.
//
//go:embed data/world_data.json
var worldData []byte

// Embedded serves the bundled dataset.
type Embedded struct{}

func NewEmbedded() *Embedded { return &Embedded{} }

func (e *Embedded) Name() string { return "embedded" }

func (e *Embedded) Fetch(ctx context.Context) ([]types.WorldCO2Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchError(err)
	}
	rows, err := decodeRows(worldData)
	if err != nil {
		return nil, fetchError(err)
	}
	return rows, nil
}
