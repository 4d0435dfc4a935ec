package sourceobs

import (
	"context"
	"time"

	"co2-chart/internal/interfaces"
	"co2-chart/internal/logger"
	"co2-chart/internal/trace"
	"co2-chart/internal/types"
)

// observableSource wraps a DataSource with observability (logging & tracing)
type observableSource struct {
	source interfaces.DataSource
}

// Compile-time interface check
var _ interfaces.DataSource = (*observableSource)(nil)

// Wrap wraps a data source with observability middleware
func Wrap(source interfaces.DataSource) interfaces.DataSource {
	return &observableSource{source: source}
}

func (o *observableSource) Name() string {
	return o.source.Name()
}

// Fetch loads the rows with a span around the underlying source
func (o *observableSource) Fetch(ctx context.Context) ([]types.WorldCO2Row, error) {
	ctx, span := trace.StartSpan(ctx, "source.Fetch")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching world data", "source", o.source.Name())

	start := time.Now()
	rows, err := o.source.Fetch(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Error fetching world data", err,
			"source", o.source.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "World data fetched",
		"source", o.source.Name(),
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rows, nil
}
