package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"co2-chart/internal/api"
	"co2-chart/internal/interfaces"
	"co2-chart/internal/store"
	"co2-chart/internal/types"
)

// ErrEmptyPayload is returned when a source answers with no bytes at all.
var ErrEmptyPayload = errors.New("empty payload")

// New creates the data source selected by the configuration
func New(cfg *store.Config) (interfaces.DataSource, error) {
	switch cfg.Data.Source {
	case store.SourceEmbedded, "":
		return NewEmbedded(), nil

	case store.SourceFile:
		return NewFile(cfg.Data.FilePath), nil

	case store.SourceRemote:
		opts := []api.ClientOption{
			api.WithTimeout(cfg.Timeout()),
			api.WithLogging(true),
		}
		if cfg.Data.RateLimitPerSecond > 0 {
			opts = append(opts, api.WithRateLimiter(api.PerSecond(cfg.Data.RateLimitPerSecond)))
		}
		retry := &api.RetryConfig{
			MaxAttempts: cfg.Data.HTTPAttempts,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
		}
		return NewRemote(api.NewClient(opts...), cfg.DataURL(), retry), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s (valid options: EMBEDDED, FILE, REMOTE)", cfg.Data.Source)
	}
}

func decodeRows(b []byte) ([]types.WorldCO2Row, error) {
	if len(b) == 0 {
		return nil, ErrEmptyPayload
	}
	var rows []types.WorldCO2Row
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func fetchError(err error) error {
	return fmt.Errorf("error fetching world data: %w", err)
}
