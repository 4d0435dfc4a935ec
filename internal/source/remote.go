package source

import (
	"context"

	"co2-chart/internal/api"
	"co2-chart/internal/types"
)

// Remote fetches the dataset over HTTP(S).
type Remote struct {
	client *api.Client
	url    string
	retry  *api.RetryConfig
}

// NewRemote creates a remote source for url. A nil retry config means one attempt.
func NewRemote(client *api.Client, url string, retry *api.RetryConfig) *Remote {
	if retry == nil {
		retry = &api.RetryConfig{MaxAttempts: 1}
	}
	return &Remote{client: client, url: url, retry: retry}
}

func (r *Remote) Name() string { return "remote:" + r.url }

func (r *Remote) Fetch(ctx context.Context) ([]types.WorldCO2Row, error) {
	resp, err := r.client.GETWithRetry(ctx, r.url, r.retry, api.JSONHeaders())
	if err != nil {
		return nil, fetchError(err)
	}
	rows, err := decodeRows(resp.Body)
	if err != nil {
		return nil, fetchError(err)
	}
	return rows, nil
}
