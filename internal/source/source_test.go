package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"co2-chart/internal/api"
	"co2-chart/internal/store"
)

const sample = `[{"date":"2020-01-01","total":10,"power":4},{"date":"2020-06-01","total":20},{"date":"2021-02-01","total":5}]`

func TestEmbeddedIsSortedDailyData(t *testing.T) {
	rows, err := NewEmbedded().Fetch(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, "2020-01-01", rows[0].Date)
	for i := 1; i < len(rows); i++ {
		require.Less(t, rows[i-1].Date, rows[i].Date, "rows must be ascending at %d", i)
	}
	for _, r := range rows {
		require.Greater(t, r.Total, 0.0)
	}
}

func TestFileSource(t *testing.T) {
	p := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o644))

	src := NewFile(p)
	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 4.0, rows[0].Power)
	assert.True(t, strings.HasPrefix(src.Name(), "file:"))
}

func TestFileSourceMissing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.json")).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "error fetching world data")
}

func TestRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/world.json", r.URL.Path)
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	rows, err := NewRemote(api.NewClient(api.WithHTTPClient(srv.Client())), srv.URL+"/v1/world.json", nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRemoteSourceFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		"json":   func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"not":"an array"`)) },
		"empty":  func(w http.ResponseWriter, r *http.Request) {},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := NewRemote(api.NewClient(), srv.URL, nil).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "error fetching world data")
			if name == "empty" {
				assert.ErrorIs(t, err, ErrEmptyPayload)
			}
			if name == "status" {
				var se *api.StatusError
				assert.ErrorAs(t, err, &se)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := store.DefaultConfig()
	src, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "embedded", src.Name())

	cfg.Data.Source = store.SourceRemote
	cfg.Data.APIURL = "https://example.org"
	cfg.Data.APISuffix = "/world.json"
	cfg.Data.RateLimitPerSecond = 2
	src, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "remote:https://example.org/world.json", src.Name())

	cfg.Data.Source = "FTP"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestRecordsParsesRows(t *testing.T) {
	p := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o644))

	records, err := Records(NewFile(p))(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2021, records[2].Date.Year())
	assert.Equal(t, 4.0, records[0].Sectors.Power)
}

func TestRecordsRejectsBadDate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"date":"2020-13-45","total":1}]`), 0o644))

	_, err := Records(NewFile(p))(context.Background())
	require.Error(t, err)
	if !strings.HasPrefix(err.Error(), "error fetching world data:") {
		t.Errorf("Expected wrapped fetch error, got %q", err.Error())
	}
}
