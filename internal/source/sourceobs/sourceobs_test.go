package sourceobs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"co2-chart/internal/logger"
	"co2-chart/internal/types"
)

type stubSource struct {
	rows []types.WorldCO2Row
	err  error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) ([]types.WorldCO2Row, error) {
	return s.rows, s.err
}

func TestWrapPassesThroughRows(t *testing.T) {
	var buf bytes.Buffer
	_ = logger.InitWithConfig(logger.LogConfig{Format: "text", Output: &buf})

	src := Wrap(&stubSource{rows: []types.WorldCO2Row{{Date: "2020-01-01", Total: 1}}})
	rows, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(rows))
	}
	if src.Name() != "stub" {
		t.Errorf("Expected name stub, got %s", src.Name())
	}
	if !strings.Contains(buf.String(), "rows=1") {
		t.Errorf("Expected fetch log with row count, got %q", buf.String())
	}
}

func TestWrapPassesThroughErrors(t *testing.T) {
	var buf bytes.Buffer
	_ = logger.InitWithConfig(logger.LogConfig{Format: "text", Output: &buf})

	boom := errors.New("boom")
	_, err := Wrap(&stubSource{err: boom}).Fetch(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("Expected an error record, got %q", buf.String())
	}
}
