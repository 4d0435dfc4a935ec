package source

import (
	"context"
	"os"

	"co2-chart/internal/types"
)

// File reads the dataset from a JSON file on disk on every fetch.
type File struct {
	path string
}

func NewFile(path string) *File { return &File{path: path} }

func (f *File) Name() string { return "file:" + f.path }

func (f *File) Fetch(ctx context.Context) ([]types.WorldCO2Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchError(err)
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fetchError(err)
	}
	rows, err := decodeRows(b)
	if err != nil {
		return nil, fetchError(err)
	}
	return rows, nil
}
