// Package sink holds the point outputs of a lattice extraction.
package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/lattice"
)

// Every sink declares a point geometry and a single integer field.
const (
	GeometryType = "Point"
	IDField      = "id"
)

// Writer is a point sink backed by a stream that has to be finished with Close.
type Writer interface {
	lattice.Sink
	io.Closer
	Count() int64
}

// Memory keeps appended points in a slice.
type Memory struct {
	SRS    string
	Points geomodel.PointList
}

var _ Writer = (*Memory)(nil)

func (m *Memory) Append(p geomodel.PointRecord) error {
	m.Points = append(m.Points, p)
	return nil
}

func (m *Memory) Count() int64 {
	return int64(len(m.Points))
}

func (m *Memory) Close() error {
	return nil
}

// Create opens a file sink chosen by extension: .geojson/.json, or .rgl with
// an optional .zst suffix. cellSize is only recorded by the binary format.
func Create(path, srs string, cellSize float64) (Writer, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".zst")))
	switch ext {
	case ".geojson", ".json", ".rgl":
	default:
		return nil, fmt.Errorf("%w: unsupported point format %q", geomodel.ErrInvalidParameter, ext)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating points file: %w", err)
	}

	var w io.Writer = file
	closers := []io.Closer{file}
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("can`t create zstd writer: %w", err)
		}
		w = enc
		closers = []io.Closer{enc, file}
	}

	var out Writer
	if ext == ".rgl" {
		out, err = NewBinary(w, BinaryHeader{SpatialRef: srs, CellSize: cellSize})
	} else {
		out, err = NewGeoJSON(w, srs)
	}
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	return &fileWriter{Writer: out, closers: closers}, nil
}

type fileWriter struct {
	Writer
	closers []io.Closer
}

func (f *fileWriter) Close() error {
	err := f.Writer.Close()
	return errors.Join(err, closeAll(f.closers))
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
