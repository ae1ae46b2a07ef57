package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/royalcat/rgeolattice/geomodel"
	"golang.org/x/exp/mmap"
)

// OpenFile loads a polygon layer from disk. The format is chosen by
// extension: .geojson/.json or .wkb, optionally followed by .zst.
// srs is only used for formats without their own spatial reference and may
// be empty.
func OpenFile(path, srs string) (Source, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", geomodel.ErrMissingSource, err)
	}

	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".zst")))
	switch ext {
	case ".geojson", ".json":
		src, err := ParseGeoJSON(name, data)
		if err != nil {
			return nil, err
		}
		if srs != "" {
			src.SRS = NormalizeSpatialRef(srs)
		}
		return src, nil
	case ".wkb":
		return ParseWKB(name, NormalizeSpatialRef(srs), data)
	}

	return nil, fmt.Errorf("%w: unsupported polygon format %q", geomodel.ErrMissingSource, ext)
}

func readFile(path string) ([]byte, error) {
	file, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can`t open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = io.NewSectionReader(file, 0, int64(file.Len()))
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("can`t create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	return io.ReadAll(r)
}
