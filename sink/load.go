package sink

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/royalcat/rgeolattice/geomodel"
)

// LoadBinaryFile reads a .rgl or .rgl.zst file written by Create.
func LoadBinaryFile(name string) (BinaryHeader, geomodel.PointList, error) {
	file, err := os.Open(name)
	if err != nil {
		return BinaryHeader{}, nil, fmt.Errorf("can`t open file error: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(name, ".zst") {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return BinaryHeader{}, nil, fmt.Errorf("can`t create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	return LoadBinary(r)
}
