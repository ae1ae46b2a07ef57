package source

import (
	"fmt"

	"github.com/paulmach/orb/encoding/wkb"
	"github.com/royalcat/rgeolattice/geomodel"
)

// ParseWKB reads a single WKB geometry. WKB carries no spatial reference, so
// it has to be supplied by the caller.
func ParseWKB(name, srs string, data []byte) (*Memory, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", geomodel.ErrMissingSource, name, err)
	}
	return NewMemory(name, srs, g)
}
