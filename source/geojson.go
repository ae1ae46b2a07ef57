package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/royalcat/rgeolattice/geomodel"
)

type typeProbe struct {
	Type string `json:"type"`
}

// ParseGeoJSON accepts a FeatureCollection, a single Feature or a bare
// geometry. The legacy crs member is honoured when present.
func ParseGeoJSON(name string, data []byte) (*Memory, error) {
	var probe typeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", geomodel.ErrMissingSource, name, err)
	}

	srs := DefaultSpatialRef
	var geoms []orb.Geometry

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", geomodel.ErrMissingSource, name, err)
		}
		if crs, ok := crsName(fc.ExtraMembers["crs"]); ok {
			srs = crs
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", geomodel.ErrMissingSource, name, err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", geomodel.ErrMissingSource, name, err)
		}
		geoms = append(geoms, g.Geometry())
	}

	return NewMemory(name, srs, geoms...)
}

// crsName understands {"type":"name","properties":{"name":"..."}}.
func crsName(v any) (string, bool) {
	crs, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	props, ok := crs["properties"].(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := props["name"].(string)
	if !ok || name == "" {
		return "", false
	}
	return NormalizeSpatialRef(name), true
}

// NormalizeSpatialRef turns OGC URNs and URLs into the short AUTHORITY:CODE form.
func NormalizeSpatialRef(name string) string {
	name = strings.TrimSpace(name)
	switch {
	case strings.HasPrefix(name, "urn:ogc:def:crs:"):
		parts := strings.Split(strings.TrimPrefix(name, "urn:ogc:def:crs:"), ":")
		if len(parts) >= 2 {
			auth, code := parts[0], parts[len(parts)-1]
			if auth == "OGC" && code == "CRS84" {
				return DefaultSpatialRef
			}
			return strings.ToUpper(auth) + ":" + code
		}
	case strings.HasPrefix(name, "http://www.opengis.net/def/crs/"):
		parts := strings.Split(strings.TrimPrefix(name, "http://www.opengis.net/def/crs/"), "/")
		if len(parts) >= 3 {
			return strings.ToUpper(parts[0]) + ":" + parts[len(parts)-1]
		}
	}
	return name
}
