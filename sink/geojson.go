package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/royalcat/rgeolattice/geomodel"
)

// GeoJSON streams a FeatureCollection, one feature per appended point.
type GeoJSON struct {
	w     *bufio.Writer
	count int64
}

var _ Writer = (*GeoJSON)(nil)

func NewGeoJSON(w io.Writer, srs string) (*GeoJSON, error) {
	g := &GeoJSON{w: bufio.NewWriter(w)}

	g.w.WriteString(`{"type":"FeatureCollection",`)
	if crs := crsMember(srs); crs != "" {
		g.w.WriteString(`"crs":`)
		g.w.WriteString(crs)
		g.w.WriteByte(',')
	}
	if _, err := g.w.WriteString(`"features":[`); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GeoJSON) Append(p geomodel.PointRecord) error {
	f := geojson.NewFeature(p.Point())
	f.Properties[IDField] = p.ID

	data, err := f.MarshalJSON()
	if err != nil {
		return fmt.Errorf("error marshalling point %d: %w", p.ID, err)
	}
	if g.count > 0 {
		g.w.WriteByte(',')
	}
	if _, err := g.w.Write(data); err != nil {
		return err
	}
	g.count++
	return nil
}

func (g *GeoJSON) Count() int64 {
	return g.count
}

// Close terminates the collection and flushes, it does not close the
// underlying writer.
func (g *GeoJSON) Close() error {
	if _, err := g.w.WriteString("]}\n"); err != nil {
		return err
	}
	return g.w.Flush()
}

// crsMember renders the legacy named crs object, omitted for the GeoJSON default.
func crsMember(srs string) string {
	if srs == "" || srs == "EPSG:4326" {
		return ""
	}
	name := srs
	if auth, code, ok := strings.Cut(srs, ":"); ok && !strings.Contains(code, ":") {
		name = "urn:ogc:def:crs:" + auth + "::" + code
	}
	data, _ := json.Marshal(map[string]any{
		"type":       "name",
		"properties": map[string]string{"name": name},
	})
	return string(data)
}
