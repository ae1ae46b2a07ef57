// Package algorithm wires planning, rasterization and extraction into the
// two processing algorithms exposed by the CLI and the HTTP server.
package algorithm

import (
	"errors"

	"github.com/royalcat/rgeolattice/geomodel"
)

type ParameterType string

const (
	ParamPolygonSource     ParameterType = "polygon_source"
	ParamDistance          ParameterType = "distance"
	ParamRasterDestination ParameterType = "raster_destination"
	ParamPointSink         ParameterType = "point_sink"
)

// Parameter names shared by both algorithms.
const (
	INPUT           = "INPUT"
	PIXEL_DIMENSION = "PIXEL_DIMENSION"
	MASK            = "MASK"
	OUTPUT          = "OUTPUT"
)

const DefaultPixelDimension = 10.0

type Parameter struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        ParameterType `json:"type"`
	Optional    bool          `json:"optional,omitempty"`
	Default     *float64      `json:"default,omitempty"`
	Min         *float64      `json:"min,omitempty"`
}

// Descriptor is the static metadata of an algorithm.
type Descriptor struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Group       string      `json:"group"`
	GroupID     string      `json:"group_id"`
	Help        string      `json:"help"`
	Parameters  []Parameter `json:"parameters"`
}

func (d Descriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

func float(v float64) *float64 {
	return &v
}

var inputParameter = Parameter{
	Name:        INPUT,
	Description: "Input polygon layer",
	Type:        ParamPolygonSource,
}

var pixelDimensionParameter = Parameter{
	Name:        PIXEL_DIMENSION,
	Description: "Input point distance",
	Type:        ParamDistance,
	Default:     float(DefaultPixelDimension),
	Min:         float(0),
}

var PolygonMaskDescriptor = Descriptor{
	ID:          "Raster polygon mask",
	DisplayName: "Raster polygon mask",
	Group:       "Miscellaneous",
	GroupID:     "rsscripts",
	Help:        "Produces a 1-0 raster mask of polygons extension",
	Parameters: []Parameter{
		inputParameter,
		pixelDimensionParameter,
		{Name: OUTPUT, Description: "Output raster", Type: ParamRasterDestination},
	},
}

var PointNetDescriptor = Descriptor{
	ID:          "Regular point net",
	DisplayName: "Regular point net",
	Group:       "Sampling",
	GroupID:     "rasteranalysis",
	Help:        "Produces a 1-0 raster mask of polygons extension and a regular points net",
	Parameters: []Parameter{
		inputParameter,
		pixelDimensionParameter,
		{Name: MASK, Description: "Output raster", Type: ParamRasterDestination, Optional: true},
		{Name: OUTPUT, Description: "Regular points", Type: ParamPointSink},
	},
}

// Descriptors lists every available algorithm.
func Descriptors() []Descriptor {
	return []Descriptor{PolygonMaskDescriptor, PointNetDescriptor}
}

func Lookup(id string) (Descriptor, bool) {
	for _, d := range Descriptors() {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Status classifies a run error for metrics and logs.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, geomodel.ErrCancelled):
		return "cancelled"
	case errors.Is(err, geomodel.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, geomodel.ErrMissingSource):
		return "missing_source"
	case errors.Is(err, geomodel.ErrRasterizationFailed):
		return "rasterization_failed"
	default:
		return "error"
	}
}
