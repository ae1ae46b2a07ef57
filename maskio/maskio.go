// Package maskio writes a mask raster to disk in a georeferenced form.
package maskio

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/royalcat/rgeolattice/geomodel"
	"golang.org/x/image/tiff"
)

// Raster is a mask together with the extent it was rasterized over.
type Raster struct {
	Mask   *geomodel.Mask
	Extent geomodel.Extent
}

// PixelSize of the raster, as implied by its extent and dimensions.
func (r Raster) PixelSize() (w, h float64) {
	return r.Extent.Width() / float64(r.Mask.Columns), r.Extent.Height() / float64(r.Mask.Rows)
}

func (r Raster) validate() error {
	if r.Mask == nil || r.Mask.Columns == 0 || r.Mask.Rows == 0 {
		return fmt.Errorf("%w: cannot encode an empty mask", geomodel.ErrInvalidParameter)
	}
	return nil
}

// SaveFile writes the raster choosing the format by extension. A .tif file
// gets a .tfw world file next to it.
func SaveFile(path string, r Raster) error {
	if err := r.validate(); err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".tif", ".tiff":
		if err := writeFile(path, func(w io.Writer) error { return WriteTIFF(w, r) }); err != nil {
			return err
		}
		return writeFile(worldFileName(path), func(w io.Writer) error { return WriteWorldFile(w, r) })
	case ".asc":
		return writeFile(path, func(w io.Writer) error { return WriteASCII(w, r) })
	default:
		return fmt.Errorf("%w: unsupported raster format %q", geomodel.ErrInvalidParameter, ext)
	}
}

func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating raster file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// worldFileName follows the first-last-letter + w convention, a.tif -> a.tfw.
func worldFileName(path string) string {
	ext := filepath.Ext(path)
	if len(ext) < 3 {
		return path + "w"
	}
	return strings.TrimSuffix(path, ext) + ext[:2] + ext[len(ext)-1:] + "w"
}

// WriteTIFF encodes cell values as an 8 bit single band image.
func WriteTIFF(w io.Writer, r Raster) error {
	if err := r.validate(); err != nil {
		return err
	}
	img := &image.Gray{
		Pix:    r.Mask.Cells,
		Stride: r.Mask.Columns,
		Rect:   image.Rect(0, 0, r.Mask.Columns, r.Mask.Rows),
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// WriteWorldFile writes the six line affine transform, referencing the
// centre of the upper left pixel.
func WriteWorldFile(w io.Writer, r Raster) error {
	if err := r.validate(); err != nil {
		return err
	}
	pw, ph := r.PixelSize()
	lines := []float64{
		pw,
		0,
		0,
		-ph,
		r.Extent.XMin + pw/2,
		r.Extent.YMax - ph/2,
	}

	bw := bufio.NewWriter(w)
	for _, v := range lines {
		bw.WriteString(formatFloat(v))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteASCII writes an ESRI ASCII grid, rows from north to south.
func WriteASCII(w io.Writer, r Raster) error {
	if err := r.validate(); err != nil {
		return err
	}
	pw, ph := r.PixelSize()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", r.Mask.Columns)
	fmt.Fprintf(bw, "nrows %d\n", r.Mask.Rows)
	fmt.Fprintf(bw, "xllcorner %s\n", formatFloat(r.Extent.XMin))
	fmt.Fprintf(bw, "yllcorner %s\n", formatFloat(r.Extent.YMin))
	if pw == ph {
		fmt.Fprintf(bw, "cellsize %s\n", formatFloat(pw))
	} else {
		fmt.Fprintf(bw, "dx %s\n", formatFloat(pw))
		fmt.Fprintf(bw, "dy %s\n", formatFloat(ph))
	}
	fmt.Fprintf(bw, "NODATA_value %d\n", r.Mask.NoData)

	for row := 0; row < r.Mask.Rows; row++ {
		for col, v := range r.Mask.Row(row) {
			if col > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.Itoa(int(v)))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
