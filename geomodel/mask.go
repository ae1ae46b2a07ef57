package geomodel

import "fmt"

// Cell values of a Mask.
const (
	Outside uint8 = 0
	Inside  uint8 = 1

	// DefaultNoData is distinct from Inside and Outside and fits the Byte cell type.
	DefaultNoData uint8 = 255
)

// Mask is a row major binary grid. Row 0 is the northern (YMax) row and
// column 0 the western (XMin) column.
type Mask struct {
	Columns int
	Rows    int
	NoData  uint8
	Cells   []uint8
}

func NewMask(columns, rows int, init uint8) *Mask {
	m := &Mask{
		Columns: columns,
		Rows:    rows,
		NoData:  DefaultNoData,
		Cells:   make([]uint8, columns*rows),
	}
	if init != 0 {
		for i := range m.Cells {
			m.Cells[i] = init
		}
	}
	return m
}

// MaskFromRows builds a mask from a slice of equally sized rows, north first.
func MaskFromRows(rows [][]uint8) (*Mask, error) {
	if len(rows) == 0 {
		return NewMask(0, 0, Outside), nil
	}
	columns := len(rows[0])
	m := NewMask(columns, len(rows), Outside)
	for r, row := range rows {
		if len(row) != columns {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(row), columns)
		}
		copy(m.Row(r), row)
	}
	return m, nil
}

func (m *Mask) At(row, col int) uint8 {
	return m.Cells[row*m.Columns+col]
}

func (m *Mask) Set(row, col int, v uint8) {
	m.Cells[row*m.Columns+col] = v
}

// Row returns the backing slice of a single row.
func (m *Mask) Row(row int) []uint8 {
	return m.Cells[row*m.Columns : (row+1)*m.Columns]
}

func (m *Mask) CountInside() int {
	n := 0
	for _, c := range m.Cells {
		if c == Inside {
			n++
		}
	}
	return n
}

// Fits reports whether the mask has exactly the dimensions of the grid.
func (m *Mask) Fits(g GridSpec) bool {
	return m.Columns == g.Columns && m.Rows == g.Rows && len(m.Cells) == g.Cells()
}
