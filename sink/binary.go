package sink

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/royalcat/rgeolattice/geomodel"
	"google.golang.org/protobuf/encoding/protowire"
)

var MAGIC_BYTES = []byte("RGLATTICE")

const COMPATIBILITY_LEVEL uint32 = 1

// BinaryHeader describes the layer stored in a binary lattice file.
type BinaryHeader struct {
	SpatialRef   string
	GeometryType string
	Fields       []string
	CellSize     float64
}

// header fields
const (
	headerSpatialRef   protowire.Number = 1
	headerGeometryType protowire.Number = 2
	headerField        protowire.Number = 3
	headerCellSize     protowire.Number = 4
)

// point fields
const (
	pointID protowire.Number = 1
	pointX  protowire.Number = 2
	pointY  protowire.Number = 3
)

// Binary writes length prefixed protobuf records after a magic and
// compatibility level preamble. Output is buffered and only guaranteed to
// reach the underlying writer after Close.
type Binary struct {
	w     *bufio.Writer
	buf   []byte
	count int64
}

var _ Writer = (*Binary)(nil)

func NewBinary(w io.Writer, header BinaryHeader) (*Binary, error) {
	if header.GeometryType == "" {
		header.GeometryType = GeometryType
	}
	if len(header.Fields) == 0 {
		header.Fields = []string{IDField}
	}

	b := &Binary{w: bufio.NewWriter(w)}
	if _, err := b.w.Write(MAGIC_BYTES); err != nil {
		return nil, err
	}
	if err := binary.Write(b.w, binary.LittleEndian, COMPATIBILITY_LEVEL); err != nil {
		return nil, err
	}

	var msg []byte
	msg = protowire.AppendTag(msg, headerSpatialRef, protowire.BytesType)
	msg = protowire.AppendString(msg, header.SpatialRef)
	msg = protowire.AppendTag(msg, headerGeometryType, protowire.BytesType)
	msg = protowire.AppendString(msg, header.GeometryType)
	for _, f := range header.Fields {
		msg = protowire.AppendTag(msg, headerField, protowire.BytesType)
		msg = protowire.AppendString(msg, f)
	}
	msg = protowire.AppendTag(msg, headerCellSize, protowire.Fixed64Type)
	msg = protowire.AppendFixed64(msg, math.Float64bits(header.CellSize))

	if _, err := b.w.Write(protowire.AppendBytes(nil, msg)); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Binary) Append(p geomodel.PointRecord) error {
	msg := b.buf[:0]
	msg = protowire.AppendTag(msg, pointID, protowire.VarintType)
	msg = protowire.AppendVarint(msg, uint64(p.ID))
	msg = protowire.AppendTag(msg, pointX, protowire.Fixed64Type)
	msg = protowire.AppendFixed64(msg, math.Float64bits(p.X))
	msg = protowire.AppendTag(msg, pointY, protowire.Fixed64Type)
	msg = protowire.AppendFixed64(msg, math.Float64bits(p.Y))
	b.buf = msg

	if _, err := b.w.Write(protowire.AppendVarint(nil, uint64(len(msg)))); err != nil {
		return err
	}
	if _, err := b.w.Write(msg); err != nil {
		return err
	}
	b.count++
	return nil
}

func (b *Binary) Count() int64 {
	return b.count
}

// Close flushes, it does not close the underlying writer.
func (b *Binary) Close() error {
	return b.w.Flush()
}

// ReadBinary streams the points of a binary lattice file to fn.
func ReadBinary(r io.Reader, fn func(geomodel.PointRecord) error) (BinaryHeader, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(MAGIC_BYTES))
	if _, err := io.ReadFull(br, magic); err != nil {
		return BinaryHeader{}, fmt.Errorf("error reading magic bytes: %w", err)
	}
	if string(magic) != string(MAGIC_BYTES) {
		return BinaryHeader{}, fmt.Errorf("not a lattice file")
	}

	var compatibilityLevel uint32
	if err := binary.Read(br, binary.LittleEndian, &compatibilityLevel); err != nil {
		return BinaryHeader{}, fmt.Errorf("error reading compatibility level: %w", err)
	}
	if compatibilityLevel != COMPATIBILITY_LEVEL {
		return BinaryHeader{}, fmt.Errorf("unsupported compatibility level: %d", compatibilityLevel)
	}

	msg, err := readRecord(br)
	if err != nil {
		return BinaryHeader{}, fmt.Errorf("error reading header: %w", err)
	}
	header, err := decodeHeader(msg)
	if err != nil {
		return BinaryHeader{}, err
	}

	for {
		msg, err := readRecord(br)
		if err == io.EOF {
			return header, nil
		}
		if err != nil {
			return header, fmt.Errorf("error reading point: %w", err)
		}
		p, err := decodePoint(msg)
		if err != nil {
			return header, err
		}
		if err := fn(p); err != nil {
			return header, err
		}
	}
}

// LoadBinary reads a whole binary lattice file into memory.
func LoadBinary(r io.Reader) (BinaryHeader, geomodel.PointList, error) {
	points := geomodel.PointList{}
	header, err := ReadBinary(r, func(p geomodel.PointRecord) error {
		points = append(points, p)
		return nil
	})
	return header, points, err
}

func readRecord(r *bufio.Reader) ([]byte, error) {
	size, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	msg := make([]byte, size)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeHeader(msg []byte) (BinaryHeader, error) {
	var h BinaryHeader
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return h, protowire.ParseError(n)
		}
		msg = msg[n:]
		switch {
		case num == headerSpatialRef && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(msg)
			if n < 0 {
				return h, protowire.ParseError(n)
			}
			h.SpatialRef, msg = v, msg[n:]
		case num == headerGeometryType && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(msg)
			if n < 0 {
				return h, protowire.ParseError(n)
			}
			h.GeometryType, msg = v, msg[n:]
		case num == headerField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(msg)
			if n < 0 {
				return h, protowire.ParseError(n)
			}
			h.Fields, msg = append(h.Fields, v), msg[n:]
		case num == headerCellSize && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(msg)
			if n < 0 {
				return h, protowire.ParseError(n)
			}
			h.CellSize, msg = math.Float64frombits(v), msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return h, protowire.ParseError(n)
			}
			msg = msg[n:]
		}
	}
	return h, nil
}

func decodePoint(msg []byte) (geomodel.PointRecord, error) {
	var p geomodel.PointRecord
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return p, protowire.ParseError(n)
		}
		msg = msg[n:]
		switch {
		case num == pointID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(msg)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			p.ID, msg = int64(v), msg[n:]
		case num == pointX && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(msg)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			p.X, msg = math.Float64frombits(v), msg[n:]
		case num == pointY && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(msg)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			p.Y, msg = math.Float64frombits(v), msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return p, protowire.ParseError(n)
			}
			msg = msg[n:]
		}
	}
	return p, nil
}
