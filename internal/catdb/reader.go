package catdb

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Reader decodes a single pdata/oam database file. A Reader is exclusively
// owned by its caller: string-pool lookups issue seeks, so a Reader is not
// safe to share across goroutines without external synchronization.
type Reader struct {
	path   string
	f      *os.File
	size   int64
	hdr    header
	tables map[string]Schema
	order  []string
}

const tableEntryFixedSize = 20
const columnDescSize = 16

// Open parses the file's header and table directory and returns a Reader
// ready to serve ReadRecords calls. The row regions themselves are not
// read until requested.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &IoError{Path: path, Err: err}
	}

	hdrBuf := make([]byte, headerSize)
	if _, err := f.ReadAt(hdrBuf, 0); err != nil {
		f.Close()
		return nil, &IoError{Path: path, Err: err}
	}
	hdr, err := parseHeader(hdrBuf, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}

	r := &Reader{path: path, f: f, size: info.Size(), hdr: hdr, tables: map[string]Schema{}}
	if err := r.readDirectory(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Tables returns the set of table names declared in the directory, in
// file order.
func (r *Reader) Tables() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Schema returns the decoded schema for a table.
func (r *Reader) Schema(table string) (Schema, error) {
	s, ok := r.tables[table]
	if !ok {
		return Schema{}, &UnknownTableError{Table: table}
	}
	return s, nil
}

func (r *Reader) readDirectory() error {
	if uint64(r.hdr.dirOffset)+uint64(r.hdr.dirCount)*tableEntryFixedSize > uint64(r.size) {
		return &FormatError{Reason: "table directory extends past end of file"}
	}
	pos := int64(r.hdr.dirOffset)
	for i := uint32(0); i < r.hdr.dirCount; i++ {
		entry := make([]byte, tableEntryFixedSize)
		if _, err := r.f.ReadAt(entry, pos); err != nil {
			return &IoError{Path: r.path, Err: err}
		}
		nameOff := binary.BigEndian.Uint32(entry[0:4])
		colCount := binary.BigEndian.Uint16(entry[4:6])
		rowCount := binary.BigEndian.Uint32(entry[8:12])
		rowSize := binary.BigEndian.Uint32(entry[12:16])
		rowOffset := binary.BigEndian.Uint32(entry[16:20])

		name, err := r.readString(nameOff)
		if err != nil {
			return err
		}

		colBuf := make([]byte, int(colCount)*columnDescSize)
		if len(colBuf) > 0 {
			if _, err := r.f.ReadAt(colBuf, pos+tableEntryFixedSize); err != nil {
				return &IoError{Path: r.path, Err: err}
			}
		}
		columns := make([]Column, 0, colCount)
		for c := 0; c < int(colCount); c++ {
			cb := colBuf[c*columnDescSize : (c+1)*columnDescSize]
			cNameOff := binary.BigEndian.Uint32(cb[0:4])
			cType := ColumnType(cb[4])
			cFlags := ColumnFlag(binary.BigEndian.Uint16(cb[5:7]))
			cOffset := binary.BigEndian.Uint32(cb[8:12])
			cSize := binary.BigEndian.Uint32(cb[12:16])

			cName, err := r.readString(cNameOff)
			if err != nil {
				return err
			}
			if cOffset+cSize > rowSize {
				return &FormatError{Reason: fmt.Sprintf("column %q offset+size exceeds row_size in table %q", cName, name)}
			}
			columns = append(columns, Column{Name: cName, Type: cType, Offset: cOffset, Size: cSize, Flags: cFlags})
		}

		if uint64(rowOffset)+uint64(rowCount)*uint64(rowSize) > uint64(r.size) {
			return &FormatError{Reason: fmt.Sprintf("row region for table %q extends past end of file", name)}
		}

		r.tables[name] = Schema{Name: name, Columns: columns, RowCount: rowCount, RowSize: rowSize, RowOffset: rowOffset}
		r.order = append(r.order, name)
		pos += tableEntryFixedSize + int64(colCount)*columnDescSize
	}
	return nil
}

// readString resolves a pool offset to its UTF-8 text. Offsets 0 and 1
// both denote the empty string.
func (r *Reader) readString(off uint32) (string, error) {
	if off == 0 || off == 1 {
		return "", nil
	}
	if off < r.hdr.poolOffset || off >= r.hdr.poolOffset+r.hdr.poolSize {
		return "", &FormatError{Reason: fmt.Sprintf("string offset %d outside pool region", off)}
	}
	lenBuf := make([]byte, 2)
	if _, err := r.f.ReadAt(lenBuf, int64(off)); err != nil {
		return "", &IoError{Path: r.path, Err: err}
	}
	strLen := binary.BigEndian.Uint16(lenBuf)
	if uint64(off)+2+uint64(strLen) > uint64(r.hdr.poolOffset)+uint64(r.hdr.poolSize) {
		return "", &FormatError{Reason: "string extends past end of pool"}
	}
	data := make([]byte, strLen)
	if strLen > 0 {
		if _, err := r.f.ReadAt(data, int64(off)+2); err != nil {
			return "", &IoError{Path: r.path, Err: err}
		}
	}
	// trailing NUL permitted but not required
	if n := len(data); n > 0 && data[n-1] == 0 {
		data = data[:n-1]
	}
	return string(data), nil
}

// ReadRecords decodes up to limit rows of table (all rows when limit <= 0).
func (r *Reader) ReadRecords(table string, limit int) ([]Row, error) {
	schema, err := r.Schema(table)
	if err != nil {
		return nil, err
	}

	n := int(schema.RowCount)
	if limit > 0 && limit < n {
		n = limit
	}

	rows := make([]Row, 0, n)
	rowBuf := make([]byte, schema.RowSize)
	for i := 0; i < n; i++ {
		pos := int64(schema.RowOffset) + int64(i)*int64(schema.RowSize)
		if _, err := r.f.ReadAt(rowBuf, pos); err != nil {
			return nil, &IoError{Path: r.path, Err: err}
		}
		row, err := r.decodeRow(schema, rowBuf)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Reader) decodeRow(schema Schema, buf []byte) (Row, error) {
	row := make(Row, len(schema.Columns))
	for _, col := range schema.Columns {
		field := buf[col.Offset : col.Offset+col.Size]
		v, err := r.decodeColumn(col, field)
		if err != nil {
			return nil, fmt.Errorf("table %q column %q: %w", schema.Name, col.Name, err)
		}
		row[col.Name] = v
	}
	return row, nil
}

func (r *Reader) decodeColumn(col Column, field []byte) (Value, error) {
	switch col.Type {
	case ColString:
		if len(field) < 4 {
			return Value{}, &FormatError{Reason: "string column shorter than 4 bytes"}
		}
		off := binary.BigEndian.Uint32(field[:4])
		s, err := r.readString(off)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case ColInt8:
		return IntValue(int64(int8(field[0]))), nil
	case ColUint8:
		return IntValue(int64(field[0])), nil
	case ColInt16:
		return IntValue(int64(int16(binary.BigEndian.Uint16(field)))), nil
	case ColUint16:
		return UintValue(uint32(binary.BigEndian.Uint16(field))), nil
	case ColInt32:
		return IntValue(int64(int32(binary.BigEndian.Uint32(field)))), nil
	case ColUint32:
		return UintValue(binary.BigEndian.Uint32(field)), nil
	case ColInt64:
		return IntValue(int64(binary.BigEndian.Uint64(field))), nil
	case ColFloat32:
		bits := binary.BigEndian.Uint32(field)
		return FloatValue(float64(math.Float32frombits(bits)), true), nil
	case ColFloat64:
		bits := binary.BigEndian.Uint64(field)
		return FloatValue(math.Float64frombits(bits), false), nil
	case ColBlob:
		if len(field) < 4 {
			return Value{}, &FormatError{Reason: "blob column shorter than 4 bytes"}
		}
		return BlobValue(binary.BigEndian.Uint32(field[:4])), nil
	default:
		return Value{}, &FormatError{Reason: fmt.Sprintf("unknown column type tag %d", col.Type)}
	}
}
