// Package testdb builds small, valid pdata/oam-format fixture files for
// tests across the catdb-consuming packages, so each of them does not
// need to hand-roll the binary layout.
package testdb

import (
	"encoding/binary"
	"math"
	"os"
)

// ColType mirrors catdb.ColumnType without importing it, keeping this
// package dependency-free of the reader it feeds fixtures to.
type ColType byte

const (
	TypeInt32  ColType = 5
	TypeUint32 ColType = 6
	TypeFloat64 ColType = 9
	TypeString ColType = 10
)

// ColDef describes one column of a fixture table.
type ColDef struct {
	Name string
	Type ColType
	Size uint32
}

// TableDef describes one fixture table: its columns and the rows to
// encode, each row given as column-name -> value (string, int64, or
// float64 depending on the column's declared type).
type TableDef struct {
	Name    string
	Columns []ColDef
	Rows    []map[string]interface{}
}

type builder struct {
	pool    []byte
	strings map[string]uint32
}

func (b *builder) intern(poolBase uint32, s string) uint32 {
	if off, ok := b.strings[s]; ok {
		return off
	}
	off := poolBase + uint32(len(b.pool))
	buf := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(buf, uint16(len(s)))
	copy(buf[2:], s)
	b.pool = append(b.pool, buf...)
	b.strings[s] = off
	return off
}

const headerSize = 32
const tableEntryFixedSize = 20
const columnDescSize = 16

// Write encodes tables into a single pdata-format file at path.
func Write(path string, tables []TableDef) error {
	dirSize := 0
	for _, t := range tables {
		dirSize += tableEntryFixedSize + len(t.Columns)*columnDescSize
	}
	poolBase := uint32(headerSize + dirSize)

	b := &builder{strings: map[string]uint32{}}
	var dir []byte
	var rowsData []byte
	var rowDataBase uint32

	// First pass: intern all strings (table/column names + string values)
	// so the pool size, and thus the row-region base, is known before we
	// lay out row bytes.
	for _, t := range tables {
		b.intern(poolBase, t.Name)
		for _, c := range t.Columns {
			b.intern(poolBase, c.Name)
		}
		for _, row := range t.Rows {
			for _, c := range t.Columns {
				if c.Type == TypeString {
					if v, ok := row[c.Name].(string); ok {
						b.intern(poolBase, v)
					}
				}
			}
		}
	}

	rowDataBase = poolBase + uint32(len(b.pool))
	rowOffset := rowDataBase

	for _, t := range tables {
		rowSize := uint32(0)
		for _, c := range t.Columns {
			rowSize += c.Size
		}

		entry := make([]byte, tableEntryFixedSize)
		binary.BigEndian.PutUint32(entry[0:4], b.strings[t.Name])
		binary.BigEndian.PutUint16(entry[4:6], uint16(len(t.Columns)))
		binary.BigEndian.PutUint32(entry[8:12], uint32(len(t.Rows)))
		binary.BigEndian.PutUint32(entry[12:16], rowSize)
		binary.BigEndian.PutUint32(entry[16:20], rowOffset)
		dir = append(dir, entry...)

		off := uint32(0)
		for _, c := range t.Columns {
			cb := make([]byte, columnDescSize)
			binary.BigEndian.PutUint32(cb[0:4], b.strings[c.Name])
			cb[4] = byte(c.Type)
			binary.BigEndian.PutUint32(cb[8:12], off)
			binary.BigEndian.PutUint32(cb[12:16], c.Size)
			dir = append(dir, cb...)
			off += c.Size
		}

		for _, row := range t.Rows {
			rb := make([]byte, rowSize)
			colOff := uint32(0)
			for _, c := range t.Columns {
				field := rb[colOff : colOff+c.Size]
				switch c.Type {
				case TypeString:
					s, _ := row[c.Name].(string)
					binary.BigEndian.PutUint32(field, b.strings[s])
				case TypeInt32:
					v, _ := row[c.Name].(int64)
					binary.BigEndian.PutUint32(field, uint32(int32(v)))
				case TypeUint32:
					v, _ := row[c.Name].(int64)
					binary.BigEndian.PutUint32(field, uint32(v))
				case TypeFloat64:
					v, _ := row[c.Name].(float64)
					binary.BigEndian.PutUint64(field, math.Float64bits(v))
				}
				colOff += c.Size
			}
			rowsData = append(rowsData, rb...)
			rowOffset += rowSize
		}
	}

	hdr := make([]byte, headerSize)
	copy(hdr[0:6], []byte("OFMLDB"))
	hdr[6], hdr[7] = 1, 0
	binary.BigEndian.PutUint32(hdr[8:12], poolBase)
	binary.BigEndian.PutUint32(hdr[12:16], uint32(len(b.pool)))
	binary.BigEndian.PutUint32(hdr[16:20], headerSize)
	binary.BigEndian.PutUint32(hdr[20:24], uint32(len(tables)))

	var out []byte
	out = append(out, hdr...)
	out = append(out, dir...)
	out = append(out, b.pool...)
	out = append(out, rowsData...)

	return os.WriteFile(path, out, 0o644)
}
