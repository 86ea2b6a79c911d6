package catdb

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFixture assembles a minimal, valid pdata-format file with one table
// "article" of two columns: "artno" (string) and "qty" (uint32).
func buildFixture(t *testing.T) string {
	t.Helper()

	var pool []byte

	// We lay the file out as: header | directory | pool, with the pool
	// offsets computed against a known directory size.
	const dirOffset = headerSize
	tableNameOff := uint32(0) // patched below once pool base is known

	// Pre-compute directory size: one table, two columns.
	dirSize := tableEntryFixedSize + 2*columnDescSize
	poolBase := dirOffset + uint32(dirSize)

	pool = nil
	mkString := func(s string) uint32 {
		off := poolBase + uint32(len(pool))
		b := make([]byte, 2+len(s))
		binary.BigEndian.PutUint16(b, uint16(len(s)))
		copy(b[2:], s)
		pool = append(pool, b...)
		return off
	}

	tableNameOff = mkString("article")
	artnoNameOff := mkString("artno")
	qtyNameOff := mkString("qty")
	artnoValOff := mkString("A100")

	rowSize := uint32(8) // 4 bytes string offset + 4 bytes uint32
	rows := uint32(1)
	rowOffset := poolBase + uint32(len(pool))

	row := make([]byte, rowSize)
	binary.BigEndian.PutUint32(row[0:4], artnoValOff)
	binary.BigEndian.PutUint32(row[4:8], 42)

	dir := make([]byte, dirSize)
	binary.BigEndian.PutUint32(dir[0:4], tableNameOff)
	binary.BigEndian.PutUint16(dir[4:6], 2)
	binary.BigEndian.PutUint32(dir[8:12], rows)
	binary.BigEndian.PutUint32(dir[12:16], rowSize)
	binary.BigEndian.PutUint32(dir[16:20], rowOffset)

	col := dir[tableEntryFixedSize:]
	binary.BigEndian.PutUint32(col[0:4], artnoNameOff)
	col[4] = byte(ColString)
	binary.BigEndian.PutUint32(col[8:12], 0)
	binary.BigEndian.PutUint32(col[12:16], 4)

	col2 := dir[tableEntryFixedSize+columnDescSize:]
	binary.BigEndian.PutUint32(col2[0:4], qtyNameOff)
	col2[4] = byte(ColUint32)
	binary.BigEndian.PutUint32(col2[8:12], 4)
	binary.BigEndian.PutUint32(col2[12:16], 4)

	hdr := make([]byte, headerSize)
	copy(hdr[0:6], magic[:])
	hdr[6], hdr[7] = 1, 0
	binary.BigEndian.PutUint32(hdr[8:12], poolBase)
	binary.BigEndian.PutUint32(hdr[12:16], uint32(len(pool)))
	binary.BigEndian.PutUint32(hdr[16:20], dirOffset)
	binary.BigEndian.PutUint32(hdr[20:24], 1)

	var buf []byte
	buf = append(buf, hdr...)
	buf = append(buf, dir...)
	buf = append(buf, pool...)
	buf = append(buf, row...)

	path := filepath.Join(t.TempDir(), "fixture.pdata")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestOpenAndReadRecords(t *testing.T) {
	path := buildFixture(t)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, []string{"article"}, r.Tables())

	rows, err := r.ReadRecords("article", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "A100", rows[0]["artno"].String())
	require.Equal(t, int64(42), rows[0]["qty"].Int())
}

func TestReadRecordsUnknownTable(t *testing.T) {
	path := buildFixture(t)
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadRecords("missing", 0)
	require.Error(t, err)
	var unk *UnknownTableError
	require.ErrorAs(t, err, &unk)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdata")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))
	_, err := Open(path)
	require.Error(t, err)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pdata"))
	require.Error(t, err)
	var ioe *IoError
	require.ErrorAs(t, err, &ioe)
}

func TestEmptyStringOffsets(t *testing.T) {
	path := buildFixture(t)
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	s, err := r.readString(0)
	require.NoError(t, err)
	require.Equal(t, "", s)

	s, err = r.readString(1)
	require.NoError(t, err)
	require.Equal(t, "", s)
}
