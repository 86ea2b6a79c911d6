package catdb

import "encoding/binary"

// Canonical on-disk header, 32 bytes, all multi-byte integers big-endian:
//
//	offset  size  field
//	0       6     magic "OFMLDB"
//	6       1     version major
//	7       1     version minor
//	8       4     string pool absolute offset (u32be)
//	12      4     string pool length (u32be)
//	16      4     table directory absolute offset (u32be)
//	20      4     table directory entry count (u32be)
//	24      8     reserved
//
// A second, legacy layout has been observed in the field where the
// string-pool and table-directory locator pairs are swapped (offset 8 is
// the table directory, offset 16 is the string pool). catdb.Open detects
// which layout a file uses; see parseHeader.
const headerSize = 32

var magic = [6]byte{'O', 'F', 'M', 'L', 'D', 'B'}

type header struct {
	versionMajor, versionMinor byte
	poolOffset, poolSize       uint32
	dirOffset, dirCount        uint32
	legacy                     bool
}

func parseHeader(buf []byte, fileSize int64) (header, error) {
	if len(buf) < headerSize {
		return header{}, &FormatError{Reason: "file shorter than header"}
	}
	for i, b := range magic {
		if buf[i] != b {
			return header{}, &FormatError{Reason: "bad magic signature"}
		}
	}

	major, minor := buf[6], buf[7]
	a1 := binary.BigEndian.Uint32(buf[8:12])
	a2 := binary.BigEndian.Uint32(buf[12:16])
	b1 := binary.BigEndian.Uint32(buf[16:20])
	b2 := binary.BigEndian.Uint32(buf[20:24])

	canonical := header{
		versionMajor: major, versionMinor: minor,
		poolOffset: a1, poolSize: a2,
		dirOffset: b1, dirCount: b2,
	}
	legacy := header{
		versionMajor: major, versionMinor: minor,
		poolOffset: b1, poolSize: b2,
		dirOffset: a1, dirCount: a2,
		legacy: true,
	}

	canOK := canonical.dirOffset >= headerSize && uint64(canonical.dirOffset) <= uint64(fileSize) &&
		canonical.poolOffset >= headerSize && uint64(canonical.poolOffset)+uint64(canonical.poolSize) <= uint64(fileSize)
	legOK := legacy.dirOffset >= headerSize && uint64(legacy.dirOffset) <= uint64(fileSize) &&
		legacy.poolOffset >= headerSize && uint64(legacy.poolOffset)+uint64(legacy.poolSize) <= uint64(fileSize)

	switch {
	case canOK:
		return canonical, nil
	case legOK:
		return legacy, nil
	default:
		return header{}, &FormatError{Reason: "neither canonical nor legacy header layout fits the file"}
	}
}
