// Package catdb decodes the proprietary pdata/oam catalog database format:
// a string pool plus typed column tables addressed by big-endian offsets.
package catdb

import "fmt"

// IoError wraps a low-level file I/O failure.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("catdb: io error reading %q: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// FormatError signals a structurally invalid database file.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("catdb: format error: %s", e.Reason)
}

// UnknownTableError is returned when a caller asks for a table name the
// database does not contain.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("catdb: unknown table %q", e.Table)
}

// UnknownColumnError is returned when a caller asks for a column name a
// table schema does not contain.
type UnknownColumnError struct {
	Table, Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("catdb: table %q has no column %q", e.Table, e.Column)
}
