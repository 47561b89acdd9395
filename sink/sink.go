// Package sink provides the destinations a generated dataset is streamed to.
package sink

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Sink accepts a header, then rows in order. Close flushes and releases the
// destination; it is safe to call more than once.
type Sink interface {
	WriteHeader(schema []string) error
	WriteRow(row []string) error
	Close() error
}

const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Formats lists every supported output format.
var Formats = []string{FormatCSV, FormatXLSX, FormatSQLite}

// FormatFor guesses an output format from a file extension, defaulting to CSV.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// Ext is the file extension written for format.
func Ext(format string) string {
	switch format {
	case FormatXLSX:
		return ".xlsx"
	case FormatSQLite:
		return ".db"
	default:
		return ".csv"
	}
}

// Open creates path and returns a sink for format. An empty format is
// inferred from the extension.
func Open(format, path string, crlf bool) (Sink, error) {
	if format == "" {
		format = FormatFor(path)
	}
	var (
		s   Sink
		err error
	)
	switch strings.ToLower(format) {
	case FormatCSV:
		s, err = CreateCSV(path, crlf)
	case FormatXLSX:
		s, err = CreateXLSX(path)
	case FormatSQLite:
		s, err = CreateSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
