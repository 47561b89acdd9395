package sink

import (
	"encoding/csv"
	"io"
	"os"
)

// CSV writes rows with encoding/csv. Fields are quoted only when they hold
// the delimiter, a quote or a line break.
type CSV struct {
	w      *csv.Writer
	c      io.Closer
	closed bool
}

// NewCSV wraps w. crlf selects "\r\n" record terminators.
func NewCSV(w io.Writer, crlf bool) *CSV {
	cw := csv.NewWriter(w)
	cw.UseCRLF = crlf
	return &CSV{w: cw}
}

// CreateCSV truncates or creates path.
func CreateCSV(path string, crlf bool) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := NewCSV(f, crlf)
	s.c = f
	return s, nil
}

func (s *CSV) WriteHeader(schema []string) error { return s.w.Write(schema) }

func (s *CSV) WriteRow(row []string) error { return s.w.Write(row) }

func (s *CSV) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.Flush()
	err := s.w.Error()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
