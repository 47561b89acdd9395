package sink

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// MaxXLSXRows is the largest data row count a single sheet can hold under
// its header.
const MaxXLSXRows = excelize.TotalRows - 1

// XLSX streams rows into the first sheet of a new workbook. excelize spills
// the sheet to a temp file once it grows, so memory stays flat.
type XLSX struct {
	path   string
	f      *excelize.File
	sw     *excelize.StreamWriter
	next   int
	closed bool
}

func CreateXLSX(path string) (*XLSX, error) {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &XLSX{path: path, f: f, sw: sw, next: 1}, nil
}

func (s *XLSX) WriteHeader(schema []string) error { return s.write(schema) }

func (s *XLSX) WriteRow(row []string) error { return s.write(row) }

func (s *XLSX) write(row []string) error {
	if s.next > excelize.TotalRows {
		return fmt.Errorf("sheet full: more than %d rows", excelize.TotalRows)
	}
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(row))
	for i, v := range row {
		vals[i] = v
	}
	if err := s.sw.SetRow(cell, vals); err != nil {
		return err
	}
	s.next++
	return nil
}

// Close flushes the stream and saves the workbook to disk.
func (s *XLSX) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.sw.Flush()
	if err == nil {
		err = s.f.SaveAs(s.path)
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}
