// Package templates loads the contact rows that seed a generated dataset.
//
// A source is a tabular file whose first row is the header. Every following
// row becomes a Record keyed by header name, in input order.
package templates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingInput     = errors.New("input file not found")
	ErrEmptySchema      = errors.New("no header found in input")
	ErrEmptyTemplateSet = errors.New("no template rows found in input")
)

// Schema is the ordered list of column names shared by input and output.
type Schema []string

// Record is one template row keyed by column name.
type Record map[string]string

// Set is the immutable result of a load.
type Set struct {
	Schema  Schema
	Records []Record
}

// Len reports the number of template rows.
func (s *Set) Len() int { return len(s.Records) }

// Load reads path fully. Files ending in .xlsx are read from their first
// sheet, anything else is parsed as CSV.
func Load(path string) (*Set, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// LoadCSV parses a CSV stream. Blank lines are skipped by the reader.
func LoadCSV(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are padded or trimmed below

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptySchema
	}
	if err != nil {
		return nil, err
	}

	b, err := newBuilder(header)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		b.add(rec)
	}
	return b.done()
}

// LoadXLSX reads the first sheet of an Excel workbook.
func LoadXLSX(path string) (*Set, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, err
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptySchema)
	}
	rows, err := x.Rows(sheets[0])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var b *builder
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			continue
		}
		if b == nil {
			if b, err = newBuilder(cols); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			continue
		}
		b.add(cols)
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptySchema)
	}
	set, err := b.done()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

type builder struct {
	schema  Schema
	records []Record
}

// utf8BOM is written by Excel's "CSV UTF-8" export.
const utf8BOM = "\ufeff"

func newBuilder(header []string) (*builder, error) {
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	blank := true
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, ErrEmptySchema
	}
	return &builder{schema: Schema(header)}, nil
}

// add keys rec by the schema. Missing trailing cells become "", extra cells
// are dropped.
func (b *builder) add(rec []string) {
	r := make(Record, len(b.schema))
	for i, name := range b.schema {
		if i < len(rec) {
			r[name] = rec[i]
		} else {
			r[name] = ""
		}
	}
	b.records = append(b.records, r)
}

func (b *builder) done() (*Set, error) {
	if len(b.records) == 0 {
		return nil, ErrEmptyTemplateSet
	}
	return &Set{Schema: b.schema, Records: b.records}, nil
}
