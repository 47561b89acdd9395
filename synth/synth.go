// Package synth expands a template set into a large synthetic contact
// dataset. Rows are derived one index at a time and handed straight to a
// Sink; only the template set and the current row are ever held in memory.
package synth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/jalad-shrimali/contact-gen/templates"
)

// DefaultTarget is the number of rows a run produces unless told otherwise.
const DefaultTarget = 1_000_000

const (
	phonePrefix  = "+91"
	emailDomain  = "@example.com"
	fallbackName = "Contact"
	fallbackMail = "contact"
)

// ErrWrite matches every *WriteError via errors.Is.
var ErrWrite = errors.New("write failed")

// WriteError reports a sink failure. Index is the 1-based row being written,
// 0 for the header.
type WriteError struct {
	Index int
	Err   error
}

func (e *WriteError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("write header: %v", e.Err)
	}
	return fmt.Sprintf("write row %d: %v", e.Index, e.Err)
}

func (e *WriteError) Unwrap() error        { return e.Err }
func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// Sink receives the header once, then every row in index order. A sink must
// not keep row after WriteRow returns.
type Sink interface {
	WriteHeader(schema []string) error
	WriteRow(row []string) error
}

// Options tunes a Generate call. The zero value is valid.
type Options struct {
	// ProgressEvery calls Progress after every n rows; 0 disables it.
	ProgressEvery int
	Progress      func(written int)
}

// Generate streams target rows built from set into s and returns the number
// of rows written. The first write failure aborts the run.
func Generate(set *templates.Set, target int, s Sink, opts Options) (int, error) {
	if set == nil || set.Len() == 0 {
		return 0, templates.ErrEmptyTemplateSet
	}
	if target < 1 {
		return 0, fmt.Errorf("target must be at least 1, got %d", target)
	}

	if err := s.WriteHeader(set.Schema); err != nil {
		return 0, &WriteError{Index: 0, Err: err}
	}

	m := len(set.Records)
	for i := 1; i <= target; i++ {
		row := Row(set.Schema, set.Records[(i-1)%m], i)
		if err := s.WriteRow(row); err != nil {
			return i - 1, &WriteError{Index: i, Err: err}
		}
		if opts.Progress != nil && opts.ProgressEvery > 0 && i%opts.ProgressEvery == 0 {
			opts.Progress(i)
		}
	}
	return target, nil
}

// Row derives output row i from tpl in schema order. id, name, phone and
// email are rewritten; every other column is copied as is. Derived values
// whose column is absent from schema are dropped.
func Row(schema templates.Schema, tpl templates.Record, i int) []string {
	original := tpl["name"]
	if original == "" {
		original = fallbackName
	}

	row := make([]string, len(schema))
	for j, col := range schema {
		switch col {
		case "id":
			row[j] = strconv.Itoa(i)
		case "name":
			row[j] = Name(original, i)
		case "phone":
			row[j] = Phone(i)
		case "email":
			row[j] = Email(original, i)
		default:
			row[j] = tpl[col]
		}
	}
	return row
}

// Name decorates a template name with the row index.
func Name(original string, i int) string {
	return original + " #" + strconv.Itoa(i)
}

// Phone is +91 followed by i zero-padded to at least ten digits.
func Phone(i int) string {
	return fmt.Sprintf("%s%010d", phonePrefix, i)
}

// Email builds "<sanitized name>.<i>@example.com".
func Email(name string, i int) string {
	return Sanitize(name) + "." + strconv.Itoa(i) + emailDomain
}

// Sanitize lower-cases letters and digits, turns everything else into '_'
// and trims '_' from both ends. An empty result becomes "contact".
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('_')
		}
	}
	if s := strings.Trim(b.String(), "_"); s != "" {
		return s
	}
	return fallbackMail
}
