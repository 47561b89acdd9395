package synth

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalad-shrimali/contact-gen/sink"
	"github.com/jalad-shrimali/contact-gen/templates"
)

type recorder struct {
	header     []string
	rows       [][]string
	failAt     int // 1-based row that fails, 0 never
	failHeader bool
}

func (r *recorder) WriteHeader(schema []string) error {
	if r.failHeader {
		return errors.New("permission denied")
	}
	if r.header != nil {
		return errors.New("header written twice")
	}
	r.header = append([]string(nil), schema...)
	return nil
}

func (r *recorder) WriteRow(row []string) error {
	if r.header == nil {
		return errors.New("row before header")
	}
	if r.failAt > 0 && len(r.rows)+1 == r.failAt {
		return errors.New("disk full")
	}
	r.rows = append(r.rows, row)
	return nil
}

func asha() *templates.Set {
	return &templates.Set{
		Schema: templates.Schema{"id", "name", "phone", "email", "address"},
		Records: []templates.Record{
			{"id": "1", "name": "Asha Rao", "phone": "+911111111111", "email": "a@x.com", "address": "X"},
		},
	}
}

func TestGenerateSingleTemplate(t *testing.T) {
	rec := &recorder{}
	n, err := Generate(asha(), 3, rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want := [][]string{
		{"1", "Asha Rao #1", "+910000000001", "asha_rao.1@example.com", "X"},
		{"2", "Asha Rao #2", "+910000000002", "asha_rao.2@example.com", "X"},
		{"3", "Asha Rao #3", "+910000000003", "asha_rao.3@example.com", "X"},
	}
	assert.Equal(t, []string{"id", "name", "phone", "email", "address"}, rec.header)
	if diff := cmp.Diff(want, rec.rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCyclesTemplates(t *testing.T) {
	set := &templates.Set{
		Schema: templates.Schema{"id", "name", "address"},
		Records: []templates.Record{
			{"id": "a", "name": "A", "address": "first"},
			{"id": "b", "name": "B", "address": "second"},
			{"id": "c", "name": "C", "address": "third"},
		},
	}
	rec := &recorder{}
	n, err := Generate(set, 10, rec, Options{})
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Len(t, rec.rows, 10)

	m := set.Len()
	for i := 1; i <= 10; i++ {
		for k := i + m; k <= 10; k += m {
			assert.Equal(t, rec.rows[i-1][2], rec.rows[k-1][2], "rows %d and %d", i, k)
		}
	}
	assert.Equal(t, "C #6", rec.rows[5][1])
	assert.Equal(t, "A #10", rec.rows[9][1])
}

func TestGenerateNameFallback(t *testing.T) {
	for _, tc := range []struct {
		desc string
		set  *templates.Set
	}{
		{"empty name", &templates.Set{
			Schema:  templates.Schema{"id", "name", "email"},
			Records: []templates.Record{{"id": "9", "name": "", "email": "x"}},
		}},
		{"no name column", &templates.Set{
			Schema:  templates.Schema{"id", "email"},
			Records: []templates.Record{{"id": "9", "email": "x"}},
		}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			rec := &recorder{}
			_, err := Generate(tc.set, 2, rec, Options{})
			require.NoError(t, err)

			last := len(tc.set.Schema) - 1
			assert.Equal(t, "contact.2@example.com", rec.rows[1][last])
			if tc.set.Schema[1] == "name" {
				assert.Equal(t, "Contact #2", rec.rows[1][1])
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	for in, want := range map[string]string{
		"Asha Rao":     "asha_rao",
		"O'Brien, Jr.": "o_brien__jr",
		"__x__":        "x",
		"!!!":          "contact",
		"":             "contact",
		"Ünal 2":       "ünal_2",
		"Ravi.K":       "ravi_k",
	} {
		assert.Equal(t, want, Sanitize(in), "Sanitize(%q)", in)
	}
	assert.Equal(t, "o_brien__jr.7@example.com", Email("O'Brien, Jr.", 7))
}

func TestPhoneWidth(t *testing.T) {
	assert.Equal(t, "+910000000001", Phone(1))
	assert.Equal(t, "+910001000000", Phone(DefaultTarget))
	assert.Equal(t, "+919999999999", Phone(9_999_999_999))
	assert.Equal(t, "+9112345678901", Phone(12_345_678_901))
}

func TestGenerateDeterministic(t *testing.T) {
	run := func() []byte {
		var buf bytes.Buffer
		w := sink.NewCSV(&buf, true)
		_, err := Generate(asha(), 500, w, Options{})
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}
	first, second := run(), run()
	assert.Equal(t, first, second)

	lines := strings.Split(strings.TrimSuffix(string(first), "\r\n"), "\r\n")
	assert.Len(t, lines, 501)
	assert.Equal(t, "id,name,phone,email,address", lines[0])
	assert.Equal(t, "500,Asha Rao #500,+910000000500,asha_rao.500@example.com,X", lines[500])
}

func TestGenerateWriteFailure(t *testing.T) {
	rec := &recorder{failAt: 4}
	n, err := Generate(asha(), 10, rec, Options{})
	require.Error(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, rec.rows, 3)
	assert.ErrorIs(t, err, ErrWrite)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 4, we.Index)
	assert.EqualError(t, err, "write row 4: disk full")
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(&templates.Set{Schema: templates.Schema{"id"}}, 1, &recorder{}, Options{})
	assert.ErrorIs(t, err, templates.ErrEmptyTemplateSet)

	_, err = Generate(asha(), 0, &recorder{}, Options{})
	assert.Error(t, err)
}

func TestGenerateProgress(t *testing.T) {
	var seen []int
	_, err := Generate(asha(), 25, &recorder{}, Options{
		ProgressEvery: 10,
		Progress:      func(n int) { seen = append(seen, n) },
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, seen)
}

func TestGenerateHeaderWriteFailure(t *testing.T) {
	rec := &recorder{failHeader: true}
	n, err := Generate(asha(), 3, rec, Options{})
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, rec.rows)
	assert.ErrorIs(t, err, ErrWrite)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 0, we.Index)
	assert.EqualError(t, err, "write header: permission denied")
}

func TestGenerateBOMHeaderRewritesID(t *testing.T) {
	set, err := templates.LoadCSV(strings.NewReader("\ufeffid,name\n42,Asha\n"))
	require.NoError(t, err)

	rec := &recorder{}
	_, err = Generate(set, 1, rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Asha #1"}, rec.rows[0])
}

func TestGenerateCSVPassesFieldsThrough(t *testing.T) {
	for _, addr := range []string{"a\rb", "l1\nl2"} {
		set := &templates.Set{
			Schema:  templates.Schema{"id", "name", "address"},
			Records: []templates.Record{{"id": "x", "name": "A", "address": addr}},
		}
		var buf bytes.Buffer
		w := sink.NewCSV(&buf, false)
		_, err := Generate(set, 1, w, Options{})
		require.NoError(t, err)
		require.NoError(t, w.Close())

		assert.Equal(t, "id,name,address\n1,A #1,\""+addr+"\"\n", buf.String())
	}
}
