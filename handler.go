package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jalad-shrimali/contact-gen/sink"
	"github.com/jalad-shrimali/contact-gen/templates"
)

type server struct {
	cfg Config
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.UploadAndGenerate)
	mux.Handle("/download/",
		http.StripPrefix("/download/", http.FileServer(http.Dir(s.cfg.OutputDir))))
	return mux
}

/* ──────────── HTTP endpoint ──────────── */

// UploadAndGenerate takes a multipart template file and writes the expanded
// dataset under the output dir. Optional form values: count, format.
func (s *server) UploadAndGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)
		return
	}

	count := s.cfg.Target
	if v := strings.TrimSpace(r.FormValue("count")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.cfg.MaxTarget {
			http.Error(w, fmt.Sprintf("count must be between 1 and %d", s.cfg.MaxTarget), http.StatusBadRequest)
			return
		}
		count = n
	}
	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = s.cfg.format()
	}
	if !slices.Contains(sink.Formats, format) {
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(hdr.Filename)
	if name == "." || name == string(filepath.Separator) {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}
	for _, d := range []string{s.cfg.UploadDir, s.cfg.OutputDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	src := filepath.Join(s.cfg.UploadDir, name)
	if err := saveUploaded(file, src); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	dst := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s_%d%s", stem, count, sink.Ext(format)))
	n, err := runJob(job{
		Input:         src,
		Output:        dst,
		Format:        format,
		Target:        count,
		CRLF:          s.cfg.CRLF,
		ProgressEvery: s.cfg.ProgressEvery,
	})
	if err != nil {
		http.Error(w, "generation failed: "+err.Error(), statusFor(err))
		return
	}

	fmt.Fprintf(w, "Generated %d contacts: /download/%s\n", n, filepath.Base(dst))
}

// statusFor treats bad uploads as client errors.
func statusFor(err error) int {
	var pe *csv.ParseError
	switch {
	case errors.As(err, &pe):
		return http.StatusBadRequest
	case errors.Is(err, templates.ErrEmptySchema),
		errors.Is(err, templates.ErrEmptyTemplateSet),
		errors.Is(err, templates.ErrMissingInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func saveUploaded(src io.Reader, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return err
	}
	return f.Close()
}
