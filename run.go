package main

import (
	"fmt"
	"log"

	"github.com/jalad-shrimali/contact-gen/sink"
	"github.com/jalad-shrimali/contact-gen/synth"
	"github.com/jalad-shrimali/contact-gen/templates"
)

type job struct {
	Input, Output, Format string
	Target                int
	CRLF                  bool
	ProgressEvery         int
}

func (c Config) job() job {
	return job{
		Input:         c.Input,
		Output:        c.Output,
		Format:        c.format(),
		Target:        c.Target,
		CRLF:          c.CRLF,
		ProgressEvery: c.ProgressEvery,
	}
}

// runJob loads the templates before touching the output, so a bad source
// never leaves a file behind.
func runJob(j job) (int, error) {
	set, err := templates.Load(j.Input)
	if err != nil {
		return 0, err
	}
	if j.Format == sink.FormatXLSX && j.Target > sink.MaxXLSXRows {
		return 0, fmt.Errorf("xlsx holds at most %d rows, target is %d", sink.MaxXLSXRows, j.Target)
	}

	out, err := sink.Open(j.Format, j.Output, j.CRLF)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", synth.ErrWrite, err)
	}

	log.Printf("generating %d contacts from %d templates into %s", j.Target, set.Len(), j.Output)
	n, err := synth.Generate(set, j.Target, out, synth.Options{
		ProgressEvery: j.ProgressEvery,
		Progress:      func(k int) { log.Printf("  %d/%d rows", k, j.Target) },
	})
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: flush %s: %v", synth.ErrWrite, j.Output, cerr)
	}
	return n, err
}
