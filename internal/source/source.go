// Package source opens input and output files for the idmap pipelines.
// Inputs may be plain text, gzip (.gz), bzip2 (.bz2) or zip (.zip) compressed,
// or standard input when the path is "-". Outputs may be standard output ("-")
// or gzip compressed when the path ends in ".gz".
package source

import (
	"bufio"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Stdio is the path that denotes standard input or standard output.
const Stdio = "-"

// maxLineSize bounds a single scanned line. FASTA sequence lines and GFF
// attribute columns can be long.
const maxLineSize = 10 * 1024 * 1024

// Reader is a decompressing reader over a file or standard input.
type Reader struct {
	r       io.Reader
	closers []io.Closer // closed in reverse order
}

// Open opens path for reading, choosing a decoder from the file suffix.
func Open(path string) (*Reader, error) {
	if path == Stdio {
		return &Reader{r: os.Stdin}, nil
	}

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".zip") {
		return openZip(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	rd := &Reader{r: f, closers: []io.Closer{f}}

	switch {
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		rd.r = gz
		rd.closers = append(rd.closers, gz)
	case strings.HasSuffix(lower, ".bz2"):
		rd.r = bzip2.NewReader(f)
	}

	return rd, nil
}

// openZip reads the first entry of a zip archive.
func openZip(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if len(zr.File) == 0 {
		zr.Close()
		return nil, fmt.Errorf("open %s: zip archive is empty", path)
	}
	entry, err := zr.File[0].Open()
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("open zip entry %s: %w", zr.File[0].Name, err)
	}
	return &Reader{r: entry, closers: []io.Closer{zr, entry}}, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// Close releases the decoder and the underlying file. Standard input is left open.
func (r *Reader) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// NewScanner returns a line scanner sized for long annotation and sequence lines.
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)
	return scanner
}

// Writer is a file, gzip stream or standard output opened for writing.
type Writer struct {
	w       io.Writer
	closers []io.Closer
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Writer, error) {
	if path == Stdio {
		return &Writer{w: os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := &Writer{w: f, closers: []io.Closer{f}}

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz := gzip.NewWriter(f)
		w.w = gz
		w.closers = append(w.closers, gz)
	}
	return w, nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Close flushes any compressor and closes the file. Standard output is left open.
func (w *Writer) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}
