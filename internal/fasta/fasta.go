// Package fasta indexes FASTA sequences by identifier and writes selected
// sequences back out.
package fasta

import (
	"bufio"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	biofasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/inodb/vibe-idmap/internal/source"
)

// Table maps sequence identifiers to raw sequences.
type Table struct {
	sequences map[string]string // id -> sequence
	order     []string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{sequences: make(map[string]string)}
}

// Put stores seq under id. A repeated id overwrites the earlier sequence
// (last-wins) and keeps its first-seen position.
func (t *Table) Put(id, seq string) {
	if _, ok := t.sequences[id]; !ok {
		t.order = append(t.order, id)
	}
	t.sequences[id] = seq
}

// GetSequence returns the sequence for id.
func (t *Table) GetSequence(id string) (string, bool) {
	seq, ok := t.sequences[id]
	return seq, ok
}

// HasSequence checks if a sequence exists for id.
func (t *Table) HasSequence(id string) bool {
	_, ok := t.sequences[id]
	return ok
}

// SequenceCount returns the number of loaded sequences.
func (t *Table) SequenceCount() int {
	return len(t.sequences)
}

// IDs returns identifiers in first-seen order.
func (t *Table) IDs() []string {
	return t.order
}

// Load reads the FASTA file at path ("-" for stdin, compressed files are
// decoded transparently).
func Load(path string) (*Table, error) {
	r, err := source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read FASTA: %w", err)
	}
	defer r.Close()

	return Parse(r)
}

// Parse reads FASTA content. The identifier of a record is the header text up
// to the first whitespace; sequence lines are concatenated.
func Parse(r io.Reader) (*Table, error) {
	t := NewTable()

	sc := seqio.NewScanner(biofasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		t.Put(s.ID, lettersToString(s.Seq))
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("read FASTA: %w", err)
	}

	return t, nil
}

func lettersToString(l alphabet.Letters) string {
	b := make([]byte, len(l))
	for i, c := range l {
		b[i] = byte(c)
	}
	return string(b)
}

// Writer writes records as a header line followed by a single sequence line.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a FASTA writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record.
func (fw *Writer) Write(id, seq string) error {
	_, err := fmt.Fprintf(fw.w, ">%s\n%s\n", id, seq)
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (fw *Writer) Flush() error {
	return fw.w.Flush()
}
