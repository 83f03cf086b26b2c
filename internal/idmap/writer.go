// Package idmap reads and writes the flat gene/transcript mapping table.
package idmap

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-idmap/internal/gff"
)

// Columns are the fixed mapping-table columns, in order.
var Columns = []string{
	"gene_id",
	"gene_name",
	"transcript_id",
	"transcript_name",
	"SeqID",
	"Start",
	"End",
	"Strand",
	"CDS_names",
	"CDS_starts",
	"CDS_ends",
	"CDS_length",
	"is_longest_mRNA",
}

// missingValue is written for extra columns with no value.
const missingValue = "-"

// Row is one transcript line of the mapping table.
type Row struct {
	GeneID         string
	GeneName       string
	TranscriptID   string
	TranscriptName string
	SeqID          string
	Start          int64
	End            int64
	Strand         string
	CDSNames       []string
	CDSStarts      []int64
	CDSEnds        []int64
	CDSLength      int64
	IsLongest      bool
	Extra          []string // one value per extra column, "-" when missing
}

// BuildRows flattens an index into rows in transcript order. A transcript
// whose gene cannot be resolved is logged and left out.
func BuildRows(idx *gff.Index, extra []gff.ExtraColumn, logger *zap.Logger) []Row {
	if logger == nil {
		logger = zap.NewNop()
	}

	rows := make([]Row, 0, idx.TranscriptCount())
	for _, t := range idx.Transcripts() {
		g := idx.Gene(t.GeneID)
		if g == nil {
			logger.Error("mRNA "+t.ID+" update failed. Please check.",
				zap.String("transcript", t.ID),
				zap.String("gene", t.GeneID))
			continue
		}

		row := Row{
			GeneID:         t.GeneID,
			GeneName:       g.Name,
			TranscriptID:   t.ID,
			TranscriptName: t.Name,
			SeqID:          t.SeqID,
			Start:          t.Start,
			End:            t.End,
			Strand:         t.Strand,
			CDSNames:       t.CDSNames,
			CDSStarts:      t.CDSStarts,
			CDSEnds:        t.CDSEnds,
			CDSLength:      t.CDSLength,
			IsLongest:      t.IsLongest(g),
		}
		for _, col := range extra {
			row.Extra = append(row.Extra, extraValue(col, g, t))
		}
		rows = append(rows, row)
	}
	return rows
}

// extraValue looks up col on the gene for gene columns and on the transcript
// otherwise.
func extraValue(col gff.ExtraColumn, g *gff.Gene, t *gff.Transcript) string {
	values := t.Extra
	if col.Kind == gff.KindGene {
		values = g.Extra
	}
	if v, ok := values[col]; ok {
		return v
	}
	return missingValue
}

// TabWriter writes the mapping table in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a mapping-table writer whose header lists the given
// extra columns after the fixed ones.
func NewTabWriter(w io.Writer, extra []gff.ExtraColumn) *TabWriter {
	columns := append([]string(nil), Columns...)
	for _, c := range extra {
		columns = append(columns, c.Header())
	}
	return &TabWriter{
		w:       bufio.NewWriter(w),
		columns: columns,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// WriteRows writes rows in order.
func (tw *TabWriter) WriteRows(rows []Row) error {
	for _, r := range rows {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Write writes a single row.
func (tw *TabWriter) Write(r Row) error {
	longest := "No"
	if r.IsLongest {
		longest = "Yes"
	}

	values := []string{
		r.GeneID,
		r.GeneName,
		r.TranscriptID,
		r.TranscriptName,
		r.SeqID,
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		r.Strand,
		strings.Join(r.CDSNames, ","),
		joinInts(r.CDSStarts),
		joinInts(r.CDSEnds),
		strconv.FormatInt(r.CDSLength, 10),
		longest,
	}
	values = append(values, r.Extra...)

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func joinInts(v []int64) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, ",")
}
