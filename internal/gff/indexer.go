package gff

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-idmap/internal/source"
)

// Indexer builds an Index from GFF3 feature lines.
type Indexer struct {
	transcriptType string
	extraByKind    map[string][]ExtraColumn
	logger         *zap.Logger
}

// NewIndexer creates an indexer treating features of transcriptType as
// transcripts. An empty transcriptType means "mRNA". Extra columns are
// collected from gene, transcript and CDS features.
func NewIndexer(transcriptType string, extra []ExtraColumn) *Indexer {
	if transcriptType == "" {
		transcriptType = KindMRNA
	}
	byKind := make(map[string][]ExtraColumn)
	for _, c := range extra {
		byKind[c.Kind] = append(byKind[c.Kind], c)
	}
	return &Indexer{
		transcriptType: transcriptType,
		extraByKind:    byKind,
		logger:         zap.NewNop(),
	}
}

// SetLogger sets the logger for orphan-transcript warnings.
func (ix *Indexer) SetLogger(l *zap.Logger) {
	ix.logger = l
}

// Load indexes the annotation file at path ("-" for stdin, compressed files
// are decoded transparently).
func (ix *Indexer) Load(path string) (*Index, error) {
	r, err := source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read GFF: %w", err)
	}
	defer r.Close()

	return ix.Parse(r)
}

// feature is one parsed GFF line.
type feature struct {
	seqID       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// Parse indexes GFF content. Malformed lines are skipped silently; CDS lines
// whose parent transcript has not been seen contribute nothing.
func (ix *Indexer) Parse(r io.Reader) (*Index, error) {
	idx := NewIndex()

	scanner := source.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		feat, ok := parseLine(line)
		if !ok {
			continue
		}

		switch feat.featureType {
		case KindGene:
			id := feat.attributes["ID"]
			g := &Gene{
				ID:   id,
				Name: attrOr(feat.attributes, "Name", id),
			}
			g.Extra = ix.extraValues(KindGene, feat.attributes)
			idx.PutGene(g)

		case ix.transcriptType:
			id := feat.attributes["ID"]
			t := &Transcript{
				ID:     id,
				GeneID: attrOr(feat.attributes, "Parent", id),
				Name:   attrOr(feat.attributes, "Name", id),
				SeqID:  feat.seqID,
				Start:  feat.start,
				End:    feat.end,
				Strand: feat.strand,
			}
			t.Extra = ix.extraValues(ix.transcriptType, feat.attributes)
			idx.PutTranscript(t)

		case KindCDS:
			t, ok := idx.transcripts[feat.attributes["Parent"]]
			if !ok {
				continue
			}
			t.addCDS(feat.attributes["ID"], feat.start, feat.end)
			for col, v := range ix.extraValues(KindCDS, feat.attributes) {
				if t.Extra == nil {
					t.Extra = make(map[ExtraColumn]string)
				}
				t.Extra[col] = v
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read GFF: %w", err)
	}

	ix.resolveLongest(idx)

	ix.logger.Debug("indexed annotation",
		zap.Int("genes", idx.GeneCount()),
		zap.Int("transcripts", idx.TranscriptCount()))

	return idx, nil
}

// resolveLongest points every gene at its child transcript with the largest
// CDS length. Transcripts are visited in first-seen order and only a strictly
// longer transcript replaces the current pick, so ties keep the earliest one.
// A transcript whose gene is unknown gets a synthetic gene named after itself,
// keyed by its own ID, or by its declared parent when a real gene already
// holds that ID.
func (ix *Indexer) resolveLongest(idx *Index) {
	for _, id := range idx.transcriptOrder {
		t := idx.transcripts[id]
		if g, ok := idx.genes[t.GeneID]; ok {
			if t.CDSLength > g.MaxCDSLength {
				g.MaxCDSLength = t.CDSLength
				g.LongestTranscript = t.ID
			}
			continue
		}

		geneID := t.ID
		if _, taken := idx.genes[geneID]; taken {
			geneID = t.GeneID
		}

		ix.logger.Warn(fmt.Sprintf("mRNA %s's gene parent not found in gene id line. Map its gene id/name to itself (%s).", t.ID, t.ID),
			zap.String("transcript", t.ID),
			zap.String("parent", t.GeneID),
			zap.String("gene", geneID))

		t.GeneID = geneID
		idx.PutGene(&Gene{
			ID:                geneID,
			Name:              t.ID,
			LongestTranscript: t.ID,
			MaxCDSLength:      t.CDSLength,
		})
	}
}

// extraValues extracts the requested attributes of a feature of the given
// kind. Absent attributes are recorded as empty strings.
func (ix *Indexer) extraValues(kind string, attrs map[string]string) map[ExtraColumn]string {
	cols := ix.extraByKind[kind]
	if len(cols) == 0 {
		return nil
	}
	values := make(map[ExtraColumn]string, len(cols))
	for _, c := range cols {
		values[c] = attrs[c.Key]
	}
	return values
}

// parseLine parses a single GFF line. It reports false for lines that do not
// have exactly nine columns or whose coordinates are not integers.
func parseLine(line string) (*feature, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != 9 {
		return nil, false
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, false
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, false
	}

	return &feature{
		seqID:       fields[0],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, true
}

// parseAttributes parses the GFF3 attribute column.
// Format: key=value;key=value;... Tokens without '=' are ignored and a
// repeated key keeps its last value.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(attrStr, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		attrs[key] = value
	}
	return attrs
}

// attrOr returns attrs[key], or def when the key is absent.
func attrOr(attrs map[string]string, key, def string) string {
	if v, ok := attrs[key]; ok {
		return v
	}
	return def
}
