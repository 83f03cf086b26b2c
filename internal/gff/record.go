// Package gff indexes GFF3 annotations into gene and transcript tables and
// resolves the longest coding transcript of every gene.
package gff

// Gene is a gene feature together with its resolved longest transcript.
type Gene struct {
	ID                string // ID attribute
	Name              string // Name attribute, defaults to ID
	LongestTranscript string // ID of the transcript with the largest CDSLength, empty if none
	MaxCDSLength      int64  // CDS length of LongestTranscript
	Extra             map[ExtraColumn]string
}

// Transcript is an mRNA (or configured transcript type) feature and the CDS
// segments that reference it.
type Transcript struct {
	ID        string // ID attribute
	GeneID    string // Parent attribute, defaults to ID
	Name      string // Name attribute, defaults to ID
	SeqID     string // Sequence region (column 1)
	Start     int64  // 1-based inclusive
	End       int64  // 1-based inclusive
	Strand    string // "+", "-" or "."
	CDSNames  []string
	CDSStarts []int64
	CDSEnds   []int64
	CDSLength int64 // sum of end-start+1 over CDS segments
	Extra     map[ExtraColumn]string
}

// addCDS appends one coding segment. The three CDS slices grow together.
func (t *Transcript) addCDS(name string, start, end int64) {
	t.CDSNames = append(t.CDSNames, name)
	t.CDSStarts = append(t.CDSStarts, start)
	t.CDSEnds = append(t.CDSEnds, end)
	t.CDSLength += end - start + 1
}

// IsLongest reports whether t is the longest transcript of gene g.
func (t *Transcript) IsLongest(g *Gene) bool {
	return g != nil && g.LongestTranscript == t.ID
}

// Index holds the gene and transcript tables built from one annotation.
// Both tables iterate in first-seen order; a redefined ID keeps its original
// position.
type Index struct {
	genes           map[string]*Gene
	geneOrder       []string
	transcripts     map[string]*Transcript
	transcriptOrder []string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		genes:       make(map[string]*Gene),
		transcripts: make(map[string]*Transcript),
	}
}

// PutGene stores g, replacing any gene with the same ID (last-wins).
func (idx *Index) PutGene(g *Gene) {
	if _, ok := idx.genes[g.ID]; !ok {
		idx.geneOrder = append(idx.geneOrder, g.ID)
	}
	idx.genes[g.ID] = g
}

// PutTranscript stores t, replacing any transcript with the same ID (last-wins).
func (idx *Index) PutTranscript(t *Transcript) {
	if _, ok := idx.transcripts[t.ID]; !ok {
		idx.transcriptOrder = append(idx.transcriptOrder, t.ID)
	}
	idx.transcripts[t.ID] = t
}

// Gene returns the gene with the given ID, or nil.
func (idx *Index) Gene(id string) *Gene {
	return idx.genes[id]
}

// Transcript returns the transcript with the given ID, or nil.
func (idx *Index) Transcript(id string) *Transcript {
	return idx.transcripts[id]
}

// Genes returns all genes in first-seen order, including synthetic genes
// created for orphan transcripts.
func (idx *Index) Genes() []*Gene {
	out := make([]*Gene, 0, len(idx.geneOrder))
	for _, id := range idx.geneOrder {
		out = append(out, idx.genes[id])
	}
	return out
}

// Transcripts returns all transcripts in first-seen order.
func (idx *Index) Transcripts() []*Transcript {
	out := make([]*Transcript, 0, len(idx.transcriptOrder))
	for _, id := range idx.transcriptOrder {
		out = append(out, idx.transcripts[id])
	}
	return out
}

// GeneCount returns the number of genes.
func (idx *Index) GeneCount() int {
	return len(idx.genes)
}

// TranscriptCount returns the number of transcripts.
func (idx *Index) TranscriptCount() int {
	return len(idx.transcripts)
}
