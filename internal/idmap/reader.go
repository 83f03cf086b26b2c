package idmap

import (
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-idmap/internal/source"
)

// Default 1-based columns of the match name (transcript_id) and the map name
// (gene_id).
const (
	DefaultMatchColumn = 3
	DefaultMapColumn   = 1
)

// Pair links a sequence identifier to the name it should be written under.
type Pair struct {
	MatchName string // key into the sequence table
	MapName   string // output identifier
}

// Groups holds the pairs of every gene in first-seen gene order.
type Groups struct {
	order []string
	pairs map[string][]Pair
}

// NewGroups creates an empty Groups.
func NewGroups() *Groups {
	return &Groups{pairs: make(map[string][]Pair)}
}

// Add appends a pair to gene, registering the gene on first use.
func (g *Groups) Add(gene string, p Pair) {
	if _, ok := g.pairs[gene]; !ok {
		g.order = append(g.order, gene)
	}
	g.pairs[gene] = append(g.pairs[gene], p)
}

// Genes returns gene keys in first-seen order.
func (g *Groups) Genes() []string {
	return g.order
}

// Pairs returns the pairs of gene in file order.
func (g *Groups) Pairs(gene string) []Pair {
	return g.pairs[gene]
}

// Len returns the number of genes.
func (g *Groups) Len() int {
	return len(g.order)
}

// PairCount returns the number of pairs over all genes.
func (g *Groups) PairCount() int {
	n := 0
	for _, p := range g.pairs {
		n += len(p)
	}
	return n
}

// ReadGroups reads a mapping file and groups its rows by gene (column 1).
// matchCol and mapCol are 1-based column numbers.
func ReadGroups(path string, matchCol, mapCol int) (*Groups, error) {
	r, err := source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	defer r.Close()

	return ParseGroups(r, matchCol, mapCol)
}

// ParseGroups parses mapping-table content. The first line is a header and is
// skipped; rows with fewer than max(matchCol, mapCol) columns are skipped.
func ParseGroups(r io.Reader, matchCol, mapCol int) (*Groups, error) {
	if matchCol < 1 || mapCol < 1 {
		return nil, fmt.Errorf("invalid columns match=%d map=%d: columns are 1-based", matchCol, mapCol)
	}
	need := max(matchCol, mapCol)

	groups := NewGroups()
	scanner := source.NewScanner(r)

	// Skip header line
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read mapping file: %w", err)
		}
		return groups, nil
	}

	for scanner.Scan() {
		fields := strings.Split(strings.TrimSpace(scanner.Text()), "\t")
		if len(fields) < need {
			continue
		}
		groups.Add(fields[0], Pair{
			MatchName: fields[matchCol-1],
			MapName:   fields[mapCol-1],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return groups, nil
}
