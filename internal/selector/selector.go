// Package selector picks one sequence per gene, or renames every sequence,
// according to a gene/transcript mapping.
package selector

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-idmap/internal/idmap"
)

// SequenceLookup resolves sequence identifiers.
type SequenceLookup interface {
	GetSequence(id string) (string, bool)
}

// Record is one output sequence.
type Record struct {
	Name     string
	Sequence string
}

// Result holds the selected sequences in the order they were produced.
type Result struct {
	Records    []Record
	Considered int // pairs examined
	Produced   int // records emitted
	names      map[string]bool
}

func newResult() *Result {
	return &Result{names: make(map[string]bool)}
}

// Has reports whether a record named name was produced.
func (r *Result) Has(name string) bool {
	return r.names[name]
}

// Get returns the sequence produced under name.
func (r *Result) Get(name string) (string, bool) {
	for _, rec := range r.Records {
		if rec.Name == name {
			return rec.Sequence, true
		}
	}
	return "", false
}

// add records seq under name unless name was produced already. The first
// record for a name is kept.
func (r *Result) add(name, seq string) bool {
	if r.names[name] {
		return false
	}
	r.names[name] = true
	r.Records = append(r.Records, Record{Name: name, Sequence: seq})
	r.Produced++
	return true
}

// Selector selects or renames sequences.
type Selector struct {
	renameOnly        bool
	useWinnerSequence bool
	logger            *zap.Logger
}

// New creates a selector in longest-selection mode.
func New() *Selector {
	return &Selector{logger: zap.NewNop()}
}

// SetRenameOnly switches between renaming every pair (true) and selecting the
// longest sequence per gene (false, the default).
func (s *Selector) SetRenameOnly(renameOnly bool) {
	s.renameOnly = renameOnly
}

// SetUseWinnerSequence makes longest-selection emit the winning transcript's
// own sequence. By default the sequence of the gene's first listed transcript
// is emitted under the winner's name.
func (s *Selector) SetUseWinnerSequence(use bool) {
	s.useWinnerSequence = use
}

// SetLogger sets the logger for missing-sequence errors, duplicate warnings
// and the final counts.
func (s *Selector) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Select processes every gene of groups in order.
func (s *Selector) Select(groups *idmap.Groups, seqs SequenceLookup) *Result {
	res := newResult()

	for _, gene := range groups.Genes() {
		pairs := groups.Pairs(gene)
		if s.renameOnly {
			s.rename(res, pairs, seqs)
		} else {
			s.selectLongest(res, gene, pairs, seqs)
		}
	}

	s.logger.Info(fmt.Sprintf("The number of sequences inputed: %d.", res.Considered))
	s.logger.Info(fmt.Sprintf("The number of sequences generated: %d.", res.Produced))

	return res
}

// rename emits every resolvable pair under its map name.
func (s *Selector) rename(res *Result, pairs []idmap.Pair, seqs SequenceLookup) {
	for _, p := range pairs {
		res.Considered++
		seq, ok := seqs.GetSequence(p.MatchName)
		if !ok {
			s.missing(p.MatchName)
			continue
		}
		if !res.add(p.MapName, seq) {
			s.duplicate(p.MapName)
		}
	}
}

// selectLongest emits one record for the gene under the map name of its
// longest resolvable sequence. Only a strictly longer sequence replaces the
// current winner, so the first of equally long sequences wins and empty
// sequences never win.
func (s *Selector) selectLongest(res *Result, gene string, pairs []idmap.Pair, seqs SequenceLookup) {
	winner := -1
	var longest int
	for i, p := range pairs {
		res.Considered++
		seq, ok := seqs.GetSequence(p.MatchName)
		if !ok {
			s.missing(p.MatchName)
			continue
		}
		if len(seq) > longest {
			winner = i
			longest = len(seq)
		}
	}
	if winner < 0 {
		return
	}

	source := pairs[0].MatchName
	if s.useWinnerSequence {
		source = pairs[winner].MatchName
	}
	seq, ok := seqs.GetSequence(source)
	if !ok {
		s.logger.Error(fmt.Sprintf("Sequence %s of gene %s does not exist, gene skipped.", source, gene),
			zap.String("gene", gene),
			zap.String("match_name", source))
		return
	}

	name := pairs[winner].MapName
	if !res.add(name, seq) {
		s.duplicate(name)
	}
}

func (s *Selector) missing(matchName string) {
	s.logger.Error(fmt.Sprintf("Sequence %s does not exist in the id_mapping file.", matchName),
		zap.String("match_name", matchName))
}

func (s *Selector) duplicate(mapName string) {
	s.logger.Warn(fmt.Sprintf("Sequence %s already exists.", mapName),
		zap.String("map_name", mapName))
}
