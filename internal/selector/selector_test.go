package selector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/vibe-idmap/internal/fasta"
	"github.com/inodb/vibe-idmap/internal/idmap"
)

// mapSeqs is an in-memory SequenceLookup.
type mapSeqs map[string]string

func (m mapSeqs) GetSequence(id string) (string, bool) {
	s, ok := m[id]
	return s, ok
}

func newObserved(level zapcore.Level) (*Selector, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	s := New()
	s.SetLogger(zap.New(core))
	return s, logs
}

func errorsAbout(logs *observer.ObservedLogs, level zapcore.Level, id string) int {
	n := 0
	for _, e := range logs.FilterLevelExact(level).All() {
		if strings.Contains(e.Message, id) {
			n++
		}
	}
	return n
}

func TestRenameOnly_AllResolved(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "t1", MapName: "G1.a"})
	groups.Add("g1", idmap.Pair{MatchName: "t2", MapName: "G1.b"})
	groups.Add("g2", idmap.Pair{MatchName: "t3", MapName: "G2.a"})
	seqs := mapSeqs{"t1": "AAA", "t2": "CCCC", "t3": "G"}

	s := New()
	s.SetRenameOnly(true)
	res := s.Select(groups, seqs)

	assert.Equal(t, 3, res.Considered)
	assert.Equal(t, 3, res.Produced)
	assert.Equal(t, []Record{
		{Name: "G1.a", Sequence: "AAA"},
		{Name: "G1.b", Sequence: "CCCC"},
		{Name: "G2.a", Sequence: "G"},
	}, res.Records)
}

func TestRenameOnly_DuplicateFirstWins(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "t1", MapName: "g1"})
	groups.Add("g1", idmap.Pair{MatchName: "t2", MapName: "g1"})

	s, logs := newObserved(zapcore.DebugLevel)
	s.SetRenameOnly(true)
	res := s.Select(groups, mapSeqs{"t1": "AAA", "t2": "CCCC"})

	assert.Equal(t, 2, res.Considered)
	assert.Equal(t, 1, res.Produced)
	seq, ok := res.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "AAA", seq)
	assert.Equal(t, 1, errorsAbout(logs, zapcore.WarnLevel, "g1"))
}

func TestRenameOnly_MissingSequence(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "absent", MapName: "x"})
	groups.Add("g1", idmap.Pair{MatchName: "t2", MapName: "y"})

	s, logs := newObserved(zapcore.DebugLevel)
	s.SetRenameOnly(true)
	res := s.Select(groups, mapSeqs{"t2": "CC"})

	assert.Equal(t, 2, res.Considered)
	assert.Equal(t, 1, res.Produced)
	assert.False(t, res.Has("x"))
	assert.Equal(t, 1, errorsAbout(logs, zapcore.ErrorLevel, "absent"))
}

func TestLongest_TieKeepsFirst(t *testing.T) {
	// Lengths 100, 250, 250, 50: the second pair wins.
	groups := idmap.NewGroups()
	for _, p := range []idmap.Pair{
		{MatchName: "a", MapName: "A"},
		{MatchName: "b", MapName: "B"},
		{MatchName: "c", MapName: "C"},
		{MatchName: "d", MapName: "D"},
	} {
		groups.Add("g1", p)
	}
	seqs := mapSeqs{
		"a": strings.Repeat("A", 100),
		"b": strings.Repeat("B", 250),
		"c": strings.Repeat("C", 250),
		"d": strings.Repeat("D", 50),
	}

	res := New().Select(groups, seqs)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "B", res.Records[0].Name)
	assert.Equal(t, 4, res.Considered)
	assert.Equal(t, 1, res.Produced)
}

// The record is written under the winner's name but carries the sequence of
// the gene's first listed transcript. This mirrors the established output of
// the tool; SetUseWinnerSequence opts into the winner's own sequence.
func TestLongest_EmitsFirstTranscriptSequence(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "short", MapName: "g1"})
	groups.Add("g1", idmap.Pair{MatchName: "long", MapName: "g1.long"})
	seqs := mapSeqs{"short": "ATG", "long": "ATGAAACCC"}

	res := New().Select(groups, seqs)
	require.Len(t, res.Records, 1)
	assert.Equal(t, Record{Name: "g1.long", Sequence: "ATG"}, res.Records[0])

	s := New()
	s.SetUseWinnerSequence(true)
	res = s.Select(groups, seqs)
	require.Len(t, res.Records, 1)
	assert.Equal(t, Record{Name: "g1.long", Sequence: "ATGAAACCC"}, res.Records[0])
}

func TestLongest_UnresolvedCountedNotProduced(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "t1", MapName: "g1"})
	groups.Add("g1", idmap.Pair{MatchName: "ghost", MapName: "g1"})
	groups.Add("g2", idmap.Pair{MatchName: "ghost2", MapName: "g2"})

	s, logs := newObserved(zapcore.DebugLevel)
	res := s.Select(groups, mapSeqs{"t1": "ATG"})

	assert.Equal(t, 3, res.Considered)
	assert.Equal(t, 1, res.Produced)
	assert.True(t, res.Has("g1"))
	assert.False(t, res.Has("g2"))
	assert.Equal(t, 1, errorsAbout(logs, zapcore.ErrorLevel, "ghost2"))
	assert.Equal(t, 1, errorsAbout(logs, zapcore.ErrorLevel, "ghost "))
}

func TestLongest_FirstTranscriptUnresolved(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "ghost", MapName: "g1"})
	groups.Add("g1", idmap.Pair{MatchName: "t2", MapName: "g1"})

	s, logs := newObserved(zapcore.ErrorLevel)
	res := s.Select(groups, mapSeqs{"t2": "ATG"})
	assert.Equal(t, 0, res.Produced)
	assert.Equal(t, 2, errorsAbout(logs, zapcore.ErrorLevel, "ghost"))

	s.SetUseWinnerSequence(true)
	res = s.Select(groups, mapSeqs{"t2": "ATG"})
	assert.Equal(t, 1, res.Produced)
}

func TestLongest_DuplicateAcrossGenes(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "t1", MapName: "shared"})
	groups.Add("g2", idmap.Pair{MatchName: "t2", MapName: "shared"})

	s, logs := newObserved(zapcore.WarnLevel)
	res := s.Select(groups, mapSeqs{"t1": "AAA", "t2": "CCCCC"})

	require.Len(t, res.Records, 1)
	assert.Equal(t, Record{Name: "shared", Sequence: "AAA"}, res.Records[0])
	assert.Equal(t, 1, errorsAbout(logs, zapcore.WarnLevel, "shared"))
}

func TestLongest_EmptySequencesNeverWin(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "e", MapName: "g1"})

	res := New().Select(groups, mapSeqs{"e": ""})
	assert.Equal(t, 1, res.Considered)
	assert.Zero(t, res.Produced)
}

func TestLongest_EmptyMapNameStillWins(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "a", MapName: "A"})
	groups.Add("g1", idmap.Pair{MatchName: "b", MapName: ""})

	s := New()
	s.SetUseWinnerSequence(true)
	res := s.Select(groups, mapSeqs{"a": "ATG", "b": "ATGAAA"})

	require.Len(t, res.Records, 1)
	assert.Equal(t, Record{Name: "", Sequence: "ATGAAA"}, res.Records[0])
}

func TestSelect_LogsCounters(t *testing.T) {
	groups := idmap.NewGroups()
	groups.Add("g1", idmap.Pair{MatchName: "t1", MapName: "g1"})

	s, logs := newObserved(zapcore.InfoLevel)
	s.Select(groups, mapSeqs{"t1": "A"})

	msgs := logs.FilterLevelExact(zapcore.InfoLevel).All()
	require.Len(t, msgs, 2)
	assert.Equal(t, "The number of sequences inputed: 1.", msgs[0].Message)
	assert.Equal(t, "The number of sequences generated: 1.", msgs[1].Message)
}

func TestSelect_WithFASTATable(t *testing.T) {
	seqs, err := fasta.Load("../../testdata/sample_cds.fa")
	require.NoError(t, err)

	groups := idmap.NewGroups()
	groups.Add("gene1", idmap.Pair{MatchName: "rna1", MapName: "gene1"})
	groups.Add("gene1", idmap.Pair{MatchName: "rna2", MapName: "gene1"})
	groups.Add("gene2", idmap.Pair{MatchName: "rna3", MapName: "gene2"})

	s := New()
	s.SetUseWinnerSequence(true)
	res := s.Select(groups, seqs)

	assert.Equal(t, []Record{
		{Name: "gene1", Sequence: "ATGAAACCCGGGTTTTAG"},
		{Name: "gene2", Sequence: "ATGTAG"},
	}, res.Records)
}
