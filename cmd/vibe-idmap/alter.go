package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-idmap/internal/fasta"
	"github.com/inodb/vibe-idmap/internal/idmap"
	"github.com/inodb/vibe-idmap/internal/selector"
	"github.com/inodb/vibe-idmap/internal/source"
)

type alterOptions struct {
	idmapPath      string
	fastaPath      string
	outputPath     string
	matchColumn    int
	mapColumn      int
	renameOnly     bool
	winnerSequence bool
}

func newAlterCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts alterOptions

	cmd := &cobra.Command{
		Use:   "alter",
		Short: "Rename FASTA sequences or keep the longest per gene",
		Long: `Group sequences by gene using an ID mapping table. By default only the
longest sequence of each gene is written; with -d every sequence is written
under its mapped name.`,
		Example: `  vibe-idmap alter -i id_mapping.txt -f cds.fa -o longest.fa
  vibe-idmap alter -i id_mapping.txt -f cds.fa.gz -m 3 -n 2 -d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.idmapPath == "" {
				return usageErrorf("required flag --idmap not set")
			}
			if opts.fastaPath == "" {
				return usageErrorf("required flag --fasta not set")
			}
			opts.matchColumn = viper.GetInt("alter.match_column")
			opts.mapColumn = viper.GetInt("alter.map_column")
			if opts.matchColumn < 1 || opts.mapColumn < 1 {
				return usageErrorf("columns are 1-based: match=%d map=%d", opts.matchColumn, opts.mapColumn)
			}

			logger, err := commandLogger(opts.outputPath, stdout, stderr, viper.GetString("log.level"))
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			return runAlter(opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.idmapPath, "idmap", "i", "", "ID mapping table written by 'vibe-idmap map'")
	f.StringVarP(&opts.fastaPath, "fasta", "f", "", "FASTA file (.gz, .bz2, .zip accepted; '-' for stdin)")
	f.StringVarP(&opts.outputPath, "output", "o", "output.fa", "Output FASTA ('-' for stdout)")
	f.IntP("match-column", "m", idmap.DefaultMatchColumn, "1-based column holding FASTA sequence IDs")
	f.IntP("map-column", "n", idmap.DefaultMapColumn, "1-based column holding output names")
	f.BoolVarP(&opts.renameOnly, "do-not-extract-longest", "d", false, "Rename every sequence instead of keeping the longest per gene")
	f.BoolVar(&opts.winnerSequence, "winner-sequence", false, "Write the longest transcript's own sequence instead of the gene's first")

	viper.BindPFlag("alter.match_column", f.Lookup("match-column"))
	viper.BindPFlag("alter.map_column", f.Lookup("map-column"))

	return cmd
}

func runAlter(opts alterOptions, logger *zap.Logger) error {
	groups, err := idmap.ReadGroups(opts.idmapPath, opts.matchColumn, opts.mapColumn)
	if err != nil {
		return err
	}
	seqs, err := fasta.Load(opts.fastaPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded inputs",
		zap.Int("genes", groups.Len()),
		zap.Int("pairs", groups.PairCount()),
		zap.Int("sequences", seqs.SequenceCount()))

	sel := selector.New()
	sel.SetRenameOnly(opts.renameOnly)
	sel.SetUseWinnerSequence(opts.winnerSequence)
	sel.SetLogger(logger)
	res := sel.Select(groups, seqs)

	return writeRecords(opts.outputPath, res.Records)
}

func writeRecords(path string, records []selector.Record) (err error) {
	out, err := source.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	w := fasta.NewWriter(out)
	for _, rec := range records {
		if err := w.Write(rec.Name, rec.Sequence); err != nil {
			return fmt.Errorf("write FASTA: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write FASTA: %w", err)
	}
	return nil
}
