package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-idmap/internal/duckdb"
	"github.com/inodb/vibe-idmap/internal/gff"
	"github.com/inodb/vibe-idmap/internal/idmap"
	"github.com/inodb/vibe-idmap/internal/source"
)

type mapOptions struct {
	gffPath        string
	outputPath     string
	transcriptType string
	extraSpec      string
	duckdbPath     string
}

func newMapCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts mapOptions

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Convert a GFF file to an ID mapping table",
		Long: `Index genes, transcripts and CDS features of a GFF3 file and write one
tab-delimited row per transcript, flagging the longest-CDS transcript of each gene.`,
		Example: `  vibe-idmap map -g genomic.gff -o id_mapping.txt
  vibe-idmap map -g genomic.gff.gz -e "mRNA::Dbxref;gene::gbkey"
  vibe-idmap map -g genomic.gff -t transcript --duckdb idmap.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.gffPath == "" {
				return usageErrorf("required flag --gff not set")
			}
			opts.transcriptType = viper.GetString("map.transcript_type")
			opts.extraSpec = viper.GetString("map.extra")

			logger, err := commandLogger(opts.outputPath, stdout, stderr, viper.GetString("log.level"))
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			return runMap(opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.gffPath, "gff", "g", "", "GFF3 file (.gz, .bz2, .zip accepted; '-' for stdin)")
	f.StringVarP(&opts.outputPath, "output", "o", "id_mapping.txt", "Output mapping table ('-' for stdout)")
	f.StringP("transcript-type", "t", gff.KindMRNA, "Feature type treated as transcript")
	f.StringP("extra", "e", "", `Extra attribute columns, e.g. "mRNA::Dbxref;gene::gbkey"`)
	f.StringVar(&opts.duckdbPath, "duckdb", "", "Also export the mapping rows to this DuckDB database")

	viper.BindPFlag("map.transcript_type", f.Lookup("transcript-type"))
	viper.BindPFlag("map.extra", f.Lookup("extra"))

	return cmd
}

func runMap(opts mapOptions, logger *zap.Logger) error {
	extra, err := gff.ParseExtraColumns(opts.extraSpec)
	if err != nil {
		return &usageError{err: err}
	}

	ix := gff.NewIndexer(opts.transcriptType, extra)
	ix.SetLogger(logger)
	idx, err := ix.Load(opts.gffPath)
	if err != nil {
		return err
	}
	rows := idmap.BuildRows(idx, extra, logger)

	if err := writeMappingTable(opts.outputPath, extra, rows); err != nil {
		return err
	}

	if opts.duckdbPath != "" {
		if err := exportDuckDB(opts.duckdbPath, extra, rows); err != nil {
			return err
		}
		logger.Debug("exported mapping rows",
			zap.String("path", opts.duckdbPath),
			zap.Int("rows", len(rows)))
	}
	return nil
}

func writeMappingTable(path string, extra []gff.ExtraColumn, rows []idmap.Row) (err error) {
	out, err := source.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	w := idmap.NewTabWriter(out, extra)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write mapping table: %w", err)
	}
	if err := w.WriteRows(rows); err != nil {
		return fmt.Errorf("write mapping table: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write mapping table: %w", err)
	}
	return nil
}

// exportDuckDB replaces the mapping rows stored in the database at path.
func exportDuckDB(path string, extra []gff.ExtraColumn, rows []idmap.Row) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear duckdb: %w", err)
	}
	if err := store.WriteRows(rows, extra); err != nil {
		return fmt.Errorf("export duckdb: %w", err)
	}
	return nil
}
