// Package duckdb exports mapping tables to DuckDB so they can be queried with SQL.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-idmap/internal/gff"
	"github.com/inodb/vibe-idmap/internal/idmap"
)

// Store manages a DuckDB connection holding mapping rows.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS id_mapping (
		row_order BIGINT,
		gene_id VARCHAR,
		gene_name VARCHAR,
		transcript_id VARCHAR,
		transcript_name VARCHAR,
		seq_id VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		strand VARCHAR,
		cds_names VARCHAR,
		cds_starts VARCHAR,
		cds_ends VARCHAR,
		cds_length BIGINT,
		is_longest BOOLEAN
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS extra_attributes (
		transcript_id VARCHAR,
		column_name VARCHAR,
		value VARCHAR
	)`)
	return err
}

// Clear removes all mapping rows and extra attributes.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM id_mapping"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM extra_attributes")
	return err
}

// WriteRows batch-inserts mapping rows using the Appender API. extra names
// the columns of each row's Extra values; missing values ("-") are not stored.
func (s *Store) WriteRows(rows []idmap.Row, extra []gff.ExtraColumn) error {
	if len(rows) == 0 {
		return nil
	}

	base, err := s.nextRowOrder()
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var mapping, attrs *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		mapping, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "id_mapping")
		if err != nil {
			return err
		}
		attrs, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "extra_attributes")
		if err != nil {
			mapping.Close()
		}
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer mapping.Close()
	defer attrs.Close()

	for i, r := range rows {
		if err := mapping.AppendRow(
			base+int64(i), r.GeneID, r.GeneName, r.TranscriptID, r.TranscriptName,
			r.SeqID, r.Start, r.End, r.Strand,
			strings.Join(r.CDSNames, ","), joinInts(r.CDSStarts), joinInts(r.CDSEnds),
			r.CDSLength, r.IsLongest,
		); err != nil {
			return fmt.Errorf("append mapping row: %w", err)
		}
		for j, v := range r.Extra {
			if j >= len(extra) || v == "-" {
				continue
			}
			if err := attrs.AppendRow(r.TranscriptID, extra[j].Header(), v); err != nil {
				return fmt.Errorf("append extra attribute: %w", err)
			}
		}
	}

	if err := mapping.Flush(); err != nil {
		return fmt.Errorf("flush mapping rows: %w", err)
	}
	return attrs.Flush()
}

// nextRowOrder returns the row_order for the next appended row.
func (s *Store) nextRowOrder() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(row_order) + 1, 0) FROM id_mapping").Scan(&n); err != nil {
		return 0, fmt.Errorf("query row order: %w", err)
	}
	return n, nil
}

// TranscriptCount returns the number of stored mapping rows.
func (s *Store) TranscriptCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM id_mapping").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return n, nil
}

// LongestTranscripts returns gene_id -> transcript_id for rows flagged as the
// longest transcript of their gene.
func (s *Store) LongestTranscripts() (map[string]string, error) {
	rows, err := s.db.Query("SELECT gene_id, transcript_id FROM id_mapping WHERE is_longest")
	if err != nil {
		return nil, fmt.Errorf("query longest transcripts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var gene, transcript string
		if err := rows.Scan(&gene, &transcript); err != nil {
			return nil, fmt.Errorf("scan longest transcript: %w", err)
		}
		out[gene] = transcript
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate longest transcripts: %w", err)
	}
	return out, nil
}

// LookupGene returns the stored rows of a gene in insertion order. Extra
// values are not loaded.
func (s *Store) LookupGene(geneID string) ([]idmap.Row, error) {
	rows, err := s.db.Query(`SELECT
		gene_id, gene_name, transcript_id, transcript_name,
		seq_id, start_pos, end_pos, strand,
		cds_names, cds_starts, cds_ends, cds_length, is_longest
		FROM id_mapping
		WHERE gene_id=?
		ORDER BY row_order`, geneID)
	if err != nil {
		return nil, fmt.Errorf("query gene: %w", err)
	}
	defer rows.Close()

	var out []idmap.Row
	for rows.Next() {
		var (
			r                            idmap.Row
			cdsNames, cdsStarts, cdsEnds string
		)
		if err := rows.Scan(
			&r.GeneID, &r.GeneName, &r.TranscriptID, &r.TranscriptName,
			&r.SeqID, &r.Start, &r.End, &r.Strand,
			&cdsNames, &cdsStarts, &cdsEnds, &r.CDSLength, &r.IsLongest,
		); err != nil {
			return nil, fmt.Errorf("scan mapping row: %w", err)
		}
		r.CDSNames = splitList(cdsNames)
		if r.CDSStarts, err = splitInts(cdsStarts); err != nil {
			return nil, err
		}
		if r.CDSEnds, err = splitInts(cdsEnds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mapping rows: %w", err)
	}
	return out, nil
}

// ExtraAttributes returns column header -> value for a transcript.
func (s *Store) ExtraAttributes(transcriptID string) (map[string]string, error) {
	rows, err := s.db.Query("SELECT column_name, value FROM extra_attributes WHERE transcript_id=?", transcriptID)
	if err != nil {
		return nil, fmt.Errorf("query extra attributes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var col, val string
		if err := rows.Scan(&col, &val); err != nil {
			return nil, fmt.Errorf("scan extra attribute: %w", err)
		}
		out[col] = val
	}
	return out, rows.Err()
}

func joinInts(v []int64) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func splitInts(s string) ([]int64, error) {
	parts := splitList(s)
	if parts == nil {
		return nil, nil
	}
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse coordinate %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}
