package gff

import (
	"fmt"
	"strings"
)

// Feature kinds with built-in meaning.
const (
	KindGene = "gene"
	KindMRNA = "mRNA"
	KindCDS  = "CDS"
)

// ExtraColumn requests the value of attribute Key from features of type Kind
// as an additional mapping-table column.
type ExtraColumn struct {
	Kind string
	Key  string
}

// String returns the "kind::key" form of the column.
func (c ExtraColumn) String() string {
	return c.Kind + "::" + c.Key
}

// Header returns the mapping-table header of the column.
func (c ExtraColumn) Header() string {
	return "Extra::" + c.String()
}

// ParseExtraColumns parses a "kind::key;kind::key" specification.
// Empty tokens are ignored; order is preserved and repeats are kept.
func ParseExtraColumns(spec string) ([]ExtraColumn, error) {
	var cols []ExtraColumn
	for _, tok := range strings.Split(spec, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		parts := strings.Split(tok, "::")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid extra column %q: expected kind::key", tok)
		}
		cols = append(cols, ExtraColumn{Kind: parts[0], Key: parts[1]})
	}
	return cols, nil
}
