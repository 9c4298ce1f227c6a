package io

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/stratum/pkg/core/ism"
	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/triage"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/schema"
)

const bom = "\ufeff"

// Table is a decoded CSV: a header and its data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV decodes a CSV table with a header row. Rows may be ragged; header
// names are trimmed and a leading byte order mark is dropped. An empty input
// yields an empty table.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if stderrors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read row %d", len(t.Rows)+2)
		}
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadProblemsCSV decodes a problems table. Every row is returned, including
// rows with a blank id, so validation can report them; row numbers count
// the header as row 1.
func ReadProblemsCSV(r io.Reader) ([]schema.Problem, error) {
	t, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("problems: %w", err)
	}
	if len(t.Header) > 0 && !contains(t.Header, schema.ColID) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "problems: missing %q column", schema.ColID)
	}
	out := make([]schema.Problem, len(t.Rows))
	for i, rec := range t.Rows {
		out[i] = schema.DecodeProblem(t.Header, rec, i+2)
	}
	return out, nil
}

// ReadEdgesCSV decodes an edges table. The weight column is optional.
func ReadEdgesCSV(r io.Reader) ([]schema.EdgeRecord, error) {
	t, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}
	if len(t.Header) > 0 && (!contains(t.Header, schema.ColSource) || !contains(t.Header, schema.ColTarget)) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "edges: need %q and %q columns", schema.ColSource, schema.ColTarget)
	}
	out := make([]schema.EdgeRecord, len(t.Rows))
	for i, rec := range t.Rows {
		out[i] = schema.DecodeEdge(t.Header, rec, i+2)
	}
	return out, nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// =============================================================================
// Writers
// =============================================================================

// WriteLevelsCSV writes the level table: id,level.
func WriteLevelsCSV(w io.Writer, rows []ism.LevelRow) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "level"})
	for _, r := range rows {
		_ = cw.Write([]string{r.ID, strconv.Itoa(r.Level)})
	}
	return flush(cw)
}

// WriteScoresCSV writes the structural-score table:
// id,influence,dependence,micmac_class.
func WriteScoresCSV(w io.Writer, scores []micmac.Score) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "influence", "dependence", "micmac_class"})
	for _, s := range scores {
		_ = cw.Write([]string{s.ID, formatFloat(s.Influence), formatFloat(s.Dependence), s.Class.String()})
	}
	return flush(cw)
}

// WriteTopDriversCSV writes the n highest-influence rows of the score table.
func WriteTopDriversCSV(w io.Writer, scores []micmac.Score, n int) error {
	return WriteScoresCSV(w, micmac.TopDrivers(scores, n))
}

// WriteEnrichedCSV writes the problems table with a route column appended
// (or replaced, if the input already had one). routes is index-aligned with
// problems.
func WriteEnrichedCSV(w io.Writer, problems []schema.Problem, routes []triage.Route) error {
	if len(routes) != len(problems) {
		return errors.New(errors.ErrCodeInternal, "have %d routes for %d problems", len(routes), len(problems))
	}

	header := []string{schema.ColID}
	if len(problems) > 0 {
		header = header[:0]
		for _, c := range problems[0].Columns {
			if c.Name != schema.ColRoute {
				header = append(header, c.Name)
			}
		}
	}

	cw := csv.NewWriter(w)
	_ = cw.Write(append(header, schema.ColRoute))
	for i := range problems {
		p := &problems[i]
		rec := make([]string, 0, len(header)+1)
		for _, name := range header {
			v, _ := p.Get(name)
			rec = append(rec, v)
		}
		_ = cw.Write(append(rec, string(routes[i])))
	}
	return flush(cw)
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
