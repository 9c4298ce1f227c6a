// Package schema decodes and validates problem and edge table records.
//
// Records arrive as a header plus string cells, the way CSV readers produce
// them. Decoding is lenient and never fails: blank cells become absent
// values. Validation is strict and reports every issue found, each tagged
// with the 1-based table row it came from (the header is row 1).
package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/stratum/pkg/core/triage"
)

// Rating bounds for impact and uncertainty.
const (
	MinRating = 1
	MaxRating = 5
)

// Well-known column names.
const (
	ColID          = "id"
	ColTitle       = "title"
	ColSector      = "sector"
	ColImpact      = "impact"
	ColUncertainty = "uncertainty"
	ColSource      = "source"
	ColTarget      = "target"
	ColWeight      = "weight"
	ColRoute       = "route"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Column is one named cell of a record, kept in table order.
type Column struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Problem is one row of the problems table.
type Problem struct {
	ID          string `json:"id" validate:"required,max=256"`
	Title       string `json:"title,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Impact      *int   `json:"impact,omitempty" validate:"omitempty,min=1,max=5"`
	Uncertainty *int   `json:"uncertainty,omitempty" validate:"omitempty,min=1,max=5"`

	// Columns holds every cell of the source row, including the ones above,
	// so enriched output can reproduce the input table.
	Columns []Column `json:"-"`

	// Row is the 1-based table row (header is row 1); 0 when not from a table.
	Row int `json:"-"`

	// malformed lists integer columns whose cells did not parse.
	malformed []string
}

// Get returns the raw cell for column name.
func (p *Problem) Get(name string) (string, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Meta returns the row as node metadata, excluding the id column.
func (p *Problem) Meta() map[string]any {
	m := make(map[string]any, len(p.Columns))
	for _, c := range p.Columns {
		if c.Name != ColID {
			m[c.Name] = c.Value
		}
	}
	if p.Impact != nil {
		m[ColImpact] = *p.Impact
	}
	if p.Uncertainty != nil {
		m[ColUncertainty] = *p.Uncertainty
	}
	return m
}

// Assessment returns the ratings triage routes on. Absent ratings are 0.
func (p *Problem) Assessment() triage.Assessment {
	a := triage.Assessment{ID: p.ID}
	if p.Impact != nil {
		a.Impact = *p.Impact
	}
	if p.Uncertainty != nil {
		a.Uncertainty = *p.Uncertainty
	}
	return a
}

// EdgeRecord is one row of the edges table.
type EdgeRecord struct {
	Source string  `json:"source" validate:"required"`
	Target string  `json:"target" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0"`

	Row int `json:"-"`

	badWeight string
}

// DecodeProblem builds a Problem from a header and a row of cells. Cell
// values are trimmed; the ID is additionally stripped of surrounding
// whitespace before use as a node identifier.
func DecodeProblem(header, cells []string, row int) Problem {
	p := Problem{Row: row, Columns: make([]Column, 0, len(header))}
	for i, name := range header {
		v := ""
		if i < len(cells) {
			v = strings.TrimSpace(cells[i])
		}
		p.Columns = append(p.Columns, Column{Name: name, Value: v})

		switch name {
		case ColID:
			p.ID = v
		case ColTitle:
			p.Title = v
		case ColSector:
			p.Sector = v
		case ColImpact:
			p.Impact = p.parseRating(name, v)
		case ColUncertainty:
			p.Uncertainty = p.parseRating(name, v)
		}
	}
	return p
}

func (p *Problem) parseRating(name, v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.malformed = append(p.malformed, name)
		return nil
	}
	return &n
}

// DecodeEdge builds an EdgeRecord from a header and a row of cells. A blank
// weight is DefaultWeight; a non-numeric or non-finite weight ("inf", "NaN",
// "1e400") is also DefaultWeight but is reported by ValidateEdges.
func DecodeEdge(header, cells []string, row int) EdgeRecord {
	e := EdgeRecord{Row: row, Weight: DefaultWeight}
	for i, name := range header {
		if i >= len(cells) {
			break
		}
		v := strings.TrimSpace(cells[i])
		switch name {
		case ColSource:
			e.Source = v
		case ColTarget:
			e.Target = v
		case ColWeight:
			if v == "" {
				continue
			}
			w, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsInf(w, 0) || math.IsNaN(w) {
				e.badWeight = v
				continue
			}
			e.Weight = w
		}
	}
	return e
}

// DefaultWeight is the weight of an edge whose weight cell is blank.
const DefaultWeight = 1.0

// Issue is a single validation failure.
type Issue struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Row > 0 {
		return fmt.Sprintf("Row %d: %s", i.Row, i.Message)
	}
	return i.Message
}

// ValidationError collects every issue found in a table.
type ValidationError struct {
	Table  string  `json:"table"`
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues)+1)
	lines = append(lines, fmt.Sprintf("%s: validation failed (%d issues)", e.Table, len(e.Issues)))
	for _, is := range e.Issues {
		lines = append(lines, " - "+is.String())
	}
	return strings.Join(lines, "\n")
}

// ValidateProblems checks every problem and returns a *ValidationError
// listing all issues, or nil. An empty table is itself an issue.
func ValidateProblems(problems []Problem) error {
	if len(problems) == 0 {
		return &ValidationError{Table: "problems", Issues: []Issue{{Message: "No records found"}}}
	}

	var issues []Issue
	firstSeen := make(map[string]int, len(problems))
	for i := range problems {
		p := &problems[i]
		for _, msg := range problemIssues(p) {
			issues = append(issues, Issue{Row: p.Row, Message: msg})
		}
		if p.ID == "" {
			continue
		}
		if prev, dup := firstSeen[p.ID]; dup {
			issues = append(issues, Issue{
				Row:     p.Row,
				Message: fmt.Sprintf("Duplicate id '%s' (first seen in row %d)", p.ID, prev),
			})
			continue
		}
		firstSeen[p.ID] = p.Row
	}

	if len(issues) > 0 {
		return &ValidationError{Table: "problems", Issues: issues}
	}
	return nil
}

func problemIssues(p *Problem) []string {
	var out []string
	for _, col := range p.malformed {
		out = append(out, fmt.Sprintf("Field '%s' must be an integer", col))
	}
	out = append(out, structIssues(p)...)
	for _, r := range p.ID {
		if r < 0x20 || r == 0x7f {
			out = append(out, "Field 'id' contains control characters")
			break
		}
	}
	return out
}

// ValidateEdges checks every edge record. Unknown endpoints are not an
// error here; the analysis ignores them.
func ValidateEdges(edges []EdgeRecord) error {
	var issues []Issue
	for i := range edges {
		e := &edges[i]
		if e.badWeight != "" {
			issues = append(issues, Issue{Row: e.Row, Message: fmt.Sprintf("Field 'weight' must be a finite number (got '%s')", e.badWeight)})
		}
		for _, msg := range structIssues(e) {
			issues = append(issues, Issue{Row: e.Row, Message: msg})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Table: "edges", Issues: issues}
	}
	return nil
}

// ValidateStruct runs the struct-tag rules on v and formats the first
// failure. It is used for API request bodies.
func ValidateStruct(v any) error {
	if msgs := structIssues(v); len(msgs) > 0 {
		return fmt.Errorf("%s", msgs[0])
	}
	return nil
}

// structIssues converts validator errors to the messages the table
// validator reports.
func structIssues(v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()
		got := deref(e.Value())

		switch e.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("Missing required field '%s'", field))
		case "min", "gte":
			out = append(out, fmt.Sprintf("Field '%s' must be >= %s (got %v)", field, param, got))
		case "max", "lte":
			if s, ok := got.(string); ok {
				out = append(out, fmt.Sprintf("Field '%s' must be at most %s characters (got %d)", field, param, len(s)))
				continue
			}
			out = append(out, fmt.Sprintf("Field '%s' must be <= %s (got %v)", field, param, got))
		default:
			out = append(out, fmt.Sprintf("Field '%s' failed validation (%s)", field, e.Tag()))
		}
	}
	return out
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
