package schema

import (
	"errors"
	"strings"
	"testing"
)

var problemHeader = []string{"id", "title", "sector", "impact", "uncertainty", "status"}

func TestDecodeProblem(t *testing.T) {
	p := DecodeProblem(problemHeader, []string{" P1 ", "Water", "infra", "4", "", "open"}, 2)

	if p.ID != "P1" {
		t.Errorf("ID = %q, want P1", p.ID)
	}
	if p.Impact == nil || *p.Impact != 4 {
		t.Errorf("Impact = %v, want 4", p.Impact)
	}
	if p.Uncertainty != nil {
		t.Errorf("Uncertainty = %v, want nil for blank cell", *p.Uncertainty)
	}
	if v, ok := p.Get("status"); !ok || v != "open" {
		t.Errorf("Get(status) = %q, %v", v, ok)
	}
	if len(p.Columns) != len(problemHeader) {
		t.Errorf("len(Columns) = %d, want %d", len(p.Columns), len(problemHeader))
	}
	if p.Columns[5].Name != "status" {
		t.Errorf("column order not preserved: %v", p.Columns)
	}

	meta := p.Meta()
	if _, ok := meta["id"]; ok {
		t.Error("Meta() must not contain the id column")
	}
	if meta["impact"] != 4 {
		t.Errorf("Meta()[impact] = %v, want int 4", meta["impact"])
	}
}

func TestDecodeProblem_ShortRow(t *testing.T) {
	p := DecodeProblem(problemHeader, []string{"P1"}, 3)
	if p.ID != "P1" || p.Title != "" {
		t.Errorf("DecodeProblem(short) = %+v", p)
	}
	if len(p.Columns) != len(problemHeader) {
		t.Errorf("missing cells should still produce columns")
	}
}

func TestValidateProblems(t *testing.T) {
	rows := [][]string{
		{"P1", "ok", "x", "3", "3", ""},
		{"", "no id", "x", "3", "3", ""},
		{"P3", "too big", "x", "7", "0", ""},
		{"P4", "nan", "x", "high", "2", ""},
		{"P1", "dup", "x", "", "", ""},
	}
	problems := make([]Problem, len(rows))
	for i, r := range rows {
		problems[i] = DecodeProblem(problemHeader, r, i+2)
	}

	err := ValidateProblems(problems)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateProblems() = %v, want *ValidationError", err)
	}

	want := []string{
		"Row 3: Missing required field 'id'",
		"Row 4: Field 'impact' must be <= 5 (got 7)",
		"Row 4: Field 'uncertainty' must be >= 1 (got 0)",
		"Row 5: Field 'impact' must be an integer",
		"Row 6: Duplicate id 'P1' (first seen in row 2)",
	}
	got := make([]string, len(verr.Issues))
	for i, is := range verr.Issues {
		got[i] = is.String()
	}
	if len(got) != len(want) {
		t.Fatalf("issues =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("issue[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !strings.Contains(err.Error(), "problems: validation failed (5 issues)") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidateProblems_Valid(t *testing.T) {
	problems := []Problem{
		DecodeProblem(problemHeader, []string{"P1", "a", "x", "1", "5", ""}, 2),
		DecodeProblem(problemHeader, []string{"P2", "b", "x", "", "", ""}, 3),
	}
	if err := ValidateProblems(problems); err != nil {
		t.Errorf("ValidateProblems() = %v, want nil", err)
	}
}

func TestValidateProblems_Empty(t *testing.T) {
	err := ValidateProblems(nil)
	if err == nil || !strings.Contains(err.Error(), "No records found") {
		t.Errorf("ValidateProblems(nil) = %v", err)
	}
}

func TestDecodeEdge(t *testing.T) {
	header := []string{"source", "target", "weight"}
	tests := []struct {
		name  string
		cells []string
		want  float64
	}{
		{"explicit", []string{"A", "B", "2.5"}, 2.5},
		{"blank weight", []string{"A", "B", ""}, DefaultWeight},
		{"missing weight", []string{"A", "B"}, DefaultWeight},
		{"zero kept", []string{"A", "B", "0"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := DecodeEdge(header, tt.cells, 2)
			if e.Source != "A" || e.Target != "B" {
				t.Errorf("endpoints = %s->%s", e.Source, e.Target)
			}
			if e.Weight != tt.want {
				t.Errorf("Weight = %v, want %v", e.Weight, tt.want)
			}
		})
	}

	noWeightCol := DecodeEdge([]string{"source", "target"}, []string{"A", "B"}, 2)
	if noWeightCol.Weight != DefaultWeight {
		t.Errorf("Weight without column = %v, want %v", noWeightCol.Weight, DefaultWeight)
	}
}

func TestValidateEdges(t *testing.T) {
	header := []string{"source", "target", "weight"}
	edges := []EdgeRecord{
		DecodeEdge(header, []string{"A", "B", "1"}, 2),
		DecodeEdge(header, []string{"A", "", "1"}, 3),
		DecodeEdge(header, []string{"A", "B", "-2"}, 4),
		DecodeEdge(header, []string{"A", "B", "heavy"}, 5),
		DecodeEdge(header, []string{"A", "B", "+Inf"}, 6),
		DecodeEdge(header, []string{"A", "B", "NaN"}, 7),
		DecodeEdge(header, []string{"A", "B", "1e400"}, 8),
	}

	err := ValidateEdges(edges)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateEdges() = %v, want *ValidationError", err)
	}
	want := []string{
		"Row 3: Missing required field 'target'",
		"Row 4: Field 'weight' must be >= 0 (got -2)",
		"Row 5: Field 'weight' must be a finite number (got 'heavy')",
		"Row 6: Field 'weight' must be a finite number (got '+Inf')",
		"Row 7: Field 'weight' must be a finite number (got 'NaN')",
		"Row 8: Field 'weight' must be a finite number (got '1e400')",
	}
	if len(verr.Issues) != len(want) {
		t.Fatalf("got %d issues (%v), want %d", len(verr.Issues), verr.Issues, len(want))
	}
	for i := range want {
		if verr.Issues[i].String() != want[i] {
			t.Errorf("issue[%d] = %q, want %q", i, verr.Issues[i].String(), want[i])
		}
	}

	if err := ValidateEdges(edges[:1]); err != nil {
		t.Errorf("ValidateEdges(valid) = %v", err)
	}
}

func TestValidateStruct(t *testing.T) {
	type request struct {
		Influence float64 `json:"influence" validate:"gte=0"`
	}
	if err := ValidateStruct(request{Influence: 1}); err != nil {
		t.Errorf("ValidateStruct(valid) = %v", err)
	}
	err := ValidateStruct(request{Influence: -1})
	if err == nil || err.Error() != "Field 'influence' must be >= 0 (got -1)" {
		t.Errorf("ValidateStruct(invalid) = %v", err)
	}
}
