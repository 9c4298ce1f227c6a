package triage

import "testing"

func TestAssign(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		impact, uncertainty int
		want                Route
	}{
		{5, 1, Commit},
		{3, 2, Commit},
		{3, 3, Explore},
		{5, 5, Explore},
		{2, 3, Park},
		{1, 5, Park},
		{2, 2, Defer},
		{0, 0, Defer},
	}
	for _, tt := range tests {
		if got := Assign(tt.impact, tt.uncertainty, th); got != tt.want {
			t.Errorf("Assign(%d, %d) = %s, want %s", tt.impact, tt.uncertainty, got, tt.want)
		}
	}
}

func TestAssign_CustomThresholds(t *testing.T) {
	th := Thresholds{Impact: 5, Uncertainty: 1}
	if got := Assign(4, 1, th); got != Park {
		t.Errorf("Assign(4, 1) = %s, want PARK", got)
	}
	if got := Assign(5, 0, th); got != Commit {
		t.Errorf("Assign(5, 0) = %s, want COMMIT", got)
	}
}

func TestEnrich(t *testing.T) {
	items := []Assessment{
		{ID: "p1", Impact: 4, Uncertainty: 1},
		{ID: "p2", Impact: 4, Uncertainty: 4},
		{ID: "p3"},
	}
	got := Enrich(items, DefaultThresholds())

	want := []Route{Commit, Explore, Defer}
	for i, r := range got {
		if r.ID != items[i].ID {
			t.Errorf("Enrich()[%d].ID = %s, want %s", i, r.ID, items[i].ID)
		}
		if r.Route != want[i] {
			t.Errorf("Enrich()[%d].Route = %s, want %s", i, r.Route, want[i])
		}
	}

	counts := Counts(got)
	if counts[Commit] != 1 || counts[Explore] != 1 || counts[Defer] != 1 || counts[Park] != 0 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestRating(t *testing.T) {
	tests := map[string]int{
		"":      0,
		"  4 ":  4,
		"4.0":   4,
		"high":  0,
		"-1":    -1,
		"2.999": 2,
	}
	for in, want := range tests {
		if got := Rating(in); got != want {
			t.Errorf("Rating(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFromMeta(t *testing.T) {
	a := FromMeta("p1", map[string]any{"impact": "5", "uncertainty": 2.0})
	if a.Impact != 5 || a.Uncertainty != 2 {
		t.Errorf("FromMeta() = %+v", a)
	}
	if b := FromMeta("p2", nil); b.Impact != 0 || b.Uncertainty != 0 {
		t.Errorf("FromMeta(nil) = %+v", b)
	}
}

func TestParseRoute(t *testing.T) {
	for _, r := range Routes() {
		got, err := ParseRoute(string(r))
		if err != nil || got != r {
			t.Errorf("ParseRoute(%q) = %q, %v", r, got, err)
		}
	}
	if _, err := ParseRoute("LATER"); err == nil {
		t.Error("ParseRoute should reject unknown labels")
	}
}
