// Package triage buckets problems into action routes from their impact and
// uncertainty ratings.
//
// A rating is "high" when it is at or above its threshold. The four
// combinations map to:
//
//	impact high, uncertainty low   COMMIT
//	impact high, uncertainty high  EXPLORE
//	impact low,  uncertainty high  PARK
//	impact low,  uncertainty low   DEFER/AUTO
//
// Missing or unparsable ratings count as 0 and are therefore never high.
package triage

import (
	"fmt"
	"strconv"
	"strings"
)

// Route is an action bucket.
type Route string

const (
	Commit  Route = "COMMIT"
	Explore Route = "EXPLORE"
	Park    Route = "PARK"
	Defer   Route = "DEFER/AUTO"
)

// Routes lists every route in display order.
func Routes() []Route { return []Route{Commit, Explore, Park, Defer} }

// ParseRoute parses a route label.
func ParseRoute(s string) (Route, error) {
	for _, r := range Routes() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown route %q", s)
}

// DefaultThreshold is the rating at or above which impact and uncertainty
// count as high.
const DefaultThreshold = 3

// Thresholds holds the cut-offs for both axes.
type Thresholds struct {
	Impact      int `json:"impact" toml:"impact" yaml:"impact"`
	Uncertainty int `json:"uncertainty" toml:"uncertainty" yaml:"uncertainty"`
}

// DefaultThresholds returns DefaultThreshold on both axes.
func DefaultThresholds() Thresholds {
	return Thresholds{Impact: DefaultThreshold, Uncertainty: DefaultThreshold}
}

// Assign returns the route for one pair of ratings.
func Assign(impact, uncertainty int, th Thresholds) Route {
	iHigh := impact >= th.Impact
	uHigh := uncertainty >= th.Uncertainty
	switch {
	case iHigh && !uHigh:
		return Commit
	case iHigh && uHigh:
		return Explore
	case uHigh:
		return Park
	}
	return Defer
}

// Assessment is the part of a problem record triage looks at.
type Assessment struct {
	ID          string `json:"id" validate:"required"`
	Impact      int    `json:"impact"`
	Uncertainty int    `json:"uncertainty"`
}

// Routed is an assessment with its route.
type Routed struct {
	Assessment
	Route Route `json:"route"`
}

// Enrich routes every assessment, preserving order.
func Enrich(items []Assessment, th Thresholds) []Routed {
	out := make([]Routed, len(items))
	for i, a := range items {
		out[i] = Routed{Assessment: a, Route: Assign(a.Impact, a.Uncertainty, th)}
	}
	return out
}

// Counts tallies routed items per route.
func Counts(items []Routed) map[Route]int {
	out := make(map[Route]int, 4)
	for _, r := range items {
		out[r.Route]++
	}
	return out
}

// Rating parses a table cell as a rating. Blank or non-integer cells are 0.
// Decimal cells such as "4.0" are truncated.
func Rating(cell string) int {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// FromMeta builds an assessment from a node's metadata, reading the
// "impact" and "uncertainty" keys. Values may be strings or numbers.
func FromMeta(id string, meta map[string]any) Assessment {
	return Assessment{
		ID:          id,
		Impact:      metaRating(meta["impact"]),
		Uncertainty: metaRating(meta["uncertainty"]),
	}
}

func metaRating(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		return Rating(x)
	}
	return 0
}
