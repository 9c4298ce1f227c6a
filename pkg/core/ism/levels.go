package ism

import "github.com/matzehuels/stratum/pkg/core/network"

// Mode selects the qualification rule used by [Partition].
type Mode int

const (
	// ModeCycleAware lets a node qualify when everything it still reaches
	// also reaches it back. Members of a cycle therefore level together as
	// soon as their external targets are placed. This is the default.
	ModeCycleAware Mode = iota

	// ModeStrict lets a node qualify only when it reaches nothing unplaced
	// besides itself. On acyclic input it matches ModeCycleAware exactly;
	// a cycle never qualifies and always ends in the fallback level.
	ModeStrict
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeCycleAware:
		return "cycle-aware"
	case ModeStrict:
		return "strict"
	}
	return "unknown"
}

// Levels is a partition of node indices into ordered levels.
//
// Groups[0] is level 1, the most downstream set; the last group holds the
// most upstream drivers. Within a group, indices are ascending (original node
// order).
type Levels struct {
	Groups [][]int

	// Fallback is true when a round found no qualifying node while some were
	// still unplaced, and the remainder was lumped into one final level.
	// In ModeCycleAware with a closed matrix this cannot happen, so it flags
	// a matrix that was not transitively closed.
	Fallback bool
}

// Count returns the number of levels.
func (l Levels) Count() int { return len(l.Groups) }

// Assignment returns the 1-indexed level of every node index.
func (l Levels) Assignment(n int) []int {
	out := make([]int, n)
	for li, g := range l.Groups {
		for _, i := range g {
			out[i] = li + 1
		}
	}
	return out
}

// Partition levels the nodes of a closed reachability matrix.
//
// Each round collects every unplaced node i such that, for all j,
// !r[i][j] || placed[j] || j == i (ModeCycleAware also accepts r[j][i]).
// Those nodes become the next level and are marked placed. Rounds repeat
// until every node is placed.
//
// If a round finds no candidate while nodes remain, all remaining nodes form
// one final level and Fallback is set. Every round places at least one node,
// so at most n rounds run.
func Partition(r *BoolMatrix, mode Mode) Levels {
	n := r.Size()
	placed := make([]bool, n)
	remaining := n
	var out Levels

	for remaining > 0 {
		var level []int
		for i := 0; i < n; i++ {
			if !placed[i] && qualifies(r, placed, i, mode) {
				level = append(level, i)
			}
		}

		if len(level) == 0 {
			for i := 0; i < n; i++ {
				if !placed[i] {
					level = append(level, i)
				}
			}
			out.Fallback = true
		}

		// Mark after the scan so nodes in the same round don't see each other.
		for _, i := range level {
			placed[i] = true
		}
		remaining -= len(level)
		out.Groups = append(out.Groups, level)
	}
	return out
}

func qualifies(r *BoolMatrix, placed []bool, i int, mode Mode) bool {
	n := r.n
	row := r.data[i*n : (i+1)*n]
	for j, reach := range row {
		if !reach || placed[j] || j == i {
			continue
		}
		if mode == ModeCycleAware && r.data[j*n+i] {
			continue
		}
		return false
	}
	return true
}

// LevelRow is one row of the level table.
type LevelRow struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Result is the outcome of [Analyze].
type Result struct {
	// Rows holds one entry per node, sorted by level ascending and then by
	// original node order.
	Rows []LevelRow `json:"rows"`

	// LevelCount is the number of distinct levels.
	LevelCount int `json:"level_count"`

	// Fallback reports that the deadlock fallback was taken.
	Fallback bool `json:"fallback,omitempty"`

	// Matrix is the closed reachability matrix the levels were derived from.
	Matrix *BoolMatrix `json:"-"`
}

// Analyze builds the closed reachability matrix of net and levels it.
func Analyze(net *network.Network, mode Mode) Result {
	r := Reachability(net)
	lv := Partition(r, mode)
	ids := net.IDs()

	rows := make([]LevelRow, 0, len(ids))
	for li, g := range lv.Groups {
		for _, i := range g {
			rows = append(rows, LevelRow{ID: ids[i], Level: li + 1})
		}
	}
	return Result{
		Rows:       rows,
		LevelCount: lv.Count(),
		Fallback:   lv.Fallback,
		Matrix:     r,
	}
}

// ParseMode parses "cycle-aware" or "strict". The empty string selects
// ModeCycleAware.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "cycle-aware":
		return ModeCycleAware, true
	case "strict":
		return ModeStrict, true
	}
	return ModeCycleAware, false
}
