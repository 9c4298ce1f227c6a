// Package pipeline runs the complete stratum analysis over one network.
//
// The CLI, the HTTP API and tests all go through [Runner], so every entry
// point hashes, caches, levels, scores and routes a network the same way.
//
// # Stages
//
// A run has three independent stages over the same immutable network:
//
//  1. ISM: close the reachability matrix and partition nodes into levels
//  2. MICMAC: score influence and dependence over paths of up to three hops
//  3. Triage: route every problem by its impact and uncertainty ratings
//
// The stages share no state and run concurrently. The assembled [Report] is
// cached under the network's content hash and the options that shape it.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	report, err := runner.Execute(ctx, net, pipeline.Options{TopDrivers: 10})
//	if err != nil {
//	    return err
//	}
//	for _, row := range report.Levels {
//	    fmt.Println(row.ID, row.Level)
//	}
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/core/ism"
	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/triage"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTopDrivers is how many rows the top-drivers table keeps.
	DefaultTopDrivers = 10

	// DefaultMode is the default level partitioning rule.
	DefaultMode = ism.ModeCycleAware
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a run. It supports JSON for API requests.
type Options struct {
	// Mode names the level partitioning rule: "cycle-aware" (default) or
	// "strict".
	Mode string `json:"mode,omitempty"`

	// Thresholds are the triage cut-offs. Zero fields take the default.
	Thresholds triage.Thresholds `json:"thresholds,omitzero"`

	// TopDrivers is the size of the top-drivers table. Zero takes the
	// default; a negative value keeps every node.
	TopDrivers int `json:"top_drivers,omitempty"`

	// Refresh skips the cache lookup. The fresh report is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	mode ism.Mode
	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	mode, ok := ism.ParseMode(o.Mode)
	if !ok {
		return fmt.Errorf("invalid mode: %q (must be one of: cycle-aware, strict)", o.Mode)
	}
	o.mode = mode
	o.Mode = mode.String()

	if o.Thresholds.Impact < 0 || o.Thresholds.Uncertainty < 0 {
		return fmt.Errorf("thresholds must be >= 0")
	}
	if o.Thresholds.Impact == 0 {
		o.Thresholds.Impact = triage.DefaultThreshold
	}
	if o.Thresholds.Uncertainty == 0 {
		o.Thresholds.Uncertainty = triage.DefaultThreshold
	}
	if o.TopDrivers == 0 {
		o.TopDrivers = DefaultTopDrivers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// PartitionMode returns the parsed Mode. Call ValidateAndSetDefaults first.
func (o *Options) PartitionMode() ism.Mode { return o.mode }

// KeyOpts returns the cache key options for these settings.
func (o *Options) KeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		Mode:                 o.Mode,
		ImpactThreshold:      o.Thresholds.Impact,
		UncertaintyThreshold: o.Thresholds.Uncertainty,
		TopDrivers:           o.TopDrivers,
	}
}

// =============================================================================
// Report - Pipeline Output
// =============================================================================

// Report is the outcome of a run. It is what report.json holds and what the
// cache stores.
type Report struct {
	// RunID identifies the run that computed the report.
	RunID string `json:"run_id"`

	// GraphHash is the content hash of the analysed network.
	GraphHash string `json:"graph_hash"`

	CreatedAt  time.Time         `json:"created_at"`
	Mode       string            `json:"mode"`
	Thresholds triage.Thresholds `json:"thresholds"`

	// Levels lists every node with its 1-indexed level, level 1 first.
	Levels     []ism.LevelRow `json:"levels"`
	LevelCount int            `json:"level_count"`

	// Fallback reports that partitioning lumped the remaining nodes into
	// one final level.
	Fallback bool `json:"fallback"`

	// Scores are in input node order.
	Scores     []micmac.Score       `json:"scores"`
	TopDrivers []micmac.Score       `json:"top_drivers"`
	Classes    map[micmac.Class]int `json:"classes"`

	Routes      []triage.Routed      `json:"routes"`
	RouteCounts map[triage.Route]int `json:"route_counts"`

	// Dangling lists edges that name an unknown node. They are ignored by
	// every stage.
	Dangling []DanglingEdge `json:"dangling,omitempty"`

	Stats Stats `json:"stats"`

	// CacheInfo is set per call and never stored.
	CacheInfo CacheInfo `json:"-"`
}

// DanglingEdge is an edge whose source or target is not a node.
type DanglingEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Stats contains run statistics.
type Stats struct {
	NodeCount  int           `json:"nodes"`
	EdgeCount  int           `json:"edges"`
	ISMTime    time.Duration `json:"ism_ns"`
	MICMACTime time.Duration `json:"micmac_ns"`
	TotalTime  time.Duration `json:"total_ns"`
}

// CacheInfo tracks whether the report came from the cache.
type CacheInfo struct {
	Hit bool
}

// FallbackSize returns how many nodes the fallback level holds, or 0 when
// no fallback happened.
func (r *Report) FallbackSize() int {
	if !r.Fallback {
		return 0
	}
	n := 0
	for _, row := range r.Levels {
		if row.Level == r.LevelCount {
			n++
		}
	}
	return n
}
