// Package cache stores analysis results between runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for shared deployments of the HTTP API, and [NullCache] when caching is
// off. Keys come from a [Keyer] so callers never build them by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	// TTLAnalysis bounds how long a computed report stays reusable for an
	// unchanged network.
	TTLAnalysis = 24 * time.Hour

	// TTLReport bounds how long a report stays retrievable by run ID.
	TTLReport = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// AnalysisKey identifies the report for a network with the given
	// content hash under the given options.
	AnalysisKey(graphHash string, opts AnalysisKeyOpts) string
	// ReportKey identifies a stored report by run ID.
	ReportKey(runID string) string
}

// AnalysisKeyOpts holds every option that changes a report.
type AnalysisKeyOpts struct {
	Mode                 string `json:"mode"`
	ImpactThreshold      int    `json:"impact_threshold"`
	UncertaintyThreshold int    `json:"uncertainty_threshold"`
	TopDrivers           int    `json:"top_drivers"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AnalysisKey returns "analysis:" followed by a hash of the graph hash and
// options.
func (DefaultKeyer) AnalysisKey(graphHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", graphHash, opts)
}

// ReportKey returns "report:<runID>".
func (DefaultKeyer) ReportKey(runID string) string {
	return "report:" + runID
}
