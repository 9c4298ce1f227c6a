package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/core/ism"
	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/network"
	"github.com/matzehuels/stratum/pkg/core/triage"
	"github.com/matzehuels/stratum/pkg/errors"
	stratumio "github.com/matzehuels/stratum/pkg/io"
	"github.com/matzehuels/stratum/pkg/observability"
)

// Key types reported to cache hooks.
const (
	keyTypeAnalysis = "analysis"
	keyTypeReport   = "report"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store reports itself. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides cache.TTLAnalysis when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute analyses net and returns its report, from the cache when an
// identical network was analysed with the same options.
func (r *Runner) Execute(ctx context.Context, net *network.Network, opts Options) (*Report, error) {
	if net == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "network is required")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	graphHash, err := HashNetwork(net)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash network")
	}
	key := r.Keyer.AnalysisKey(graphHash, opts.KeyOpts())

	if !opts.Refresh {
		if rep, ok := r.lookup(ctx, key, keyTypeAnalysis); ok {
			rep.CacheInfo.Hit = true
			r.Logger.Info("report from cache", "run_id", rep.RunID, "graph", short(graphHash))
			return rep, nil
		}
	}

	rep, err := r.analyze(ctx, net, opts)
	if err != nil {
		return nil, err
	}
	rep.GraphHash = graphHash

	data, err := json.Marshal(rep)
	if err != nil {
		r.Logger.Warn("report not cached", "run_id", rep.RunID, "error", err)
		return rep, nil
	}
	ttl := cache.TTLAnalysis
	if r.TTL > 0 {
		ttl = r.TTL
	}
	r.store(ctx, key, keyTypeAnalysis, data, ttl)
	r.store(ctx, r.Keyer.ReportKey(rep.RunID), keyTypeReport, data, cache.TTLReport)
	return rep, nil
}

// LoadReport returns a report previously computed by Execute.
func (r *Runner) LoadReport(ctx context.Context, runID string) (*Report, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid run id %q", runID)
	}
	rep, ok := r.lookup(ctx, r.Keyer.ReportKey(runID), keyTypeReport)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "report %s not found", runID)
	}
	rep.CacheInfo.Hit = true
	return rep, nil
}

// analyze runs the three stages concurrently and assembles the report.
func (r *Runner) analyze(ctx context.Context, net *network.Network, opts Options) (rep *Report, err error) {
	start := time.Now()
	hooks := observability.Analysis()
	hooks.OnAnalysisStart(ctx, net.NodeCount(), net.EdgeCount())
	defer func() {
		hooks.OnAnalysisComplete(ctx, net.NodeCount(), time.Since(start), err)
	}()

	rep = &Report{
		RunID:      uuid.NewString(),
		CreatedAt:  start.UTC(),
		Mode:       opts.Mode,
		Thresholds: opts.Thresholds,
		Stats: Stats{
			NodeCount: net.NodeCount(),
			EdgeCount: net.EdgeCount(),
		},
	}

	for _, e := range net.Dangling() {
		rep.Dangling = append(rep.Dangling, DanglingEdge{From: e.From, To: e.To})
		opts.Logger.Debug("ignoring edge to unknown node", "from", e.From, "to", e.To)
	}

	var (
		levels ism.Result
		scores []micmac.Score
		routes []triage.Routed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		t := time.Now()
		levels = ism.Analyze(net, opts.PartitionMode())
		rep.Stats.ISMTime = time.Since(t)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		t := time.Now()
		scores = micmac.Analyze(net)
		rep.Stats.MICMACTime = time.Since(t)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		items := make([]triage.Assessment, 0, net.NodeCount())
		for _, n := range net.Nodes() {
			items = append(items, triage.FromMeta(n.ID, n.Meta))
		}
		routes = triage.Enrich(items, opts.Thresholds)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "analysis interrupted")
	}

	rep.Levels = levels.Rows
	rep.LevelCount = levels.LevelCount
	rep.Fallback = levels.Fallback
	rep.Scores = scores
	rep.TopDrivers = micmac.TopDrivers(scores, opts.TopDrivers)
	rep.Classes = micmac.CountByClass(scores)
	rep.Routes = routes
	rep.RouteCounts = triage.Counts(routes)
	rep.Stats.TotalTime = time.Since(start)

	if rep.Fallback {
		remaining := rep.FallbackSize()
		hooks.OnLevelFallback(ctx, remaining)
		opts.Logger.Warn("level partition deadlocked; remaining nodes share the last level",
			"remaining", remaining, "level", rep.LevelCount)
	}

	opts.Logger.Info("analysed network",
		"nodes", rep.Stats.NodeCount,
		"edges", rep.Stats.EdgeCount,
		"levels", rep.LevelCount,
		"duration", rep.Stats.TotalTime)
	return rep, nil
}

func (r *Runner) lookup(ctx context.Context, key, keyType string) (*Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	var rep Report
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&rep); err != nil {
		// Unreadable entries are recomputed.
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return &rep, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// HashNetwork returns the content hash of net: its node-link JSON form,
// hashed with SHA-256.
func HashNetwork(net *network.Network) (string, error) {
	var buf bytes.Buffer
	if err := stratumio.WriteJSON(net, &buf); err != nil {
		return "", fmt.Errorf("serialize network: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
