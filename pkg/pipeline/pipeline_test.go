package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/core/ism"
	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/network"
	"github.com/matzehuels/stratum/pkg/core/triage"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/observability"
)

// chain builds A -> B -> C with triage ratings on every node.
func chain(t *testing.T) *network.Network {
	t.Helper()
	net := network.New(nil)
	nodes := []network.Node{
		{ID: "A", Meta: network.Metadata{"impact": 5, "uncertainty": 1}},
		{ID: "B", Meta: network.Metadata{"impact": 4, "uncertainty": 4}},
		{ID: "C", Meta: network.Metadata{"impact": 1, "uncertainty": 5}},
	}
	for _, n := range nodes {
		if err := net.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []network.Edge{{From: "A", To: "B", Weight: 1}, {From: "B", To: "C", Weight: 1}} {
		if err := net.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return net
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if o.Mode != "cycle-aware" || o.PartitionMode() != ism.ModeCycleAware {
		t.Errorf("mode = %q", o.Mode)
	}
	if o.Thresholds != triage.DefaultThresholds() {
		t.Errorf("thresholds = %+v", o.Thresholds)
	}
	if o.TopDrivers != DefaultTopDrivers {
		t.Errorf("top drivers = %d", o.TopDrivers)
	}
	if o.Logger == nil {
		t.Error("logger should default to a discard logger")
	}

	// Idempotent
	o.Mode = "bogus"
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

func TestOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad mode", Options{Mode: "loose"}},
		{"negative impact", Options{Thresholds: triage.Thresholds{Impact: -1}}},
		{"negative uncertainty", Options{Thresholds: triage.Thresholds{Uncertainty: -2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestKeyOpts(t *testing.T) {
	o := Options{Mode: "strict", TopDrivers: 5, Thresholds: triage.Thresholds{Impact: 4}}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	want := cache.AnalysisKeyOpts{Mode: "strict", ImpactThreshold: 4, UncertaintyThreshold: 3, TopDrivers: 5}
	if got := o.KeyOpts(); got != want {
		t.Errorf("KeyOpts() = %+v, want %+v", got, want)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	rep, err := r.Execute(context.Background(), chain(t), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := uuid.Parse(rep.RunID); err != nil {
		t.Errorf("run id %q is not a UUID", rep.RunID)
	}
	if rep.GraphHash == "" {
		t.Error("graph hash should be set")
	}
	if rep.CacheInfo.Hit {
		t.Error("first run cannot be a cache hit")
	}

	wantLevels := []ism.LevelRow{{ID: "C", Level: 1}, {ID: "B", Level: 2}, {ID: "A", Level: 3}}
	if len(rep.Levels) != len(wantLevels) {
		t.Fatalf("levels = %v", rep.Levels)
	}
	for i, row := range wantLevels {
		if rep.Levels[i] != row {
			t.Errorf("levels[%d] = %v, want %v", i, rep.Levels[i], row)
		}
	}
	if rep.LevelCount != 3 || rep.Fallback {
		t.Errorf("level count = %d, fallback = %v", rep.LevelCount, rep.Fallback)
	}

	if rep.Scores[0].Influence != 2 || rep.Scores[2].Dependence != 2 {
		t.Errorf("scores = %+v", rep.Scores)
	}
	if rep.TopDrivers[0].ID != "A" {
		t.Errorf("top driver = %s, want A", rep.TopDrivers[0].ID)
	}
	if rep.Classes[micmac.Driver] != 2 || rep.Classes[micmac.Dependent] != 1 {
		t.Errorf("classes = %v", rep.Classes)
	}

	routes := map[string]triage.Route{"A": triage.Commit, "B": triage.Explore, "C": triage.Park}
	if len(rep.Routes) != len(routes) {
		t.Fatalf("routes = %+v", rep.Routes)
	}
	for _, rt := range rep.Routes {
		if want := routes[rt.ID]; rt.Route != want {
			t.Errorf("route(%s) = %q, want %q", rt.ID, rt.Route, want)
		}
	}
	if rep.Stats.NodeCount != 3 || rep.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", rep.Stats)
	}
}

func TestExecuteNilNetwork(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), nil, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), chain(t), Options{Mode: "loose"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, chain(t), Options{})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
}

func TestExecuteDangling(t *testing.T) {
	net := chain(t)
	if err := net.AddEdge(network.Edge{From: "A", To: "ghost", Weight: 1}); err != nil {
		t.Fatal(err)
	}
	rep, err := NewRunner(nil, nil, nil).Execute(context.Background(), net, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Dangling) != 1 || rep.Dangling[0].To != "ghost" {
		t.Errorf("dangling = %v", rep.Dangling)
	}
	if rep.Scores[0].Influence != 2 {
		t.Errorf("dangling edge should be ignored, A influence = %v", rep.Scores[0].Influence)
	}
}

func TestExecuteCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()

	first, err := r.Execute(ctx, chain(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	second, err := r.Execute(ctx, chain(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.Hit {
		t.Error("second run should hit the cache")
	}
	if second.RunID != first.RunID {
		t.Errorf("cached run id = %s, want %s", second.RunID, first.RunID)
	}
	if second.Classes[micmac.Driver] != 2 {
		t.Errorf("cached classes = %v", second.Classes)
	}

	// Different options miss
	other, err := r.Execute(ctx, chain(t), Options{TopDrivers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheInfo.Hit || len(other.TopDrivers) != 1 {
		t.Errorf("changed options should recompute: hit=%v top=%d", other.CacheInfo.Hit, len(other.TopDrivers))
	}

	// Refresh recomputes
	fresh, err := r.Execute(ctx, chain(t), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.Hit || fresh.RunID == first.RunID {
		t.Error("refresh should bypass the cache")
	}
}

func TestLoadReport(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	rep, err := r.Execute(ctx, chain(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.LoadReport(ctx, rep.RunID)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if got.GraphHash != rep.GraphHash || got.LevelCount != rep.LevelCount {
		t.Errorf("loaded report differs: %+v", got)
	}

	if _, err := r.LoadReport(ctx, "not-a-uuid"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if _, err := r.LoadReport(ctx, uuid.NewString()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestExecuteOverflowSkipsCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	r := NewRunner(c, nil, log.New(&logs))
	ctx := context.Background()

	net := network.New(nil)
	for _, id := range []string{"A", "B"} {
		if err := net.AddNode(network.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []network.Edge{{From: "A", To: "B", Weight: 1e110}, {From: "B", To: "A", Weight: 1e110}} {
		if err := net.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := r.Execute(ctx, net, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !math.IsInf(rep.Scores[0].Influence, 1) {
		t.Errorf("influence = %v, want +Inf", rep.Scores[0].Influence)
	}
	if !strings.Contains(logs.String(), "report not cached") {
		t.Errorf("marshal failure not logged: %q", logs.String())
	}
	if _, err := r.LoadReport(ctx, rep.RunID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unencodable report should not be stored, got %v", err)
	}
}

func TestHashNetwork(t *testing.T) {
	h1, err := HashNetwork(chain(t))
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := HashNetwork(chain(t))
	if h1 != h2 {
		t.Error("hash should be deterministic")
	}

	net := chain(t)
	_ = net.AddEdge(network.Edge{From: "C", To: "A", Weight: 1})
	h3, _ := HashNetwork(net)
	if h1 == h3 {
		t.Error("adding an edge should change the hash")
	}
}

func TestReportJSON(t *testing.T) {
	rep, err := NewRunner(nil, nil, nil).Execute(context.Background(), chain(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"run_id", "graph_hash", "levels", "level_count", "scores", "top_drivers", "routes", "classes"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("report JSON missing %q", key)
		}
	}
	classes := doc["classes"].(map[string]any)
	if classes["Driver"] != float64(2) {
		t.Errorf("classes = %v", classes)
	}
}

type recordingHooks struct {
	observability.NoopAnalysisHooks
	mu        sync.Mutex
	starts    int
	completes int
	fallback  int
}

func (h *recordingHooks) OnAnalysisStart(context.Context, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnAnalysisComplete(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completes++
}

func (h *recordingHooks) OnLevelFallback(_ context.Context, remaining int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fallback = remaining
}

func TestExecuteFallbackFiresHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetAnalysisHooks(hooks)
	defer observability.Reset()

	net := network.New(nil)
	_ = net.AddNode(network.Node{ID: "X"})
	_ = net.AddNode(network.Node{ID: "Y"})
	_ = net.AddEdge(network.Edge{From: "X", To: "Y", Weight: 1})
	_ = net.AddEdge(network.Edge{From: "Y", To: "X", Weight: 1})

	rep, err := NewRunner(nil, nil, nil).Execute(context.Background(), net, Options{Mode: "strict"})
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Fallback || rep.FallbackSize() != 2 {
		t.Errorf("fallback = %v, size = %d", rep.Fallback, rep.FallbackSize())
	}
	if hooks.starts != 1 || hooks.completes != 1 {
		t.Errorf("starts = %d, completes = %d", hooks.starts, hooks.completes)
	}
	if hooks.fallback != 2 {
		t.Errorf("fallback hook remaining = %d, want 2", hooks.fallback)
	}
}

func BenchmarkExecute(b *testing.B) {
	net := network.New(nil)
	for i := 0; i < 60; i++ {
		_ = net.AddNode(network.Node{ID: string(rune('a'+i%26)) + string(rune('A'+i/26))})
	}
	ids := net.IDs()
	for i := range ids {
		_ = net.AddEdge(network.Edge{From: ids[i], To: ids[(i*7+3)%len(ids)], Weight: 1})
	}
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Execute(ctx, net, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
