// Package config loads stratum project settings.
//
// Settings come from three layers, later ones winning:
//
//  1. [Default]
//  2. A project file: stratum.toml, stratum.yaml or stratum.yml
//  3. STRATUM_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/core/ism"
	"github.com/matzehuels/stratum/pkg/core/triage"
	"github.com/matzehuels/stratum/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = cache.BackendFile
	CacheRedis = cache.BackendRedis
	CacheNone  = cache.BackendNone
)

// Defaults.
const (
	DefaultProblems   = "data/problems.csv"
	DefaultEdges      = "data/edges.csv"
	DefaultOutputDir  = "docs/data"
	DefaultTopDrivers = 10
	DefaultCacheTTL   = "24h"
	DefaultServerAddr = ":8080"
	DefaultCollection = "reports"
	DefaultDatabase   = "stratum"
)

// FileNames are the project file names searched by [Discover], in order.
var FileNames = []string{"stratum.toml", "stratum.yaml", "stratum.yml"}

// Config is the full project configuration.
type Config struct {
	Data     DataConfig        `toml:"data" yaml:"data" json:"data"`
	Output   OutputConfig      `toml:"output" yaml:"output" json:"output"`
	Analysis AnalysisConfig    `toml:"analysis" yaml:"analysis" json:"analysis"`
	Triage   triage.Thresholds `toml:"triage" yaml:"triage" json:"triage"`
	Cache    CacheConfig       `toml:"cache" yaml:"cache" json:"cache"`
	Mongo    MongoConfig       `toml:"mongo" yaml:"mongo" json:"mongo"`
	Server   ServerConfig      `toml:"server" yaml:"server" json:"server"`
}

// DataConfig locates the input tables.
type DataConfig struct {
	Problems string `toml:"problems" yaml:"problems" json:"problems"`
	Edges    string `toml:"edges" yaml:"edges" json:"edges"`
}

// OutputConfig controls the publication directory.
type OutputConfig struct {
	Dir        string `toml:"dir" yaml:"dir" json:"dir"`
	TopDrivers int    `toml:"top_drivers" yaml:"top_drivers" json:"top_drivers"`
}

// AnalysisConfig selects the leveling mode ("cycle-aware" or "strict").
type AnalysisConfig struct {
	Mode string `toml:"mode" yaml:"mode" json:"mode"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend   string `toml:"backend" yaml:"backend" json:"backend"`
	Dir       string `toml:"dir" yaml:"dir" json:"dir"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	TTL       string `toml:"ttl" yaml:"ttl" json:"ttl"`

	// Project scopes cache keys so several projects can share one Redis.
	Project string `toml:"project" yaml:"project" json:"project"`
}

// MongoConfig points publication at a MongoDB collection.
type MongoConfig struct {
	URI        string `toml:"uri" yaml:"uri" json:"uri"`
	Database   string `toml:"database" yaml:"database" json:"database"`
	Collection string `toml:"collection" yaml:"collection" json:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data:     DataConfig{Problems: DefaultProblems, Edges: DefaultEdges},
		Output:   OutputConfig{Dir: DefaultOutputDir, TopDrivers: DefaultTopDrivers},
		Analysis: AnalysisConfig{Mode: ism.ModeCycleAware.String()},
		Triage:   triage.DefaultThresholds(),
		Cache:    CacheConfig{Backend: CacheFile, TTL: DefaultCacheTTL},
		Mongo:    MongoConfig{Database: DefaultDatabase, Collection: DefaultCollection},
		Server:   ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load builds a configuration from defaults, the file at path (if path is
// non-empty) and the environment, then validates it. Relative data and
// output paths in the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	return cfg, nil
}

// Discover returns the first project file found in dir, or "" if none.
func Discover(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "config %s: use .toml, .yaml or .yml", path)
	}

	base := filepath.Dir(path)
	cfg.Data.Problems = resolve(base, cfg.Data.Problems)
	cfg.Data.Edges = resolve(base, cfg.Data.Edges)
	cfg.Output.Dir = resolve(base, cfg.Output.Dir)
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("STRATUM_PROBLEMS"); v != "" {
		cfg.Data.Problems = v
	}
	if v := os.Getenv("STRATUM_EDGES"); v != "" {
		cfg.Data.Edges = v
	}
	if v := os.Getenv("STRATUM_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("STRATUM_TOP_DRIVERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Output.TopDrivers = i
		}
	}
	if v := os.Getenv("STRATUM_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("STRATUM_CACHE_PROJECT"); v != "" {
		cfg.Cache.Project = v
	}
	if v := os.Getenv("STRATUM_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("STRATUM_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("STRATUM_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Output.TopDrivers < 0 {
		return fmt.Errorf("output.top_drivers must be >= 0")
	}
	if c.Triage.Impact < 0 || c.Triage.Uncertainty < 0 {
		return fmt.Errorf("triage thresholds must be >= 0")
	}
	if _, ok := ism.ParseMode(c.Analysis.Mode); !ok {
		return fmt.Errorf("analysis.mode %q: want cycle-aware or strict", c.Analysis.Mode)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q: want file, redis or none", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Mongo.URI != "" {
		if err := errors.ValidateURI(c.Mongo.URI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
	}
	return nil
}

// CacheTTL parses Cache.TTL. An empty TTL means entries never expire.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("cache.ttl %q: want a non-negative duration like 24h", c.Cache.TTL)
	}
	return d, nil
}

// Mode returns the parsed leveling mode. Call after Validate.
func (c Config) Mode() ism.Mode {
	m, _ := ism.ParseMode(c.Analysis.Mode)
	return m
}
