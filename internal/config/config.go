package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLogLevel  = "GLYPHSEG_LOG_LEVEL"
	EnvStorePath = "GLYPHSEG_STORE_PATH"
)

// CorpusConfig lists the transcription files analysed when no paths are given.
type CorpusConfig struct {
	Paths []string `yaml:"paths,omitempty"`
}

// VectorizerConfig selects how lines become feature vectors.
type VectorizerConfig struct {
	// Type is "count" or "tfidf".
	Type string `yaml:"type"`
}

// SegmentationConfig configures the partition search and model selection.
type SegmentationConfig struct {
	// Cost is "cosine" or "l2".
	Cost       string `yaml:"cost"`
	MinSize    int    `yaml:"min_size"`
	Jump       int    `yaml:"jump"`
	Candidates []int  `yaml:"candidates"`
	Workers    int    `yaml:"workers"`
	MaxLines   int    `yaml:"max_lines"`
}

// AnalysisConfig tunes the per-segment and corpus-wide glyph analyses.
type AnalysisConfig struct {
	DistinctiveTopN int     `yaml:"distinctive_top_n"`
	CollocationTopN int     `yaml:"collocation_top_n"`
	ClusterMinCount int     `yaml:"cluster_min_count"`
	ClusterAlpha    float64 `yaml:"cluster_alpha"`
}

// SQLiteConfig locates the run database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects where analysis runs are persisted.
type StoreConfig struct {
	// Type is "none" or "sqlite".
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant line store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LineStoreConfig selects where line vectors are kept for similarity queries.
type LineStoreConfig struct {
	// Type is "memory" or "qdrant".
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus       CorpusConfig       `yaml:"corpus"`
	Vectorizer   VectorizerConfig   `yaml:"vectorizer"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	LineStore    LineStoreConfig    `yaml:"line_store"`
	Store        StoreConfig        `yaml:"store"`
	Log          LogConfig          `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./glyphseg.yaml first, then ~/.config/glyphseg/config.yaml.
// If neither exists, it writes defaults to ~/.config/glyphseg/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "glyphseg.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first setting the analysis cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Vectorizer.Type {
	case "count", "tfidf":
	default:
		return fmt.Errorf("unknown vectorizer %q", c.Vectorizer.Type)
	}
	switch c.Segmentation.Cost {
	case "cosine", "l2":
	default:
		return fmt.Errorf("unknown cost %q", c.Segmentation.Cost)
	}
	if c.Segmentation.MinSize < 1 {
		return fmt.Errorf("segmentation.min_size must be at least 1, got %d", c.Segmentation.MinSize)
	}
	if c.Segmentation.Jump < 1 {
		return fmt.Errorf("segmentation.jump must be at least 1, got %d", c.Segmentation.Jump)
	}
	if len(c.Segmentation.Candidates) == 0 {
		return errors.New("segmentation.candidates is empty")
	}
	for _, k := range c.Segmentation.Candidates {
		if k < 0 {
			return fmt.Errorf("segmentation.candidates contains negative count %d", k)
		}
	}
	if a := c.Analysis.ClusterAlpha; a <= 0 || a >= 1 {
		return fmt.Errorf("analysis.cluster_alpha must be in (0, 1), got %g", a)
	}
	switch c.LineStore.Type {
	case "memory":
	case "qdrant":
		if c.LineStore.Qdrant == nil || c.LineStore.Qdrant.URL == "" {
			return errors.New("line_store.qdrant.url is required for the qdrant line store")
		}
	default:
		return fmt.Errorf("unknown line store %q", c.LineStore.Type)
	}
	switch c.Store.Type {
	case "none":
	case "sqlite":
		if c.Store.SQLite == nil || c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store.Type)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "glyphseg", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Vectorizer: VectorizerConfig{Type: "count"},
		Segmentation: SegmentationConfig{
			Cost:       "cosine",
			MinSize:    2,
			Jump:       1,
			Candidates: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			Workers:    4,
			MaxLines:   5000,
		},
		Analysis: AnalysisConfig{
			DistinctiveTopN: 10,
			CollocationTopN: 10,
			ClusterMinCount: 5,
			ClusterAlpha:    0.05,
		},
		LineStore: LineStoreConfig{Type: "memory"},
		Store:     StoreConfig{Type: "none"},
		Log:       LogConfig{Level: "info"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Vectorizer.Type == "" {
		cfg.Vectorizer.Type = def.Vectorizer.Type
	}
	seg := &cfg.Segmentation
	if seg.Cost == "" {
		seg.Cost = def.Segmentation.Cost
	}
	if seg.MinSize == 0 {
		seg.MinSize = def.Segmentation.MinSize
	}
	if seg.Jump == 0 {
		seg.Jump = def.Segmentation.Jump
	}
	if seg.Candidates == nil {
		seg.Candidates = def.Segmentation.Candidates
	}
	if seg.Workers == 0 {
		seg.Workers = def.Segmentation.Workers
	}
	if seg.MaxLines == 0 {
		seg.MaxLines = def.Segmentation.MaxLines
	}
	an := &cfg.Analysis
	if an.DistinctiveTopN == 0 {
		an.DistinctiveTopN = def.Analysis.DistinctiveTopN
	}
	if an.CollocationTopN == 0 {
		an.CollocationTopN = def.Analysis.CollocationTopN
	}
	if an.ClusterMinCount == 0 {
		an.ClusterMinCount = def.Analysis.ClusterMinCount
	}
	if an.ClusterAlpha == 0 {
		an.ClusterAlpha = def.Analysis.ClusterAlpha
	}
	if cfg.LineStore.Type == "" {
		cfg.LineStore.Type = def.LineStore.Type
	}
	if q := cfg.LineStore.Qdrant; cfg.LineStore.Type == "qdrant" && q != nil {
		if q.Collection == "" {
			q.Collection = "glyph_lines"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = def.Store.Type
	}
	if cfg.Store.Type == "sqlite" {
		if cfg.Store.SQLite == nil {
			cfg.Store.SQLite = &SQLiteConfig{}
		}
		if cfg.Store.SQLite.Path == "" {
			cfg.Store.SQLite.Path = "glyphseg.db"
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		cfg.Store.Type = "sqlite"
		cfg.Store.SQLite = &SQLiteConfig{Path: v}
	}
}
