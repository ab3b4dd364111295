package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"glyphseg/internal/chunker"
	"glyphseg/internal/config"
	"glyphseg/internal/embedding"
	"glyphseg/internal/embedding/count"
	"glyphseg/internal/embedding/tfidf"
	"glyphseg/internal/logger"
	"glyphseg/internal/report"
	"glyphseg/internal/service"
	"glyphseg/internal/store"
	"glyphseg/internal/summarizer"
	"glyphseg/internal/tui"
	"glyphseg/internal/vectorstore"
	"glyphseg/internal/vectorstore/memory"
	"glyphseg/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		asJSON  bool
		forceK  int
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./glyphseg.yaml or ~/.config/glyphseg/config.yaml if not provided)")
	flag.BoolVar(&asJSON, "json", false, "Write the analysis as JSON to stdout instead of opening the browser")
	flag.IntVar(&forceK, "k", -1, "Use exactly this many breakpoints instead of selecting by AIC")
	flag.Parse()

	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	log := logger.New(logCfg)

	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid config", err)
	}
	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = cfg.Corpus.Paths
	}
	if len(inputs) == 0 {
		fmt.Println("Usage: glyphseg [--config=glyphseg.yaml] [--json] [--k=N] file1.csv [file2.txt ...]")
		os.Exit(1)
	}

	if err := run(cfg, log, inputs, os.Stdout, asJSON, forceK); err != nil {
		fatal(log, "glyphseg failed", err)
	}
}

// run assembles the pipeline and closes what it opens before returning.
// With asJSON the report goes to out; otherwise the browser takes the terminal.
func run(cfg *config.AppConfig, log logger.Logger, inputs []string, out io.Writer, asJSON bool, forceK int) error {
	// Assemble components
	var vec embedding.Vectorizer
	switch cfg.Vectorizer.Type {
	case "tfidf":
		vec = tfidf.NewVectorizer()
	default:
		vec = count.NewVectorizer()
	}

	var lines vectorstore.Storage
	switch cfg.LineStore.Type {
	case "qdrant":
		q := cfg.LineStore.Qdrant
		lines = qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	default:
		lines = memory.NewStorage()
	}

	var runs service.RunStore
	if cfg.Store.Type == "sqlite" {
		st, err := store.NewStore(cfg.Store.SQLite.Path)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer st.Close()
		runs = st
	}

	settings := service.SettingsFromConfig(cfg)
	settings.ForceK = forceK
	svc := service.NewAnalysisService(vec, chunker.NewBreakpointChunker(), summarizer.NewDistinctiveSummarizer(), lines, runs, settings, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	analysis, err := svc.Analyze(ctx, inputs)
	if err != nil {
		return err
	}

	if asJSON {
		if err := report.WriteJSON(out, analysis); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}

	m := tui.New(svc, analysis)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
