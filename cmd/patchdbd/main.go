// Package main provides patchdbd - a minimal demo daemon that wires a
// PatchDB manager to a SQLite-backed stable store, a websocket event feed,
// and optional libp2p gossip.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/klingon-exchange/klingon-v2/internal/patchdb"
	"github.com/klingon-exchange/klingon-v2/internal/patchmgr"
	"github.com/klingon-exchange/klingon-v2/internal/stablestore"
	"github.com/klingon-exchange/klingon-v2/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		dataDir      = flag.String("data-dir", "~/.patchdb", "Data directory")
		configFile   = flag.String("config", "", "Config file path; only its directory is used and the file read there is always patchmgr.yaml (default: <data-dir>/patchmgr.yaml)")
		apiAddr      = flag.String("api", "127.0.0.1:8090", "Event WebSocket listen address")
		enableGossip = flag.Bool("gossip", false, "Enable libp2p gossip of stabilized branches, overrides config")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		showVersion  = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	log := logging.New(&logging.Config{
		Level:      *logLevel,
		TimeFormat: time.TimeOnly,
	})
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("patchdbd %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	configDir := *dataDir
	if *configFile != "" {
		configDir = filepath.Dir(*configFile)
	}
	cfg, err := patchmgr.LoadConfig(configDir)
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}
	cfg.DataDir = *dataDir
	if *enableGossip {
		cfg.Gossip.Enabled = true
	}

	log.Info("config loaded", "data_dir", cfg.DataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := stablestore.New(&stablestore.Config{DataDir: cfg.DataDir})
	if err != nil {
		log.Fatal("failed to initialize stable store", "error", err)
	}
	defer store.Close()
	log.Info("stable store initialized", "data_dir", cfg.DataDir)

	var metrics *patchmgr.Metrics
	if cfg.Metrics.Enabled {
		metrics = patchmgr.NewMetrics(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
		log.Info("metrics enabled", "namespace", cfg.Metrics.Namespace)
	}

	events := patchmgr.NewEventBroadcaster(log.Component("events"))
	http.Handle("/ws", events)
	go func() {
		if err := http.ListenAndServe(*apiAddr, nil); err != nil {
			log.Error("event server stopped", "error", err)
		}
	}()
	log.Info("event websocket listening", "addr", *apiAddr)

	var gossip *patchmgr.Gossip
	if cfg.Gossip.Enabled {
		gossip, err = patchmgr.NewGossip(ctx, cfg.Gossip, log.Component("gossip"))
		if err != nil {
			log.Warn("failed to start gossip", "error", err)
		} else {
			defer gossip.Close()
			log.Info("gossip started", "topic", cfg.Gossip.Topic)
		}
	}

	mgr := patchmgr.NewManager(&patchmgr.ManagerConfig{
		Config:  cfg,
		Store:   store,
		Metrics: metrics,
		Events:  events,
		Gossip:  gossip,
		Logger:  log.Component("manager"),
	})

	// Track a fresh root branch so the daemon has somewhere to build from.
	handle, err := mgr.Track(patchdb.New())
	if err != nil {
		log.Fatal("failed to track initial branch", "error", err)
	}
	log.Info("tracking initial branch", "handle", handle)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	log.Info("shutting down...")
	cancel()
	log.Info("goodbye!")
}
