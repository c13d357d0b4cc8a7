package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/api"
	"github.com/nidhogg/cogkernel/internal/atomspace"
	"github.com/nidhogg/cogkernel/internal/audit"
	"github.com/nidhogg/cogkernel/internal/bridge"
	"github.com/nidhogg/cogkernel/internal/collab"
	"github.com/nidhogg/cogkernel/internal/config"
	"github.com/nidhogg/cogkernel/internal/kernel"
	"github.com/nidhogg/cogkernel/internal/mirror"
	"github.com/nidhogg/cogkernel/internal/replicator"
	"github.com/nidhogg/cogkernel/internal/scheduler"
	"github.com/nidhogg/cogkernel/internal/semanticindex"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("starting cogkernel...")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/kerneld.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("config loaded", zap.String("path", cfgPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var transport collab.Transport
	if cfg.Database.Redis.URL != "" {
		rt, rtErr := replicator.NewRedisTransport(cfg.Database.Redis.URL, logger)
		if rtErr != nil {
			logger.Warn("redis unavailable, running without cross-node replication", zap.Error(rtErr))
		} else {
			transport = rt
			defer rt.Close()
		}
	}

	var observers []atomspace.Observer

	var mirrorStore *mirror.Store
	if cfg.Database.Neo4j.URI != "" {
		ms, msErr := mirror.NewStore(ctx, cfg.Database.Neo4j.URI, cfg.Database.Neo4j.User, cfg.Database.Neo4j.Password, logger)
		if msErr != nil {
			logger.Warn("neo4j unavailable, running without durability mirror", zap.Error(msErr))
		} else {
			mirrorStore = ms
			observers = append(observers, ms)
			defer ms.Close(ctx)
		}
	}

	var index *semanticindex.Client
	if cfg.Database.Qdrant.Host != "" {
		embedder := semanticindex.NewHashEmbedder(cfg.Embedding.Dimension)
		ic, icErr := semanticindex.NewClient(ctx, semanticindex.Config{
			Host: cfg.Database.Qdrant.Host,
			Port: cfg.Database.Qdrant.Port,
		}, embedder, logger)
		if icErr != nil {
			logger.Warn("qdrant unavailable, running without semantic index", zap.Error(icErr))
		} else {
			index = ic
			observers = append(observers, ic)
			defer ic.Close()
		}
	}

	var auditRecorder *audit.Recorder
	if cfg.Database.Postgres.DSN != "" {
		as, asErr := audit.New(ctx, cfg.Database.Postgres.DSN, logger)
		if asErr != nil {
			logger.Warn("postgres unavailable, running without audit trail", zap.Error(asErr))
		} else {
			if mErr := as.Migrate(ctx, "internal/audit/migrations"); mErr != nil {
				logger.Fatal("audit migration failed", zap.Error(mErr))
			}
			auditRecorder = audit.NewRecorder(as, logger)
			defer as.Close()
		}
	}

	k, err := kernel.New(kernel.Config{
		NodeID:       cfg.Cluster.NodeID,
		Peers:        cfg.Cluster.Peers,
		SyncInterval: time.Duration(cfg.Cluster.SyncInterval) * time.Second,
		Policy:       scheduler.Policy(cfg.Cluster.Policy),
		Transport:    transport,
		Audit:        auditRecorder,
		Observers:    observers,
	}, logger)
	if err != nil {
		logger.Fatal("failed to construct kernel", zap.Error(err))
	}

	if mirrorStore != nil {
		restored, restoreErr := mirrorStore.RestoreFromMirror(ctx)
		if restoreErr != nil {
			logger.Warn("mirror restore failed", zap.Error(restoreErr))
		} else {
			atoms := make([]*atomspace.Atom, len(restored))
			for i, m := range restored {
				atoms[i] = m.ToAtom()
			}
			k.RestoreAtoms(atoms)
			logger.Info("restored atoms from mirror", zap.Int("count", len(atoms)))
		}
	}

	chatBridge := bridge.New(k, logger)
	if cfg.Gateway.Slack.Enabled && cfg.Gateway.Slack.BotToken != "" {
		chatBridge.Register(bridge.NewSlackAdapter(cfg.Gateway.Slack.BotToken, cfg.Gateway.Slack.AppToken, logger))
	}
	if cfg.Gateway.Discord.Enabled && cfg.Gateway.Discord.BotToken != "" {
		chatBridge.Register(bridge.NewDiscordAdapter(cfg.Gateway.Discord.BotToken, logger))
	}
	if err := chatBridge.ConnectAll(ctx); err != nil {
		logger.Warn("some bridge adapters failed to connect", zap.Error(err))
	}

	schedTicker := collab.NewTicker(100*time.Millisecond, logger)
	schedTicker.AddListener(tickFunc(func(time.Time) { k.Schedule() }))
	schedTicker.Start()
	defer schedTicker.Stop()

	decayTicker := collab.NewTicker(10*time.Second, logger)
	decayTicker.AddListener(tickFunc(func(time.Time) { k.DecayAttention() }))
	decayTicker.Start()
	defer decayTicker.Stop()

	syncTicker := collab.NewTicker(5*time.Second, logger)
	syncTicker.AddListener(tickFunc(func(time.Time) {
		if _, err := k.Sync(ctx); err != nil {
			logger.Warn("sync failed", zap.Error(err))
		}
		if applied, conflicts, err := k.PullRemoteOps(ctx, 200*time.Millisecond); err != nil {
			logger.Warn("pull remote ops failed", zap.Error(err))
		} else if applied > 0 || conflicts > 0 {
			logger.Info("pulled remote ops", zap.Int("applied", applied), zap.Int("conflicts", conflicts))
		}
	}))
	syncTicker.Start()
	defer syncTicker.Stop()

	handler := api.NewHandler(k, index, logger)
	port := fmt.Sprintf("%d", cfg.Server.Port)
	if port == "0" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("cogkernel listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down cogkernel...")
	cancel()
	srv.Shutdown(context.Background())
	if err := chatBridge.Close(); err != nil {
		logger.Warn("bridge close error", zap.Error(err))
	}
}

// tickFunc adapts a plain function to collab.TickListener.
type tickFunc func(now time.Time)

func (f tickFunc) OnTick(now time.Time) { f(now) }
