package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sezna/lasr/actors"
	"github.com/sezna/lasr/config"
	"github.com/sezna/lasr/core"
	daclient "github.com/sezna/lasr/da/client"
	"github.com/sezna/lasr/observability/logging"
	"github.com/sezna/lasr/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := os.Getenv("LASR_ENV")
	logger := logging.Setup("lasrd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open blob store", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	da := daclient.New(db, logger)
	go da.Run()
	defer func() {
		da.Stop()
		<-da.Done()
	}()
	go drainRetrievals(ctx, da, logger)

	eoInbox := make(chan actors.EoMessage, cfg.MailboxDepth)
	go runEoSink(ctx, eoInbox, logger)

	node := core.NewNode(cfg, logger, actors.NewEoHandle(eoInbox), da.Handle())
	node.Start()
	defer node.Stop()

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		size, err := node.Accounts().Size(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"network":        cfg.NetworkName,
			"cachedAccounts": size,
		})
	})

	server := &http.Server{Addr: cfg.ListenAddress, Handler: router}
	go func() {
		logger.Info("http server listening", slog.String("address", cfg.ListenAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.Any("error", err))
	}
}

// runEoSink stands in for an external execution/output actor: it accepts the
// cache notifications and logs settlement triggers. Removal signals are kept
// unresolved, so cached entries stay resident until a real EO peer is wired
// in.
func runEoSink(ctx context.Context, inbox <-chan actors.EoMessage, logger *slog.Logger) {
	log := logger.With(slog.String("actor", actors.KindEoServer.String()))
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-inbox:
			switch m := msg.(type) {
			case actors.AccountCached:
				log.Debug("account cached", slog.String("address", m.Address.Hex()))
			case actors.Settle:
				log.Info("blob ready for settlement",
					slog.String("address", m.Address.Hex()),
					slog.String("batch_header_hash", m.BatchHeaderHash),
					slog.Uint64("blob_index", m.BlobIndex))
			}
		}
	}
}

func drainRetrievals(ctx context.Context, da *daclient.Client, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case blob := <-da.Retrievals():
			logger.Info("blob retrieved",
				slog.String("batch_header_hash", blob.BatchHeaderHash),
				slog.Uint64("blob_index", blob.BlobIndex),
				slog.Int("bytes", len(blob.Data)))
		}
	}
}
