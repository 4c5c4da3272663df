// Command voicebridge runs the outbound voice-call bridge: the call
// placement API, the carrier webhooks, and the per-call audio relay between
// the carrier's media stream and the agent service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ridgelineroofing/voicebridge/pkg/agentconfig"
	"github.com/ridgelineroofing/voicebridge/pkg/bridge"
	"github.com/ridgelineroofing/voicebridge/pkg/config"
	"github.com/ridgelineroofing/voicebridge/pkg/logger"
	"github.com/ridgelineroofing/voicebridge/pkg/telephony"
	"github.com/ridgelineroofing/voicebridge/pkg/twilio"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.Development})
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("voicebridge exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var settingsStore agentconfig.SettingsStore
	var callLog telephony.CallLogStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		settingsStore = agentconfig.NewPgxStore(pool)
		callLog = telephony.NewPgxCallLogStore(pool)
		log.Info("using postgres stores")
	} else {
		settingsStore = agentconfig.NewMemoryStore()
		callLog = telephony.NewMemoryCallLogStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	resolver := agentconfig.NewResolver(settingsStore, cfg.SettingsCacheTTL, log.Named("resolver"))
	carrier := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioBaseURL)
	initiator := telephony.NewInitiator(resolver, carrier, callLog,
		cfg.PublicURL, cfg.TwilioFromNumber, log.Named("initiator"))
	statusLogger := telephony.NewStatusLogger(callLog, log.Named("calllog"))

	mux := http.NewServeMux()
	telephony.NewHandlers(initiator, statusLogger, callLog, cfg.PublicURL, log.Named("http")).
		RegisterRoutes(mux)
	bridge.NewHandler(
		bridge.NewServiceDialer(cfg.AgentServiceURL, log.Named("agent")),
		log.Named("bridge"),
	).RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("voicebridge listening",
			zap.String("addr", cfg.Addr),
			zap.String("public_url", cfg.PublicURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
