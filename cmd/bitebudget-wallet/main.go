package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AlexZinkM/bitebudget-wallet/feed"
	"github.com/AlexZinkM/bitebudget-wallet/internal/api"
	"github.com/AlexZinkM/bitebudget-wallet/internal/client"
	"github.com/AlexZinkM/bitebudget-wallet/internal/config"
	"github.com/AlexZinkM/bitebudget-wallet/internal/connect"
	"github.com/AlexZinkM/bitebudget-wallet/internal/handler"
	"github.com/AlexZinkM/bitebudget-wallet/internal/logging"
	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
	"github.com/AlexZinkM/bitebudget-wallet/internal/session"
	"github.com/AlexZinkM/bitebudget-wallet/wallet"
)

const (
	shutdownTimeout = 10 * time.Second
	feedRetryDelay  = 30 * time.Second
)

// @title        BiteBudget Wallet API
// @version      1.0
// @description  Phantom wallet connection, wallet actions and the spending feed.
// @host         localhost:8080
// @BasePath     /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.Build(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	cluster, err := phantom.ParseCluster(cfg.SolanaCluster)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := api.NewMetrics()
	store := session.NewStore()
	connector, err := connect.NewConnector(connect.Settings{
		BaseURL: cfg.PhantomBaseURL,
		AppURL:  cfg.AppURL,
		Cluster: cluster,
		Env:     cfg.Environment(),
		Route:   cfg.CallbackRoute(),
	}, store,
		connect.WithLogger(logger),
		connect.WithAttemptTTL(cfg.ConnectAttemptTTL),
		connect.WithObserver(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create connector: %w", err)
	}

	svc := wallet.NewService(
		wallet.NewPhantomAdapter(connector),
		store,
		client.NewSolanaClient(cfg.SolanaRPCURL),
		client.NewCoinGeckoClient(""),
		wallet.WithServiceLogger(logger),
		wallet.WithTransferCooldown(cfg.TransferCooldownDuration()),
		wallet.WithIdentity(model.AppIdentity{
			Name: cfg.AppName,
			URI:  cfg.AppURL,
			Icon: cfg.AppIconURL,
		}),
	)

	routes := api.Routes{
		Wallet:        handler.NewWalletHandler(svc, logger),
		CallbackRoute: cfg.CallbackRoute(),
		Limiter:       api.NewRateLimiter(cfg.ConnectRate, cfg.ConnectBurst, logger),
		Metrics:       metrics,
	}
	routes.Limiter.StartCleanup(time.Minute, ctx.Done())

	if cfg.FeedEnabled() {
		backend, err := client.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
		if err != nil {
			return err
		}
		f := feed.New(backend, logger)
		routes.Feed = handler.NewFeedHandler(f, logger)
		go watchFeed(ctx, f, cfg, logger)
	} else {
		logger.Info("SUPABASE_URL or SUPABASE_ANON_KEY not set, feed disabled")
	}

	if cfg.ConnectAttemptTTL > 0 {
		go expireAttempts(ctx, connector, cfg.ConnectAttemptTTL/2)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// expireAttempts drops connect attempts the wallet never answered.
func expireAttempts(ctx context.Context, c *connect.Connector, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.ExpirePending()
		case <-ctx.Done():
			return
		}
	}
}

// watchFeed keeps the live feed subscribed, resubscribing after drops.
func watchFeed(ctx context.Context, f *feed.Feed, cfg *config.Config, logger *zap.Logger) {
	for {
		rt := client.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
		if err := f.Watch(ctx, rt); err != nil {
			logger.Warn("feed subscription failed", zap.Error(err))
		}
		_ = rt.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(feedRetryDelay):
		}
	}
}
