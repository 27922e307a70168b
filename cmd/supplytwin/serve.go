package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ougirez/supplytwin/internal/api"
	"github.com/ougirez/supplytwin/internal/pkg/backend"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/ougirez/supplytwin/internal/pkg/store/xpgx"
	"github.com/ougirez/supplytwin/internal/service/billing"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	if viper.GetString(constants.ViperSecretKey) == "" {
		return fmt.Errorf("%s must be set (env %s_AUTH_SECRET)", constants.ViperSecretKey, envPrefix)
	}

	deps := api.Deps{
		MaxCachedRuns:  viper.GetInt(constants.ViperCacheMaxRuns),
		AllowedOrigins: viper.GetStringSlice(constants.ViperServerAllowedOrigins),
		BillingConfig: billing.Config{
			Prices:          viper.GetStringMapString(constants.ViperStripePrices),
			SuccessURL:      viper.GetString(constants.ViperStripeSuccessURL),
			CancelURL:       viper.GetString(constants.ViperStripeCancelURL),
			PortalReturnURL: viper.GetString(constants.ViperStripePortalReturnURL),
		},
	}

	if dsn := viper.GetString(constants.ViperDBDSN); dsn != "" {
		pool, err := xpgx.New(ctx, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		deps.Store = store.NewStore(pool)
		deps.Ping = pool.Ping
	} else {
		logger.Warnf(ctx, "%s is not set, using the in-memory store", constants.ViperDBDSN)
		deps.Store = store.NewMemoryStore()
	}

	client, err := newBackendClient()
	if err != nil {
		return err
	}
	deps.Backend = client

	if key := viper.GetString(constants.ViperStripeSecretKey); key != "" {
		deps.BillingGateway = billing.NewStripeGateway(key, viper.GetString(constants.ViperStripeWebhookSecret))
	}

	svc, err := api.NewAPIService(deps)
	if err != nil {
		return err
	}

	addr := viper.GetString(constants.ViperServerAddr)
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "listening on %s", addr)
		serveErr <- svc.Serve(addr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Infof(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return svc.Shutdown(shutdownCtx)
}

func newBackendClient() (*backend.Client, error) {
	return backend.NewClient(backend.Config{
		BaseURL:      viper.GetString(constants.ViperBackendBaseURL),
		Timeout:      viper.GetDuration(constants.ViperBackendTimeout),
		FetchRetries: uint64(viper.GetInt(constants.ViperBackendFetchRetries)),
	})
}
