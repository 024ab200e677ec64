package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/api"
	"github.com/RoyceAzure/lab/parkeat/internal/api/handler"
	"github.com/RoyceAzure/lab/parkeat/internal/api/router"
	"github.com/RoyceAzure/lab/parkeat/internal/appcontext"
	"github.com/RoyceAzure/lab/parkeat/internal/config"
	"github.com/RoyceAzure/lab/parkeat/internal/logger"
	"github.com/RoyceAzure/lab/parkeat/internal/ratelimit"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const limiterPruneInterval = time.Minute

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ParkEat HTTP server",
		Long: `Start the HTTP server exposing the client state under /api/v1.
The config file is watched and the log level is reloaded on change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, l, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg := manager.Get()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			manager.OnChange(func(c *config.Config) {
				if err := logger.SetLevel(c.Log.Level); err != nil {
					l.Error().Err(err).Msg("failed to apply log level")
					return
				}
				l.Info().Str("level", c.Log.Level).Msg("config reloaded")
			})
			manager.Watch(func(err error) {
				l.Error().Err(err).Msg("failed to reload config, keep previous")
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, l)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func newServer(app *appcontext.ApplicationContext, l zerolog.Logger) *api.Server {
	return api.NewServer(
		handler.NewAuthHandler(app.SessionService, l),
		handler.NewStoreHandler(app.Catalog, l),
		handler.NewCartHandler(app.CartService, app.Catalog, l),
		handler.NewOrderHandler(app.OrderService, app.CheckoutService, l),
		handler.NewNotificationHandler(app.NotificationService, l),
		handler.NewLocationHandler(app.LocationService, l),
	)
}

// runServer ctx 結束時關閉 server 與 application context
func runServer(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	app, err := appcontext.NewApplicationContext(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	var limiter *ratelimit.TokenBucket
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewTokenBucket(&ratelimit.LimiterConfig{
			Capacity: cfg.RateLimit.Capacity,
			RatePS:   cfg.RateLimit.RatePS,
		})
	}

	r := router.SetupRouter(newServer(app, l), limiter, l)
	for _, route := range router.Routes(r) {
		l.Debug().Msg(route)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(limiterPruneInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					limiter.Prune()
				}
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		l.Info().Msg("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("application shutdown: %w", err))
		}
		l.Info().Msg("closed completed")
		return errors.Join(errs...)
	})

	return g.Wait()
}
