package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modnislabs/linkverify/internal/api"
	"github.com/modnislabs/linkverify/internal/shared/constants"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification pipeline as a REST API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		authToken, _ := cmd.Flags().GetString("auth-token")
		corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("rate-burst")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

		zlog, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() {
			if err := zlog.Sync(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
			}
		}()

		server := api.NewServer(api.Config{
			Verifier:    buildVerifier(zlog),
			AuthToken:   authToken,
			CORSOrigins: corsOrigins,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
			Logger:      zlog,
		})
		defer server.Close()

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("%s verification API listening on %s\n", colorInfo("→"), addr)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				_ = httpServer.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			fmt.Printf("%s Shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", constants.DefaultAPIAddr, "Listen address for the API server")
	serveCmd.Flags().String("auth-token", "", "Optional X-Auth-Token required for cache administration")
	serveCmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (empty allows all)")
	serveCmd.Flags().Int("rate-limit", constants.DefaultRateLimit, "Requests per second per client IP (0 disables)")
	serveCmd.Flags().Int("rate-burst", constants.DefaultRateBurst, "Burst allowance for the rate limiter")
	serveCmd.Flags().Duration("shutdown-timeout", constants.DefaultShutdownTimeout, "Graceful shutdown timeout")
}
