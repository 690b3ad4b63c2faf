package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // For pprof profiling
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pulse/internal/app"
)

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(cfgFile); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		return err
	}

	if addr := bootstrap.Config.Debug.PprofAddr; addr != "" {
		go func() {
			slog.Info("Pprof server started", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := bootstrap.Run(ctx)
	slog.Info("Shutting down gracefully...")
	return err
}
