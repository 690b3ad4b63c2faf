package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pulse/internal/app"
	"pulse/internal/domain"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	search, _ := cmd.Flags().GetString("search")
	sortField, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")
	categories, _ := cmd.Flags().GetStringSlice("category")
	watch, _ := cmd.Flags().GetStringSlice("watch")
	compact, _ := cmd.Flags().GetBool("compact")

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(cfgFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go bootstrap.Dispatcher.Run(ctx)

	if sortField != "" {
		field, err := domain.ParseSortField(sortField)
		if err != nil {
			return err
		}
		cfg := domain.SortConfig{Field: field, Order: domain.SortOrder(order)}
		if err := cfg.Validate(); err != nil {
			return err
		}

		targets := domain.Categories
		if len(categories) > 0 {
			targets = nil
			for _, raw := range categories {
				c, err := domain.ParseCategory(raw)
				if err != nil {
					return err
				}
				targets = append(targets, c)
			}
		}
		for _, c := range targets {
			if err := bootstrap.SetSort(ctx, c, cfg); err != nil {
				return err
			}
		}
	}

	bootstrap.Tokens.SetSearchQuery(search)
	bootstrap.Watchlist.SetAll(watch)
	if compact {
		if err := bootstrap.UI.SetDisplayMode(domain.DisplayCompact); err != nil {
			return err
		}
	}

	if err := bootstrap.LoadAll(ctx); err != nil {
		// failed columns still render with their error
		slog.Warn("Some columns failed to load", slog.Any("error", err))
	}

	if err := bootstrap.Dashboard.Render(os.Stdout); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
