package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "pulse",
		Short:        "Token discovery dashboard core",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "configs/config.yaml", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live dashboard until interrupted",
		RunE:  runDashboard,
	}
	root.AddCommand(runCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch every column once and print it",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("search", "", "filter by name or symbol")
	snapshotCmd.Flags().String("sort", "", "sort field (name, marketCap|mc, price, volume, txCount)")
	snapshotCmd.Flags().String("order", "desc", "sort order (asc, desc)")
	snapshotCmd.Flags().StringSlice("category", nil, "apply the sort only to these categories (comma-separated)")
	snapshotCmd.Flags().StringSlice("watch", nil, "token ids to star (comma-separated)")
	snapshotCmd.Flags().Bool("compact", false, "compact cards")
	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
