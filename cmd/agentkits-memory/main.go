// Command agentkits-memory is the task subprocess CLI: the only public
// command surface of the memory store, invoked by a host agent's hook
// transport for the five event commands and by the host agent's worker
// supervision for everything else.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "agentkits-memory",
		Short:        "Project-scoped observational memory store for coding agents",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildContextCmd(),
		buildSessionInitCmd(),
		buildObservationCmd(),
		buildSummarizeCmd(),
		buildUserMessageCmd(),
		buildEnrichCmd(),
		buildEnrichSummaryCmd(),
		buildEmbedSessionCmd(),
		buildEnrichSessionCmd(),
		buildCompressSessionCmd(),
		buildLifecycleCmd(),
		buildLifecycleStatsCmd(),
		buildExportCmd(),
		buildImportCmd(),
		buildSettingsCmd(),
	)
	return rootCmd
}
