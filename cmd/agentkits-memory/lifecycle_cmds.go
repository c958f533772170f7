package main

import (
	"encoding/json"
	"fmt"

	"github.com/agentkits/memory/internal/lifecycle"
	"github.com/agentkits/memory/internal/model"
	"github.com/spf13/cobra"
)

func buildLifecycleCmd() *cobra.Command {
	var compressDays, archiveDays, deleteDays int
	var autoDelete bool

	cmd := &cobra.Command{
		Use:   "lifecycle <cwd>",
		Short: "Run the compress/archive/delete/vacuum pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd := args[0]
			a, err := openApp(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := lifecycle.DefaultConfig
			if cmd.Flags().Changed("compress-days") {
				cfg.CompressAfterDays = compressDays
			}
			if cmd.Flags().Changed("archive-days") {
				cfg.ArchiveAfterDays = archiveDays
			}
			if cmd.Flags().Changed("delete-days") {
				cfg.DeleteAfterDays = deleteDays
			}
			if cmd.Flags().Changed("delete") {
				cfg.AutoDelete = autoDelete
			}

			mgr := lifecycle.New(a.DB, a.Queue)
			result, err := mgr.Run(cmd.Context(), cfg, model.UnixMilli())
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().IntVar(&compressDays, "compress-days", lifecycle.DefaultConfig.CompressAfterDays, "Age in days after which uncompressed observations are queued for compression")
	cmd.Flags().IntVar(&archiveDays, "archive-days", lifecycle.DefaultConfig.ArchiveAfterDays, "Age in days after which completed sessions are archived")
	cmd.Flags().BoolVar(&autoDelete, "delete", lifecycle.DefaultConfig.AutoDelete, "Delete archived sessions older than delete-days")
	cmd.Flags().IntVar(&deleteDays, "delete-days", lifecycle.DefaultConfig.DeleteAfterDays, "Age in days after which archived sessions are deleted, if --delete is set")
	return cmd
}

func buildLifecycleStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lifecycle-stats <cwd>",
		Short: "Print store statistics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd := args[0]
			a, err := openApp(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			defer a.Close()

			mgr := lifecycle.New(a.DB, a.Queue)
			stats, err := mgr.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
