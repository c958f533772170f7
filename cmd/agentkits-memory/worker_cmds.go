package main

import (
	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/worker"
	"github.com/spf13/cobra"
)

func (a *app) workerDeps() worker.Deps {
	return worker.Deps{DB: a.DB, Queue: a.Queue, AI: a.AI, Embed: a.Embed, Log: a.Log}
}

func buildEmbedSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed-session <cwd>",
		Short: "Run the Embed worker to quiescence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.Close()
			return worker.RunEmbed(cmd.Context(), memoryDir(args[0]), a.workerDeps())
		},
	}
}

func buildEnrichSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich-session <cwd>",
		Short: "Run the Enrich worker to quiescence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.Close()
			return worker.RunEnrich(cmd.Context(), memoryDir(args[0]), a.workerDeps())
		},
	}
}

func buildCompressSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress-session <cwd>",
		Short: "Run the Compress worker to quiescence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer a.Close()
			return worker.RunCompress(cmd.Context(), memoryDir(args[0]), a.workerDeps())
		},
	}
}

func buildEnrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich <obs_id> <cwd>",
		Short: "AI-enrich one observation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			obsID, cwd := args[0], args[1]
			a, err := openApp(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.Queue.Enqueue(cmd.Context(), model.TaskEnrich, "observations", obsID, model.UnixMilli()); err != nil {
				return err
			}
			return worker.RunEnrich(cmd.Context(), memoryDir(cwd), a.workerDeps())
		},
	}
}

func buildEnrichSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich-summary <session_id> <cwd> <transcript>",
		Short: "AI-enrich one session summary from its transcript tail",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, cwd, transcript := args[0], args[1], args[2]
			a, err := openApp(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			defer a.Close()
			return worker.RunEnrichSummary(cmd.Context(), a.workerDeps(), sessionID, transcript)
		},
	}
}
