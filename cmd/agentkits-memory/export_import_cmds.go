package main

import (
	"github.com/agentkits/memory/internal/lifecycle"
	"github.com/agentkits/memory/internal/model"
	"github.com/spf13/cobra"
)

func buildExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <cwd> <project> <path>",
		Short: "Write every session for a project to a JSON export file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, project, path := args[0], args[1], args[2]
			a, err := openApp(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			defer a.Close()

			mgr := lifecycle.New(a.DB, a.Queue)
			return mgr.ExportToFile(cmd.Context(), project, path)
		},
	}
}

func buildImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <cwd> <path>",
		Short: "Load sessions from a JSON export file, deduplicating against recent content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, path := args[0], args[1]
			a, err := openApp(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			defer a.Close()

			mgr := lifecycle.New(a.DB, a.Queue)
			result, err := mgr.ImportFromFile(cmd.Context(), path, model.UnixMilli())
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}
