package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentkits/memory/internal/config"
	"github.com/spf13/cobra"
)

func buildSettingsCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "settings <cwd> [key=value ...]",
		Short: "Print or update settings.json",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd := args[0]
			memDir := memoryDir(cwd)

			if reset {
				if err := config.Reset(memDir); err != nil {
					return err
				}
				return printJSON(cmd, config.Default())
			}

			settings, err := config.Load(memDir)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return printJSON(cmd, settings)
			}

			for _, kv := range args[1:] {
				if err := applySetting(&settings, kv); err != nil {
					return err
				}
			}
			if err := config.Save(memDir, settings); err != nil {
				return err
			}
			return printJSON(cmd, settings)
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Delete settings.json, reverting to defaults")
	return cmd
}

// applySetting mutates settings in place per one "key=value" argument. Keys
// are dotted paths matching settings.json's own field names.
func applySetting(settings *config.Settings, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("settings: malformed key=value argument %q", kv)
	}

	switch key {
	case "context.showToolGuidance":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("settings: %s: %w", key, err)
		}
		settings.Context.ShowToolGuidance = b
	case "context.showSummaries":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("settings: %s: %w", key, err)
		}
		settings.Context.ShowSummaries = b
	case "context.showPrompts":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("settings: %s: %w", key, err)
		}
		settings.Context.ShowPrompts = b
	case "context.showObservations":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("settings: %s: %w", key, err)
		}
		settings.Context.ShowObservations = b
	case "context.maxObservations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("settings: %s: %w", key, err)
		}
		settings.Context.MaxObservations = n
	case "context.maxPrompts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("settings: %s: %w", key, err)
		}
		settings.Context.MaxPrompts = n
	case "context.maxSummaries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("settings: %s: %w", key, err)
		}
		settings.Context.MaxSummaries = n
	case "aiProvider.provider":
		ensureAIProvider(settings).Provider = value
	case "aiProvider.apiKey":
		ensureAIProvider(settings).APIKey = value
	case "aiProvider.model":
		ensureAIProvider(settings).Model = value
	case "aiProvider.baseUrl":
		ensureAIProvider(settings).BaseURL = value
	default:
		return fmt.Errorf("settings: unknown key %q", key)
	}
	return nil
}

func ensureAIProvider(settings *config.Settings) *config.AIProviderConfig {
	if settings.AIProvider == nil {
		settings.AIProvider = &config.AIProviderConfig{}
	}
	return settings.AIProvider
}
