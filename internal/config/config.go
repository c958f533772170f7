// Package config persists settings.json as a flat JSON document via
// encoding/json. This mirrors the shape of a conventional internal/config
// package (typed structs, a Load/Default pair, an explicit Reset path)
// without a YAML-with-$include resolver, since settings.json has no
// include mechanism to support.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ContextConfig toggles and bounds the sections context synthesis renders.
type ContextConfig struct {
	ShowToolGuidance bool `json:"showToolGuidance"`
	ShowSummaries    bool `json:"showSummaries"`
	ShowPrompts      bool `json:"showPrompts"`
	ShowObservations bool `json:"showObservations"`
	MaxObservations  int  `json:"maxObservations"`
	MaxPrompts       int  `json:"maxPrompts"`
	MaxSummaries     int  `json:"maxSummaries"`
}

// AIProviderConfig selects and configures the AI provider transport.
type AIProviderConfig struct {
	Provider string `json:"provider"` // "local" | "hosted-a" | "hosted-b"
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
}

// Settings is the full contents of settings.json.
type Settings struct {
	Context     ContextConfig     `json:"context"`
	AIProvider  *AIProviderConfig `json:"aiProvider,omitempty"`
}

// Default returns the settings a fresh memory directory starts with.
func Default() Settings {
	return Settings{
		Context: ContextConfig{
			ShowToolGuidance: true,
			ShowSummaries:    true,
			ShowPrompts:      true,
			ShowObservations: true,
			MaxObservations:  20,
			MaxPrompts:       10,
			MaxSummaries:     5,
		},
	}
}

// Path returns the settings.json path under a memory directory.
func Path(memoryDir string) string {
	return filepath.Join(memoryDir, "settings.json")
}

// Load reads settings.json under memoryDir, returning Default() if the file
// does not exist yet.
func Load(memoryDir string) (Settings, error) {
	b, err := os.ReadFile(Path(memoryDir))
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("config: read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse settings: %w", err)
	}
	return s, nil
}

// Save writes settings as settings.json under memoryDir, creating the
// directory if needed.
func Save(memoryDir string, s Settings) error {
	if err := os.MkdirAll(memoryDir, 0o755); err != nil {
		return fmt.Errorf("config: create memory dir: %w", err)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal settings: %w", err)
	}
	if err := os.WriteFile(Path(memoryDir), b, 0o644); err != nil {
		return fmt.Errorf("config: write settings: %w", err)
	}
	return nil
}

// Reset deletes settings.json, so the next Load returns Default().
func Reset(memoryDir string) error {
	if err := os.Remove(Path(memoryDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: reset settings: %w", err)
	}
	return nil
}
