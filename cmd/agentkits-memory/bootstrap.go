package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/agentkits/memory/internal/config"
	"github.com/agentkits/memory/internal/handler"
	"github.com/agentkits/memory/internal/provider"
	"github.com/agentkits/memory/internal/queue"
	"github.com/agentkits/memory/internal/store"
)

// defaultMemoryDirName is the directory name under a project's working
// directory that holds memory.db, settings.json, and worker lock files.
const defaultMemoryDirName = ".claude/memory"

func memoryDir(cwd string) string {
	return filepath.Join(cwd, defaultMemoryDirName)
}

func dbPath(cwd string) string {
	return filepath.Join(memoryDir(cwd), "memory.db")
}

// app bundles every dependency a command needs, opened once per invocation.
type app struct {
	DB       *store.DB
	Queue    *queue.Queue
	Settings config.Settings
	AI       provider.AIProvider
	Embed    provider.EmbeddingProvider
	Cwd      string
	Log      *slog.Logger
}

func openApp(ctx context.Context, cwd string) (*app, error) {
	log := slog.Default()

	db, err := store.Open(ctx, dbPath(cwd), log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	settings, err := config.Load(memoryDir(cwd))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return &app{
		DB:       db,
		Queue:    queue.New(db),
		Settings: settings,
		AI:       selectAIProvider(settings),
		Embed:    selectEmbeddingProvider(settings),
		Cwd:      cwd,
		Log:      log,
	}, nil
}

func (a *app) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func selectAIProvider(s config.Settings) provider.AIProvider {
	cfg := provider.Config{Provider: "local"}
	if s.AIProvider != nil {
		cfg.Provider = s.AIProvider.Provider
		cfg.LocalModel = s.AIProvider.Model
		cfg.HostedAKey = s.AIProvider.APIKey
		cfg.HostedAModel = s.AIProvider.Model
		cfg.HostedBKey = s.AIProvider.APIKey
		cfg.HostedBModel = s.AIProvider.Model
	}
	return provider.Select(cfg)
}

const defaultEmbeddingBaseURL = "http://localhost:11434"
const defaultEmbeddingModel = "nomic-embed-text"
const defaultEmbeddingDimension = 768

func selectEmbeddingProvider(s config.Settings) provider.EmbeddingProvider {
	baseURL := defaultEmbeddingBaseURL
	if s.AIProvider != nil && s.AIProvider.BaseURL != "" {
		baseURL = s.AIProvider.BaseURL
	}
	return provider.NewHTTPEmbeddingProvider(baseURL, defaultEmbeddingModel, defaultEmbeddingDimension)
}

func (a *app) handler(selfExe string) *handler.Handler {
	return &handler.Handler{
		DB:        a.DB,
		Queue:     a.Queue,
		Settings:  a.Settings,
		MemoryDir: memoryDir(a.Cwd),
		SelfExe:   selfExe,
		Log:       a.Log,
	}
}
