package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"workbench/internal/config"
	"workbench/internal/i18n"
	"workbench/internal/provider"
	"workbench/internal/repl"
	"workbench/internal/storage"
	"workbench/internal/tui"
	"workbench/internal/workspace"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	var (
		configPath string
		variant    string
		lineMode   bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON")
	flag.StringVar(&variant, "variant", "chat", "Workspace variant: chat or builder")
	flag.BoolVar(&lineMode, "repl", false, "Run the line-mode REPL instead of the TUI")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	i18n.Init(cfg.Runtime.Locale)

	wsVariant, err := parseVariant(variant)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	store, err := openStore(cfg, wsVariant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init storage failed: %v\n", err)
		os.Exit(1)
	}

	// 凭据缺失不阻止挂载：工作区以只读降级模式打开并显示提示
	// A missing credential does not block mount: the workspace opens
	// degraded with a visible notice
	var prov provider.Provider
	apiKey, credErr := config.ResolveAPIKey(cfg)
	if credErr == nil {
		prov = provider.NewOpenAIProvider(provider.OpenAIConfig{
			BaseURL:   cfg.Provider.BaseURL,
			APIKey:    apiKey,
			Model:     cfg.Provider.Model,
			TimeoutMS: cfg.Provider.TimeoutMS,
		})
	}

	ws, err := workspace.New(store, prov, credErr, workspace.Options{
		Variant:           wsVariant,
		Model:             cfg.Provider.Model,
		DebounceMS:        cfg.Persist.DebounceMS,
		ContextTokenLimit: cfg.Runtime.ContextTokenLimit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mount workspace failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = ws.Close() }()

	if lineMode {
		if err := repl.NewLoop(ws).Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	program := tea.NewProgram(tui.NewApp(ws, cfg.Provider.Model), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "run tui failed: %v\n", err)
		os.Exit(1)
	}
}

func parseVariant(v string) (workspace.Variant, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "chat", "":
		return workspace.VariantChat, nil
	case "builder":
		return workspace.VariantBuilder, nil
	default:
		return "", fmt.Errorf("unknown variant %q (want chat or builder)", v)
	}
}

// openStore 按配置选择存储后端。两个变体使用独立的集合。
// openStore selects the storage backend. Each variant keeps an
// independent collection.
func openStore(cfg config.Config, variant workspace.Variant) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(
			filepath.Join(cfg.Storage.BaseDir, "workbench.db"), string(variant))
	default:
		return storage.NewJSONStore(
			filepath.Join(cfg.Storage.BaseDir, string(variant)+"_sessions.json"))
	}
}
