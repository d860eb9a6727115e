package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type ProviderConfig struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	TimeoutMS int    `json:"timeout_ms"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
	Backend string `json:"backend"` // "json" 或 "sqlite" / "json" or "sqlite"
}

type PersistConfig struct {
	DebounceMS int `json:"debounce_ms"`
}

type RuntimeConfig struct {
	ContextTokenLimit int    `json:"context_token_limit"`
	Locale            string `json:"locale"`
}

type Config struct {
	Provider ProviderConfig `json:"provider"`
	Storage  StorageConfig  `json:"storage"`
	Persist  PersistConfig  `json:"persist"`
	Runtime  RuntimeConfig  `json:"runtime"`
}

type filePersistConfig struct {
	DebounceMS *int `json:"debounce_ms"`
}

type fileRuntimeConfig struct {
	ContextTokenLimit *int    `json:"context_token_limit"`
	Locale            *string `json:"locale"`
}

type fileConfig struct {
	Provider *ProviderConfig    `json:"provider"`
	Storage  *StorageConfig     `json:"storage"`
	Persist  *filePersistConfig `json:"persist"`
	Runtime  *fileRuntimeConfig `json:"runtime"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			TimeoutMS: DefaultProviderTimeoutMS,
		},
		Storage: StorageConfig{
			BaseDir: "~/.workbench",
			Backend: "json",
		},
		Persist: PersistConfig{
			DebounceMS: DefaultPersistDebounceMS,
		},
		Runtime: RuntimeConfig{
			ContextTokenLimit: DefaultContextTokenLimit,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("WORKBENCH_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".workbench", "config.json")}
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	var fileCfg fileConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Storage != nil {
		cfg.Storage = mergeStorage(cfg.Storage, *fc.Storage)
	}
	if fc.Persist != nil {
		if fc.Persist.DebounceMS != nil {
			cfg.Persist.DebounceMS = *fc.Persist.DebounceMS
		}
	}
	if fc.Runtime != nil {
		if fc.Runtime.ContextTokenLimit != nil {
			cfg.Runtime.ContextTokenLimit = *fc.Runtime.ContextTokenLimit
		}
		if fc.Runtime.Locale != nil {
			cfg.Runtime.Locale = *fc.Runtime.Locale
		}
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	return base
}

func mergeStorage(base StorageConfig, override StorageConfig) StorageConfig {
	if strings.TrimSpace(override.BaseDir) != "" {
		base.BaseDir = override.BaseDir
	}
	if strings.TrimSpace(override.Backend) != "" {
		base.Backend = override.Backend
	}
	return base
}

func normalize(cfg *Config) error {
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = Default().Provider.BaseURL
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = Default().Provider.Model
	}
	if cfg.Provider.TimeoutMS <= 0 {
		cfg.Provider.TimeoutMS = Default().Provider.TimeoutMS
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "json", "":
		cfg.Storage.Backend = "json"
	case "sqlite":
		cfg.Storage.Backend = "sqlite"
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	cfg.Storage.BaseDir = storageDir

	if cfg.Persist.DebounceMS <= 0 {
		cfg.Persist.DebounceMS = Default().Persist.DebounceMS
	}
	if cfg.Runtime.ContextTokenLimit <= 0 {
		cfg.Runtime.ContextTokenLimit = Default().Runtime.ContextTokenLimit
	}
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("WORKBENCH_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKBENCH_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKBENCH_STORAGE_DIR")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKBENCH_LOCALE")); v != "" {
		cfg.Runtime.Locale = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKBENCH_DEBOUNCE_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid WORKBENCH_DEBOUNCE_MS: %q", v)
		}
		cfg.Persist.DebounceMS = n
	}

	return cfg, normalize(&cfg)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
