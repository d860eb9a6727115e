package config

import (
	"os"
	"path/filepath"
	"testing"
)

// 隔离测试环境：HOME 指向空目录，相关环境变量清空
// Isolate the environment: HOME points at an empty dir, related env
// vars cleared
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"WORKBENCH_CONFIG_PATH", "WORKBENCH_BASE_URL", "WORKBENCH_MODEL",
		"WORKBENCH_STORAGE_DIR", "WORKBENCH_LOCALE", "WORKBENCH_DEBOUNCE_MS",
		"WORKBENCH_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("BaseURL=%q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != "gpt-4o-mini" {
		t.Fatalf("Model=%q", cfg.Provider.Model)
	}
	if cfg.Storage.Backend != "json" {
		t.Fatalf("Backend=%q", cfg.Storage.Backend)
	}
	if cfg.Persist.DebounceMS != DefaultPersistDebounceMS {
		t.Fatalf("DebounceMS=%d", cfg.Persist.DebounceMS)
	}
	if cfg.Runtime.ContextTokenLimit != DefaultContextTokenLimit {
		t.Fatalf("ContextTokenLimit=%d", cfg.Runtime.ContextTokenLimit)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"provider": {"model": "gpt-4o", "api_key": "sk-test"},
		"storage": {"backend": "sqlite"},
		"persist": {"debounce_ms": 200}
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Model != "gpt-4o" {
		t.Fatalf("Model=%q", cfg.Provider.Model)
	}
	if cfg.Provider.APIKey != "sk-test" {
		t.Fatalf("APIKey=%q", cfg.Provider.APIKey)
	}
	// 未覆盖的字段保留默认值 / untouched fields keep their defaults
	if cfg.Provider.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("BaseURL=%q", cfg.Provider.BaseURL)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("Backend=%q", cfg.Storage.Backend)
	}
	if cfg.Persist.DebounceMS != 200 {
		t.Fatalf("DebounceMS=%d", cfg.Persist.DebounceMS)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"provider": {"model": "gpt-4o"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORKBENCH_MODEL", "gpt-4o-mini")
	t.Setenv("WORKBENCH_DEBOUNCE_MS", "750")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Model != "gpt-4o-mini" {
		t.Fatalf("Model=%q, env must win over file", cfg.Provider.Model)
	}
	if cfg.Persist.DebounceMS != 750 {
		t.Fatalf("DebounceMS=%d", cfg.Persist.DebounceMS)
	}
}

func TestLoad_InvalidDebounceEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WORKBENCH_DEBOUNCE_MS", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Fatal("invalid WORKBENCH_DEBOUNCE_MS must fail")
	}
}

func TestLoad_UnknownBackendRejected(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"storage": {"backend": "postgres"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("unknown backend must fail")
	}
}

func TestResolveAPIKey_Order(t *testing.T) {
	isolateEnv(t)

	cfg := Default()
	cfg.Provider.APIKey = "sk-from-config"
	t.Setenv("WORKBENCH_API_KEY", "sk-from-workbench-env")
	t.Setenv("OPENAI_API_KEY", "sk-from-openai-env")

	key, err := ResolveAPIKey(cfg)
	if err != nil || key != "sk-from-config" {
		t.Fatalf("key=%q err=%v, config key must win", key, err)
	}

	cfg.Provider.APIKey = ""
	key, err = ResolveAPIKey(cfg)
	if err != nil || key != "sk-from-workbench-env" {
		t.Fatalf("key=%q err=%v, WORKBENCH_API_KEY next", key, err)
	}

	t.Setenv("WORKBENCH_API_KEY", "")
	key, err = ResolveAPIKey(cfg)
	if err != nil || key != "sk-from-openai-env" {
		t.Fatalf("key=%q err=%v, OPENAI_API_KEY last", key, err)
	}
}

func TestResolveAPIKey_FailsClosed(t *testing.T) {
	isolateEnv(t)

	_, err := ResolveAPIKey(Default())
	if err == nil {
		t.Fatal("missing credential must fail, never fall back")
	}
	if !IsConfigurationError(err) {
		t.Fatalf("got %T, want ConfigurationError", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/.workbench")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, ".workbench") {
		t.Fatalf("got %q", got)
	}

	got, err = expandPath("/absolute/path")
	if err != nil || got != "/absolute/path" {
		t.Fatalf("got %q err=%v", got, err)
	}
}
