package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ConfigurationError 凭据缺失或无效。属于用户可处理的错误，在界面上
// 显示为持久提示，而不是和一般网络错误混在一起。
// ConfigurationError means a missing or invalid credential. It is
// user-actionable and surfaced as a persistent notice, distinct from
// transient remote failures.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// IsConfigurationError 判断错误是否为配置错误
// IsConfigurationError reports whether err is a configuration error
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ResolveAPIKey 按顺序解析凭据：配置文件中的用户 key → 环境变量。
// 没有内置回退凭据：解析失败直接失败 (fail closed)。
// ResolveAPIKey resolves the credential in order: the user-supplied
// key in the settings file, then environment variables. There is no
// built-in fallback credential; resolution fails closed.
func ResolveAPIKey(cfg Config) (string, error) {
	if key := strings.TrimSpace(cfg.Provider.APIKey); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv("WORKBENCH_API_KEY")); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key, nil
	}
	return "", &ConfigurationError{
		Reason: "no API key: set provider.api_key in config or export WORKBENCH_API_KEY",
	}
}
