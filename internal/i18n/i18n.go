package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// 语言目录注册表。英文永远是基底层，其他目录覆盖在其上，所以缺失的
// 键总能落回英文。
// Catalog registry. English is always the base layer and the other
// catalogs overlay it, so a missing key always falls back to English.
var catalogs = map[string]map[string]string{
	"en":    EnMessages,
	"zh-CN": ZhCNMessages,
}

// I18n 不可变的消息查找表，构建后并发只读
// I18n is an immutable message table, read-only after construction
type I18n struct {
	locale   string
	messages map[string]string
}

var (
	global   *I18n
	globalMu sync.Mutex
)

// Global 返回全局实例，尚未初始化时按环境构建
// Global returns the global instance, built from the environment when
// nothing initialized it yet
func Global() *I18n {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New("")
	}
	return global
}

// Init 用指定 locale 重建全局实例 / Init rebuilds the global instance
func Init(locale string) {
	globalMu.Lock()
	global = New(locale)
	globalMu.Unlock()
}

// T 全局翻译快捷函数 / T is the global translation shortcut
func T(key string, args ...any) string {
	return Global().T(key, args...)
}

// New 构建查找表。locale 为空时从环境推断。
// New builds a lookup table. A blank locale is inferred from the
// environment.
func New(locale string) *I18n {
	resolved := normalizeLocale(locale)
	if strings.TrimSpace(locale) == "" {
		resolved = DetectLocale()
	}

	messages := make(map[string]string, len(EnMessages))
	for k, v := range EnMessages {
		messages[k] = v
	}
	if resolved != "en" {
		for k, v := range catalogs[resolved] {
			messages[k] = v
		}
	}
	return &I18n{locale: resolved, messages: messages}
}

// T 翻译并格式化 / T translates and formats a message
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale 返回解析后的 locale / Locale returns the resolved locale
func (i *I18n) Locale() string {
	return i.locale
}

// DetectLocale 从环境变量推断 locale，WORKBENCH_LANG 优先
// DetectLocale infers the locale from the environment, WORKBENCH_LANG
// taking priority over the POSIX variables
func DetectLocale() string {
	for _, env := range []string{"WORKBENCH_LANG", "LANG", "LC_ALL", "LC_MESSAGES"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return normalizeLocale(v)
		}
	}
	return "en"
}

// normalizeLocale 把环境写法（zh_CN.UTF-8、zh-TW…）折叠到受支持的
// 目录键上
// normalizeLocale folds environment spellings (zh_CN.UTF-8, zh-TW, …)
// onto the supported catalog keys
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	if strings.HasPrefix(strings.ToLower(s), "zh") {
		return "zh-CN"
	}
	return "en"
}
