package i18n

import (
	"strings"
	"testing"
)

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":            "en",
		"en_US.UTF-8": "en",
		"zh_CN.UTF-8": "zh-CN",
		"zh-TW":       "zh-CN",
		"fr_FR":       "en",
	}
	for in, want := range cases {
		if got := normalizeLocale(in); got != want {
			t.Fatalf("normalizeLocale(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestEnglishFallback(t *testing.T) {
	i := New("en")
	if got := i.T("session.new"); got == "session.new" || got == "" {
		t.Fatalf("missing english message: %q", got)
	}
	// 未知键原样返回 / unknown keys return themselves
	if got := i.T("no.such.key"); got != "no.such.key" {
		t.Fatalf("unknown key: %q", got)
	}
}

func TestChineseOverlay(t *testing.T) {
	en := New("en")
	zh := New("zh_CN.UTF-8")
	if zh.Locale() != "zh-CN" {
		t.Fatalf("locale=%q", zh.Locale())
	}
	if zh.T("session.new") == en.T("session.new") {
		t.Fatal("chinese overlay not applied")
	}
}

// 覆盖目录的每个键都必须在英文基底中存在，否则 en 回退会漏字符串
// Every overlay key must exist in the English base, or the fallback
// leaves holes
func TestCatalogParity(t *testing.T) {
	for locale, catalog := range catalogs {
		if locale == "en" {
			continue
		}
		for key := range catalog {
			if _, ok := EnMessages[key]; !ok {
				t.Fatalf("%s key %q missing from the english base", locale, key)
			}
		}
	}
}

func TestFormatArgs(t *testing.T) {
	i := New("en")
	got := i.T("session.confirm_delete", "my session")
	if got == "session.confirm_delete" {
		t.Fatal("message missing")
	}
	if !strings.Contains(got, "my session") {
		t.Fatalf("args not interpolated: %q", got)
	}
}
