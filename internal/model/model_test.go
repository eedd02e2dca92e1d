package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/zela-ai/zela/internal/model"
)

func testCatalog(t *testing.T) *model.Catalog {
	t.Helper()
	c, err := model.NewCatalog(model.CatalogConfig{
		Profiles: []model.Profile{
			{Key: "flash", UpstreamName: "gemini-2.5-flash", DisplayLabel: "Gemini Flash"},
			{Key: "lite", UpstreamName: "gemini-2.5-flash-lite", DisplayLabel: "Gemini Flash Lite"},
			{Key: "pro", UpstreamName: "gemini-2.5-pro", DisplayLabel: "Gemini Pro"},
		},
		DefaultKey:    "flash",
		CodeKey:       "lite",
		VisionKey:     "flash",
		FallbackOrder: []string{"flash", "lite", "pro"},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestCatalog_SelectExplicit(t *testing.T) {
	t.Parallel()
	c := testCatalog(t)

	// An explicit key wins regardless of category.
	for _, cat := range []model.Category{model.CategoryGeneral, model.CategoryCode, model.CategoryVision} {
		p, err := c.Select("pro", cat)
		if err != nil {
			t.Fatalf("Select(pro, %s): %v", cat, err)
		}
		if p.Key != "pro" {
			t.Errorf("Select(pro, %s) = %q, want pro", cat, p.Key)
		}
	}
}

func TestCatalog_SelectAutomatic(t *testing.T) {
	t.Parallel()
	c := testCatalog(t)

	tests := []struct {
		category model.Category
		wantKey  string
	}{
		{model.CategoryGeneral, "flash"},
		{model.CategoryCode, "lite"},
		{model.CategoryVision, "flash"},
	}
	for _, tt := range tests {
		p, err := c.Select("", tt.category)
		if err != nil {
			t.Fatalf("Select(auto, %s): %v", tt.category, err)
		}
		if p.Key != tt.wantKey {
			t.Errorf("Select(auto, %s) = %q, want %q", tt.category, p.Key, tt.wantKey)
		}
	}
}

func TestCatalog_UnknownKey(t *testing.T) {
	t.Parallel()
	c := testCatalog(t)

	_, err := c.Select("ultra", model.CategoryGeneral)
	if !errors.Is(err, model.ErrUnknownModel) {
		t.Fatalf("Select(ultra): err = %v, want ErrUnknownModel", err)
	}
	// The error message must list the valid keys so the relay can show them.
	for _, key := range []string{"flash", "lite", "pro"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention valid key %q", err, key)
		}
	}
}

func TestCatalog_Fallback(t *testing.T) {
	t.Parallel()
	c := testCatalog(t)

	fb := c.Fallback()
	want := []string{"flash", "lite", "pro"}
	if len(fb) != len(want) {
		t.Fatalf("Fallback: got %d entries, want %d", len(fb), len(want))
	}
	for i, p := range fb {
		if p.Key != want[i] {
			t.Errorf("Fallback[%d] = %q, want %q", i, p.Key, want[i])
		}
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  model.CatalogConfig
	}{
		{
			name: "no profiles",
			cfg:  model.CatalogConfig{DefaultKey: "flash"},
		},
		{
			name: "role references unknown profile",
			cfg: model.CatalogConfig{
				Profiles:   []model.Profile{{Key: "flash", UpstreamName: "gemini-2.5-flash"}},
				DefaultKey: "flash", CodeKey: "missing", VisionKey: "flash",
			},
		},
		{
			name: "duplicate key",
			cfg: model.CatalogConfig{
				Profiles: []model.Profile{
					{Key: "flash", UpstreamName: "a"},
					{Key: "flash", UpstreamName: "b"},
				},
				DefaultKey: "flash", CodeKey: "flash", VisionKey: "flash",
			},
		},
		{
			name: "fallback references unknown profile",
			cfg: model.CatalogConfig{
				Profiles:   []model.Profile{{Key: "flash", UpstreamName: "gemini-2.5-flash"}},
				DefaultKey: "flash", CodeKey: "flash", VisionKey: "flash",
				FallbackOrder: []string{"ultra"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := model.NewCatalog(tt.cfg); err == nil {
				t.Error("NewCatalog: expected error, got nil")
			}
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	clf := model.NewClassifier(nil)

	tests := []struct {
		name     string
		text     string
		hasImage bool
		want     model.Category
	}{
		{"plain chat", "hôm nay trời đẹp quá", false, model.CategoryGeneral},
		{"code keyword english", "please debug this stack trace", false, model.CategoryCode},
		{"code keyword vietnamese", "viết code Python tính giai thừa", false, model.CategoryCode},
		{"math keyword", "giải phương trình x^2 = 4", false, model.CategoryCode},
		{"keyword is case-insensitive", "CODE review giúp mình", false, model.CategoryCode},
		{"image wins over keywords", "ảnh này có code gì?", true, model.CategoryVision},
		{"image with plain caption", "ảnh này có gì?", true, model.CategoryVision},
		{"empty text", "", false, model.CategoryGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clf.Classify(tt.text, tt.hasImage); got != tt.want {
				t.Errorf("Classify(%q, %v) = %s, want %s", tt.text, tt.hasImage, got, tt.want)
			}
		})
	}
}

func TestClassifier_CustomKeywords(t *testing.T) {
	t.Parallel()

	clf := model.NewClassifier([]string{"xyzzy"})
	if got := clf.Classify("please debug this", false); got != model.CategoryGeneral {
		t.Errorf("custom keywords should replace defaults, got %s", got)
	}
	if got := clf.Classify("XYZZY now", false); got != model.CategoryCode {
		t.Errorf("custom keyword not matched, got %s", got)
	}
}
