package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreDefaultsToLight(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.toml"))
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Current().Name != NameLight {
		t.Fatalf("got %q", s.Current().Name)
	}
}

func TestToggleSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "theme.toml")
	s := NewStore(path)
	th, err := s.Toggle()
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if th.Name != NameDark {
		t.Fatalf("got %q", th.Name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `theme = "dark"`) {
		t.Fatalf("file content %q", data)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Current().Name != NameDark {
		t.Fatalf("reloaded %q", reloaded.Current().Name)
	}

	if th, _ := reloaded.Toggle(); th.Name != NameLight {
		t.Fatalf("second toggle %q", th.Name)
	}
}

func TestLoadIgnoresUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.toml")
	if err := os.WriteFile(path, []byte(`theme = "solarized"`), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Current().Name != NameLight {
		t.Fatalf("got %q", s.Current().Name)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.toml")
	if err := os.WriteFile(path, []byte(`theme = `), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewStore(path).Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSetRejectsUnknownName(t *testing.T) {
	s := NewStore("")
	if _, err := s.Set("neon"); err == nil {
		t.Fatalf("expected error")
	}
	if th, err := s.Set(NameDark); err != nil || th.Name != NameDark {
		t.Fatalf("set dark: %v %v", th.Name, err)
	}
}

func TestThemesHaveCompleteChartColors(t *testing.T) {
	for _, th := range All {
		c := th.Chart
		for _, v := range []string{c.Accent, c.AccentFill, c.Positive, c.Negative, c.Spent, c.Remaining, c.Overrun, c.Border} {
			if v == "" {
				t.Fatalf("theme %s has an empty chart color", th.Name)
			}
		}
		if len(c.Palette()) == 0 {
			t.Fatalf("theme %s has no marker palette", th.Name)
		}
	}
}
