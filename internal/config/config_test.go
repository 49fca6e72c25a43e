package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromAndWorkspaceLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `default_workspace = "personal"
editor = "vim"

[workspaces]
personal = "/home/m/notes"
work = "/home/m/work"

[ui]
accent = "39"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	got, err := cfg.GetWorkspacePath("")
	if err != nil || got != "/home/m/notes" {
		t.Errorf("default workspace = %q, %v", got, err)
	}
	got, err = cfg.GetWorkspacePath("work")
	if err != nil || got != "/home/m/work" {
		t.Errorf("work workspace = %q, %v", got, err)
	}
	if _, err := cfg.GetWorkspacePath("missing"); err == nil {
		t.Error("unknown workspace resolved")
	}
	if cfg.UI.Accent != "39" {
		t.Errorf("accent = %q", cfg.UI.Accent)
	}
}

func TestGetWorkspacePathNoDefault(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.GetWorkspacePath(""); err == nil {
		t.Error("empty config resolved a default workspace")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := &Config{
		DefaultWorkspace: "personal",
		Workspaces:       map[string]string{"personal": "/home/m/notes"},
		UI:               UIConfig{CodeTheme: "nord"},
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DefaultWorkspace != "personal" || loaded.UI.CodeTheme != "nord" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadWorkspaceDefaults(t *testing.T) {
	wc, err := LoadWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := wc.DriftThreshold(0.75); got != 0.75 {
		t.Errorf("threshold = %v", got)
	}
	if got := wc.NamingPattern("{Verb-Noun-Descriptor}"); got != "{Verb-Noun-Descriptor}" {
		t.Errorf("pattern = %q", got)
	}
	if !wc.IntegrityLogEnabled() {
		t.Error("integrity log should default on")
	}
	if wc.InboxPath() != "Surfaces/Inbox.md" {
		t.Errorf("inbox = %q", wc.InboxPath())
	}
}

func TestLoadWorkspaceOverrides(t *testing.T) {
	root := t.TempDir()
	content := `sync:
  drift_threshold: 0.6
  naming_pattern: "{Verb-Noun}"
  integrity_log: false
capture:
  inbox: "Capture/Inbox.md"
`
	if err := os.WriteFile(filepath.Join(root, "kinetic.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	wc, err := LoadWorkspace(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := wc.DriftThreshold(0.75); got != 0.6 {
		t.Errorf("threshold = %v", got)
	}
	if got := wc.NamingPattern(""); got != "{Verb-Noun}" {
		t.Errorf("pattern = %q", got)
	}
	if wc.IntegrityLogEnabled() {
		t.Error("integrity log override ignored")
	}
	if wc.InboxPath() != "Capture/Inbox.md" {
		t.Errorf("inbox = %q", wc.InboxPath())
	}
}
