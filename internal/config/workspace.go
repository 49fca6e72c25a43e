package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WorkspaceConfig represents workspace-level configuration from kinetic.yaml
// at the workspace root.
type WorkspaceConfig struct {
	// Sync configures the sync pipeline's tunables.
	Sync *SyncConfig `yaml:"sync,omitempty"`

	// Capture configures quick capture behavior.
	Capture *CaptureConfig `yaml:"capture,omitempty"`
}

// SyncConfig holds the sync pipeline's tunables.
type SyncConfig struct {
	// DriftThreshold is the cosine-similarity floor below which a colloquial
	// name is flagged as drifted from its canonical name (default 0.75).
	DriftThreshold float64 `yaml:"drift_threshold,omitempty"`

	// NamingPattern is the expected canonical-name shape, e.g.
	// "{Verb-Noun-Descriptor}".
	NamingPattern string `yaml:"naming_pattern,omitempty"`

	// IntegrityLog toggles the append-only integrity log (default on).
	IntegrityLog *bool `yaml:"integrity_log,omitempty"`
}

// CaptureConfig configures quick capture behavior.
type CaptureConfig struct {
	// Inbox is the capture target document, relative to the workspace root
	// (default "Surfaces/Inbox.md").
	Inbox string `yaml:"inbox,omitempty"`
}

// DriftThreshold returns the configured threshold, or fallback when unset.
func (wc *WorkspaceConfig) DriftThreshold(fallback float64) float64 {
	if wc != nil && wc.Sync != nil && wc.Sync.DriftThreshold > 0 {
		return wc.Sync.DriftThreshold
	}
	return fallback
}

// NamingPattern returns the configured pattern, or fallback when unset.
func (wc *WorkspaceConfig) NamingPattern(fallback string) string {
	if wc != nil && wc.Sync != nil && wc.Sync.NamingPattern != "" {
		return wc.Sync.NamingPattern
	}
	return fallback
}

// IntegrityLogEnabled reports whether the integrity log should be written.
func (wc *WorkspaceConfig) IntegrityLogEnabled() bool {
	if wc != nil && wc.Sync != nil && wc.Sync.IntegrityLog != nil {
		return *wc.Sync.IntegrityLog
	}
	return true
}

// InboxPath returns the capture target, workspace-relative.
func (wc *WorkspaceConfig) InboxPath() string {
	if wc != nil && wc.Capture != nil && wc.Capture.Inbox != "" {
		return wc.Capture.Inbox
	}
	return "Surfaces/Inbox.md"
}

// LoadWorkspace loads kinetic.yaml from a workspace root. A missing file
// yields an empty config: every field has a working default.
func LoadWorkspace(root string) (*WorkspaceConfig, error) {
	path := filepath.Join(root, "kinetic.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &WorkspaceConfig{}, nil
		}
		return nil, fmt.Errorf("read workspace config: %w", err)
	}

	var wc WorkspaceConfig
	if err := yaml.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &wc, nil
}
