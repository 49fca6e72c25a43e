package cli

import (
	"fmt"

	"github.com/mikesturm/kinetic/internal/audit"
	"github.com/mikesturm/kinetic/internal/config"
	"github.com/mikesturm/kinetic/internal/engine"
	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/surface"
)

// openEngine wires a full engine for the resolved workspace. The caller owns
// the store and must close it.
func openEngine() (*engine.Engine, error) {
	root := getWorkspacePath()

	wcfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, fmt.Errorf("load workspace config: %w", err)
	}
	store, err := ledger.Open(root)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	return &engine.Engine{
		Layout: surface.Layout{Root: root},
		Store:  store,
		Log:    audit.NewLogger(root, wcfg.IntegrityLogEnabled()),
		Config: wcfg,
	}, nil
}

// parseIDArg parses a positional object id, normalizing the error for output.
func parseIDArg(arg string) (model.ID, error) {
	id, err := model.ParseID(arg)
	if err != nil {
		return model.ID{}, fmt.Errorf("invalid object id %q: %w", arg, err)
	}
	return id, nil
}

// stateLabel renders a state with its checkbox shorthand for tables.
func stateLabel(s model.State) string {
	switch s {
	case model.StateCompleted:
		return "[x] " + string(s)
	case model.StateInProgress:
		return "[~] " + string(s)
	case model.StateActive:
		return "[ ] " + string(s)
	}
	return string(s)
}
