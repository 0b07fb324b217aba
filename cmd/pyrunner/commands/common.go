package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/ThalesMMS/pyrunner/internal/execute"
	"github.com/ThalesMMS/pyrunner/internal/history"
	"github.com/ThalesMMS/pyrunner/internal/orchestrator"
)

// buildOrchestrator loads config, opens the history store, and wires
// the orchestrator around the given executor. The caller is responsible
// for calling the returned cleanup function.
func buildOrchestrator(exec execute.Executor) (*orchestrator.Orchestrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := openHistory(cfg)
	if err != nil {
		return nil, nil, err
	}

	orc := orchestrator.New(cfg, store, exec)
	cleanup := func() { store.Close() }
	return orc, cleanup, nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	dbPath := cfg.HistoryDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	return store, nil
}
