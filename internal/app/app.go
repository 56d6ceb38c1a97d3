// Package app wires configuration, storage and the reconciliation engine
// for the binaries under cmd/.
package app

import (
	"context"
	"log"
	"os"

	"subcatalog/internal/catalog"
	"subcatalog/internal/config"
	"subcatalog/internal/database"
	"subcatalog/internal/reconcile"
	"subcatalog/internal/tools"
)

type App struct {
	Config *config.Config
	Store  *catalog.Store
	Engine *reconcile.Engine
	Logger *log.Logger
}

// New opens the catalog, ensures its schema and builds an engine backed by
// massdns and the default enumerators.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	store := catalog.NewStore(db, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	runner := tools.ExecRunner{Timeout: cfg.ToolTimeout}
	var enumerators []reconcile.Enumerator
	for _, e := range tools.DefaultEnumerators(cfg, runner) {
		enumerators = append(enumerators, e)
	}

	engine := reconcile.NewEngine(cfg, store, tools.NewMassDNS(cfg, tools.ExecRunner{}), enumerators, logger)
	return &App{Config: cfg, Store: store, Engine: engine, Logger: logger}, nil
}
