package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/FarmState_Go/internal/catalog"
	"github.com/osse101/FarmState_Go/internal/dispatcher"
	"github.com/osse101/FarmState_Go/internal/features"
	"github.com/osse101/FarmState_Go/internal/reducer"
)

// BuildDispatcher loads the catalog, embedded unless path is set, and wires
// the reducer registry behind the feature flags of network. opts configure the
// registry; the authority passes a harvest roller, clients stay deterministic.
func BuildDispatcher(catalogPath, network string, opts ...reducer.Option) (*dispatcher.Dispatcher, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if catalogPath == "" {
		cat, err = catalog.Default()
	} else {
		cat, err = catalog.Load(catalogPath)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}

	slog.Info(LogMsgCatalogLoaded,
		"path", catalogPath,
		"seeds", len(cat.Seeds()),
		"bonuses", len(cat.Bonuses()),
		"network", network)

	engine := reducer.NewEngine(cat)
	return dispatcher.New(reducer.NewDefaultRegistry(engine, opts...), features.New(network)), nil
}
