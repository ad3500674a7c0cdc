package catalogs

import (
	"context"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/warehouses"
	"go.starlark.net/starlark"
)

type Module struct {
	dscope.Module
}

type Path string

var _ configs.Configurable = Path("")

func (p Path) ConfigExpr() string {
	return "CatalogPath"
}

func (Module) Path(
	loader configs.Loader,
) Path {
	return configs.First[Path](loader, "catalog_path")
}

func (Module) Catalog(
	path Path,
	logger logs.Logger,
) *Catalog {
	if path == "" {
		return new(Catalog)
	}
	catalog, err := Load(string(path))
	if err != nil {
		panic(err)
	}
	logger.Info("catalog loaded",
		"path", path,
		"datasets", len(catalog.Datasets),
	)
	return catalog
}

// Globals are the session bindings contributed by the catalog.
type Globals starlark.StringDict

func (Module) Globals(
	catalog *Catalog,
	source warehouses.Source,
	logger logs.Logger,
) Globals {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	summary, err := catalog.TablesSummary(ctx, source)
	if err != nil {
		logger.Warn("tables summary without columns", "error", err)
		summary, _ = catalog.TablesSummary(ctx, nil)
	}
	summary.Freeze()
	return Globals{
		"tables_summary": summary,
		"describe":       catalog.DescribeBuiltin(),
	}
}
