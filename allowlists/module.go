package allowlists

import (
	_ "embed"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
)

//go:embed default.cue
var defaultCue []byte

type Module struct {
	dscope.Module
}

// DefaultTables decodes the embedded default.cue.
func DefaultTables() Tables {
	loader := configs.NewSourceLoader([]configs.Source{
		{Name: "default.cue", Content: defaultCue},
	}, Schema)
	var tables Tables
	if err := loader.AssignFirst("allowlists", &tables); err != nil {
		panic(err)
	}
	return tables
}

// Override replaces every table that the loader defines.
func Override(tables Tables, loader configs.Loader) Tables {
	for path, target := range map[string]*[]string{
		"allowlists.builtins":              &tables.Builtins,
		"allowlists.insecure_functions":    &tables.InsecureFunctions,
		"allowlists.disallowed_attributes": &tables.DisallowedAttributes,
		"allowlists.imports":               &tables.Imports,
	} {
		if names := configs.First[[]string](loader, path); names != nil {
			*target = names
		}
	}
	return tables
}

func (Module) Registry(
	loader configs.Loader,
	logger logs.Logger,
) *Registry {
	registry := MustNew(Override(DefaultTables(), loader))
	logger.Info("allow-list loaded",
		"builtins", len(registry.builtins),
		"insecure_functions", len(registry.insecure),
		"disallowed_attributes", len(registry.attributes),
		"imports", registry.Imports(),
	)
	return registry
}
