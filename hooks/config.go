package hooks

import (
	"maps"
	"slices"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
)

type Module struct {
	dscope.Module
}

type ClientConfig struct {
	Alias string `json:"alias"`
	Bound string `json:"bound"`
}

type Config struct {
	Loads   map[string][]string `json:"loads"`
	Client  *ClientConfig       `json:"client"`
	Renames map[string]string   `json:"renames"`
}

// Schema is the CUE definition of the hooks config key.
const Schema = `
hooks?: {
	loads?: [string]: [...string]
	client?: {
		alias: string
		bound: string
	}
	renames?: [string]: string
}
`

// FromConfig builds the hook chain: loads first, then client rebinding, then
// call renames.
func FromConfig(config Config) Hook {
	hooks := []Hook{
		PrependLoads(config.Loads),
	}
	if config.Client != nil && config.Client.Alias != "" && config.Client.Bound != "" {
		hooks = append(hooks, RebindClient(config.Client.Alias, config.Client.Bound))
	}
	for _, from := range slices.Sorted(maps.Keys(config.Renames)) {
		hooks = append(hooks, RenameCall(from, config.Renames[from]))
	}
	return Chain(hooks...)
}

func (Module) Config(
	loader configs.Loader,
) Config {
	return configs.First[Config](loader, "hooks")
}

func (Module) Hook(
	config Config,
	logger logs.Logger,
) Hook {
	logger.Info("hooks",
		"loads", len(config.Loads),
		"rebind_client", config.Client != nil,
		"renames", len(config.Renames),
	)
	return FromConfig(config)
}
