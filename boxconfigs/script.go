package boxconfigs

import (
	"fmt"
	"os"
	"slices"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/engines"
	"go.starlark.net/starlark"
)

// ScriptFork runs taibox.star files from the least to the most specific
// search dir and overrides Configurable values with what they bind, so
// MaxDepth = 64 in ./taibox.star wins over /etc. Scripts are operator
// files and run with the full starlark builtin set.
func ScriptFork(scope dscope.Scope) (dscope.Scope, error) {
	dirs := searchDirs()
	slices.Reverse(dirs)
	for _, path := range Find(dirs, "taibox.star", ".taibox.star") {
		globals, err := runScript(path)
		if err != nil {
			return scope, err
		}
		scope, err = configs.Fork(scope, globals)
		if err != nil {
			return scope, fmt.Errorf("%s: %w", path, err)
		}
	}
	return scope, nil
}

func runScript(path string) (starlark.StringDict, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	thread := &starlark.Thread{
		Name: path,
	}
	return starlark.ExecFileOptions(engines.FileOptions, thread, path, content, nil)
}
