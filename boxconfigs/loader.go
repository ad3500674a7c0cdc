// Package boxconfigs locates the deployment config files and loads them
// against the combined schema of every configurable package.
package boxconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/allowlists"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/hooks"
	"github.com/reusee/taibox/logs"
)

type Module struct {
	dscope.Module
}

//go:embed schema.cue
var ownSchema string

// Schema validates taibox.cue files.
var Schema = ownSchema + allowlists.Schema + hooks.Schema

// searched from most to least specific, the order AssignFirst honors
func searchDirs() []string {
	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	return append(dirs, "/etc")
}

// Find returns the existing files among the names in each search dir.
func Find(dirs []string, names ...string) []string {
	var paths []string
	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {
	paths := Find(searchDirs(), "taibox.cue", ".taibox.cue")
	if len(paths) > 0 {
		logger.Info("config files", "paths", paths)
	}
	return configs.NewLoader(paths, Schema)
}
