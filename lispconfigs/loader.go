package lispconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/tailisp/cmds"
	"github.com/reusee/tailisp/configs"
	"github.com/reusee/tailisp/logs"
)

//go:embed schema.cue
var schema string

var configFiles = cmds.Collect[string]("-config")

var filenames = []string{
	"tailisp.cue",
	".tailisp.cue",
}

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {
	paths := searchPaths(*configFiles)
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}
	return configs.NewLoader(paths, schema)
}

// searchPaths returns explicit files first, then existing config files in
// the working directory, the user config directory and /etc.
func searchPaths(explicit []string) []string {
	paths := append([]string(nil), explicit...)

	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "/etc")

	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return paths
}
