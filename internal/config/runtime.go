package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath is read before any .env file is loaded, so it looks at the
// process environment only.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("MNEMO_RUNTIME_PATH"))
}

// resolveRuntimePath places relative paths under the user's home directory.
func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".mnemo"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
