package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves the runtime directory before AppConfig is parsed,
// so the .env inside it can be loaded first. Relative paths live under $HOME.
func GetRuntimePath() string {
	path := os.Getenv("CTXBROKER_RUNTIME_PATH")
	if path == "" {
		path = ".ctxbroker"
	}
	return resolveRuntimePath(path)
}

func resolveRuntimePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path)
}
