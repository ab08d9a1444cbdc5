package configdir

import (
	"os"
	"path/filepath"
)

const homeDirName = ".maui"

// HomeDir resolves the tool home directory (~/.maui) respecting MAUI_HOME
func HomeDir() string {
	if env := os.Getenv("MAUI_HOME"); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
		return env
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, homeDirName)
	}
	return homeDirName
}

// HivesDir is where pull-request package hives live
func HivesDir() string {
	return filepath.Join(HomeDir(), "hives")
}

// CacheDir holds cached remote manifests
func CacheDir() string {
	return filepath.Join(HomeDir(), "cache")
}

// SecretsDir holds the encrypted token store
func SecretsDir() string {
	return filepath.Join(HomeDir(), "secrets")
}
