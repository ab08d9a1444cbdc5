package configdir

import (
	"path/filepath"
	"testing"
)

func TestHomeDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MAUI_HOME", dir)

	if got := HomeDir(); got != dir {
		t.Errorf("HomeDir() = %s, want %s", got, dir)
	}
	if got := HivesDir(); got != filepath.Join(dir, "hives") {
		t.Errorf("HivesDir() = %s", got)
	}
	if got := CacheDir(); got != filepath.Join(dir, "cache") {
		t.Errorf("CacheDir() = %s", got)
	}
	if got := SecretsDir(); got != filepath.Join(dir, "secrets") {
		t.Errorf("SecretsDir() = %s", got)
	}
}

func TestHomeDir_Default(t *testing.T) {
	t.Setenv("MAUI_HOME", "")
	t.Setenv("HOME", "/home/dev")
	t.Setenv("USERPROFILE", "/home/dev")

	if got := HomeDir(); filepath.Base(got) != ".maui" {
		t.Errorf("HomeDir() = %s, want a .maui directory", got)
	}
}
