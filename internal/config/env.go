package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Env resolves environment variables for toolchain lookups.
// Process environment wins; values from the env file fill the gaps.
type Env struct {
	file     map[string]string
	isolated bool
}

// LoadEnv reads the dotenv file at path. A missing file yields an Env backed
// by the process environment only.
func LoadEnv(path string) (Env, error) {
	if path == "" {
		return Env{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Env{}, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return Env{}, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return Env{file: values}, nil
}

// EnvFromMap builds an Env that never consults the process environment
func EnvFromMap(values map[string]string) Env {
	return Env{file: values, isolated: true}
}

// Get returns the value for key, or "" when unset
func (e Env) Get(key string) string {
	if !e.isolated {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
	}
	return e.file[key]
}
