package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
)

// ProjectEnvFile is the per-directory env file.
const ProjectEnvFile = ".plantid.env"

// LoadEnvFiles applies ~/.config/plantid/env and then .plantid.env to the
// process environment, so ${VAR} references in plantid.yaml resolve. The
// project file overrides the global one; variables already set in the real
// environment are left alone. A malformed file is skipped with a warning.
func LoadEnvFiles(logger *slog.Logger) {
	applyEnvFiles(logger, GlobalEnvPath(), ProjectEnvFile)
}

func applyEnvFiles(logger *slog.Logger, paths ...string) {
	merged := make(map[string]string)
	for _, path := range paths {
		vars, err := readEnvFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn("skipping env file", "path", path, "error", err)
			continue
		}
		logger.Debug("env file loaded", "path", path, "vars", len(vars))
		maps.Copy(merged, vars)
	}

	for k, v := range merged {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		_ = os.Setenv(k, v)
	}
}

func readEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vars, err := ParseEnvFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vars, nil
}

// ParseEnvFile parses KEY=VALUE lines. Blank lines and # comments are
// skipped, an "export " prefix is allowed, and one pair of matching quotes
// around the value is removed.
func ParseEnvFile(data []byte) (map[string]string, error) {
	vars := make(map[string]string)
	n := 0
	for line := range strings.Lines(string(data)) {
		n++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=' in %q", n, line)
		}
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("line %d: empty variable name", n)
		}
		vars[k] = unquote(strings.TrimSpace(v))
	}
	return vars, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// GlobalEnvPath returns the path of the user-wide env file.
func GlobalEnvPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "plantid", "env")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "plantid", "env")
}
