package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPaths returns the YAML files tried by Load, in order
func ConfigPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	paths := []string{"configs/larkmemo.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".larkmemo", "config.yaml"))
	}
	return paths
}

// loadFile merges the first YAML file found into c.
// A missing explicit path is an error; missing default paths are not.
func (c *Config) loadFile(explicit string) error {
	for _, p := range ConfigPaths(explicit) {
		data, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) && explicit == "" {
			continue
		}
		if err != nil {
			return fmt.Errorf("read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config %s: %w", p, err)
		}
		c.Store.Dir = expandHome(c.Store.Dir)
		return nil
	}
	return nil
}

// expandHome replaces a leading "~/" with the user's home directory
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
