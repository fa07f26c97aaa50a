package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openkraft/kraftlint/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".kraftlint.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .kraftlint.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .kraftlint.yaml from projectPath.
// Returns DefaultRunConfig rooted at projectPath if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.RunConfig, error) {
	cfg, err := l.LoadFile(filepath.Join(projectPath, FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg = domain.DefaultRunConfig()
		resolvePaths(&cfg, projectPath)
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads an explicit config file. Values missing from the file
// keep their defaults; relative paths resolve against the file's
// directory. Semantic validation is left to RunConfig.Validate.
func (l *YAMLLoader) LoadFile(path string) (domain.RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RunConfig{}, err
	}

	cfg := domain.DefaultRunConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	// Unknown keys are rejected; catches typos in user's raw input.
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.RunConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	resolvePaths(&cfg, dir)
	return cfg, nil
}

// resolvePaths anchors relative roots, cache and report paths at base.
// A config without roots scans base itself.
func resolvePaths(cfg *domain.RunConfig, base string) {
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{base}
	}
	for i, r := range cfg.Roots {
		cfg.Roots[i] = anchor(base, r)
	}
	cfg.Discovery.CachePath = anchor(base, cfg.Discovery.CachePath)
	cfg.Report.Output = anchor(base, cfg.Report.Output)
}

func anchor(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
