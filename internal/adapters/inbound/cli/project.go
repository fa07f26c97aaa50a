package cli

import (
	"fmt"
	"path/filepath"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
	"github.com/openkraft/kraftlint/internal/domain"
)

func projectPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// loadProjectConfig resolves the project path and reads its configuration.
func loadProjectConfig(args []string, configFile string) (string, domain.RunConfig, error) {
	abs, err := projectPath(args)
	if err != nil {
		return "", domain.RunConfig{}, err
	}
	cfg, err := bootstrap.LoadConfig(abs, configFile)
	if err != nil {
		return "", domain.RunConfig{}, err
	}
	return abs, cfg, nil
}

// absAll makes every path absolute relative to the working directory.
func absAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
