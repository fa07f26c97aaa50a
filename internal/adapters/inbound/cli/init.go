package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/spf13/cobra"
)

func newInitCmd(g *globalOptions) *cobra.Command {
	var (
		all   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .kraftlint.yaml configuration file",
		Long:  "Create a .kraftlint.yaml listing the default rules, or every registered rule with --all.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath(args)
			if err != nil {
				return err
			}

			dest := filepath.Join(absPath, config.FileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			engine, err := bootstrap.NewEngine(domain.DefaultParseCacheCap, commandLogger(cmd, g))
			if err != nil {
				return err
			}
			ids := engine.Registry.Defaults()
			if all {
				ids = engine.Registry.IDs()
			}

			if err := os.WriteFile(dest, []byte(generateConfig(ids)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Enable every registered rule, not only the defaults")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .kraftlint.yaml")

	return cmd
}

func generateConfig(ids []string) string {
	var b strings.Builder
	b.WriteString("# kraftlint configuration\n\n")
	b.WriteString("roots:\n  - .\n\n")
	b.WriteString("rules:\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "  - %s\n", id)
	}

	d := domain.DefaultRunConfig()
	fmt.Fprintf(&b, `
discovery:
  max_file_size: %d
  cache_ttl: %s
  track_mtime: true
  # exclude:
  #   - vendor
  #   - "*_gen.go"

execution:
  workers: %d
  # rule_timeout: 5s

parse_cache:
  capacity: %d

# report:
#   output: .kraftlint/report.json
`, d.Discovery.MaxFileSize, d.Discovery.CacheTTL, d.Execution.Workers, d.ParseCache.Capacity)
	return b.String()
}
