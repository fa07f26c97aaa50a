package cli

import (
	"fmt"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
	"github.com/spf13/cobra"
)

func newDiscoverCmd(g *globalOptions) *cobra.Command {
	var (
		configFile string
		roots      []string
		noCache    bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "discover [path]",
		Short: "List the files a run would analyze",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadProjectConfig(args, configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("root") {
				if cfg.Roots, err = absAll(roots); err != nil {
					return err
				}
			}
			if noCache {
				cfg.Discovery.NoCache = true
			}

			engine, err := bootstrap.NewEngine(cfg.ParseCache.Capacity, commandLogger(cmd, g))
			if err != nil {
				return err
			}
			res, err := engine.Scanner(cfg.Discovery).Discover(cmd.Context(), cfg.Roots)
			if err != nil {
				return fmt.Errorf("discovering files: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, res)
			}
			for _, f := range res.Files {
				fmt.Fprintln(out, f)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.File, w.Message)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d files in %d roots (cache %d hit / %d miss)\n",
				len(res.Files), res.Stats.Roots, res.Stats.Hits, res.Stats.Misses)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default: <path>/.kraftlint.yaml)")
	cmd.Flags().StringSliceVar(&roots, "root", nil, "Scan root, repeatable (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the discovery cache")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
