package cli

import (
	"fmt"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/cache"
	"github.com/spf13/cobra"
)

func newCacheCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the discovery cache",
	}
	cmd.AddCommand(newCacheClearCmd(g))
	return cmd
}

func newCacheClearCmd(g *globalOptions) *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "clear [path]",
		Short: "Delete the discovery cache file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadProjectConfig(args, configFile)
			if err != nil {
				return err
			}
			path := cfg.Discovery.CachePath
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache configured.")
				return nil
			}
			store := cache.New(path, cache.WithLogger(commandLogger(cmd, g)))
			if err := store.Invalidate(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default: <path>/.kraftlint.yaml)")
	return cmd
}
