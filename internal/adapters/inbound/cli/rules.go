package cli

import (
	"fmt"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/tui"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/spf13/cobra"
)

func newRulesCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect registered rules",
	}
	cmd.AddCommand(newRulesListCmd(g))
	cmd.AddCommand(newRulesValidateCmd(g))
	return cmd
}

func newRulesListCmd(g *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered rule with its metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := bootstrap.NewEngine(domain.DefaultParseCacheCap, commandLogger(cmd, g))
			if err != nil {
				return err
			}
			results := engine.RuleResults()
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(results, engine.DefaultSet()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newRulesValidateCmd(g *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "validate [rule-id...]",
		Short: "Validate rules against the rule contract",
		Long:  "Validate the given rule identifiers, or every registered rule when none are given. Exits non-zero if any rule is invalid.",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := bootstrap.NewEngine(domain.DefaultParseCacheCap, commandLogger(cmd, g))
			if err != nil {
				return err
			}
			ids := args
			if len(ids) == 0 {
				ids = engine.Registry.IDs()
			}
			results := engine.Validator.ValidateAll(ids)

			if jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderValidation(results))
			}

			invalid := 0
			for _, r := range results {
				if !r.Valid {
					invalid++
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d rules invalid", invalid, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
