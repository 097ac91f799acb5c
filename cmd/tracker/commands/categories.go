package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(run envRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage category labels",
		Long:    "List, add, rename or remove category labels. Renames and removals update every question using the label.",
	}
	cmd.AddCommand(newCategoriesListCmd(run))
	cmd.AddCommand(newCategoriesAddCmd(run))
	cmd.AddCommand(newCategoriesRenameCmd(run))
	cmd.AddCommand(newCategoriesRemoveCmd(run))
	return cmd
}

func newCategoriesListCmd(run envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List category labels in display order",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, env *Env) error {
			labels, err := env.Stores.Categories.GetAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read categories: %w", err)
			}
			for _, label := range labels {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		}),
	}
}

func newCategoriesAddCmd(run envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "add <label>",
		Short: "Add a category label",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, env *Env) error {
			if err := env.Stores.Categories.Add(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("add category: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %q\n", args[0])
			return nil
		}),
	}
}

func newCategoriesRenameCmd(run envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a category label",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, args []string, env *Env) error {
			if err := env.Stores.Categories.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("rename category: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed category %q to %q\n", args[0], args[1])
			return nil
		}),
	}
}

func newCategoriesRemoveCmd(run envRunner) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <label>",
		Aliases: []string{"rm"},
		Short:   "Remove a category label; its questions move to Other",
		Args:    cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, env *Env) error {
			if err := env.Stores.Categories.Remove(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("remove category: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed category %q\n", args[0])
			return nil
		}),
	}
}
