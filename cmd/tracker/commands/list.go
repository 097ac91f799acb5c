package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/benvon/interview-tracker/internal/filter"
)

func newListCmd(run envRunner) *cobra.Command {
	var category, search, date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions",
		Long:  "List stored questions, newest first, optionally filtered by category, text and date",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, env *Env) error {
			dateFilter, err := filter.ParseDateFilter(date)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			questions, err := env.Stores.Questions.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to read questions: %w", err)
			}
			labels, err := env.Stores.Categories.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to read categories: %w", err)
			}

			matched := filter.Apply(questions, filter.Criteria{
				Category:        category,
				Search:          search,
				Date:            dateFilter,
				KnownCategories: labels,
			}, time.Now())

			out := cmd.OutOrStdout()
			if len(matched) == 0 {
				fmt.Fprintln(out, "No questions found")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tCOMPANY\tUPDATED\tTEXT")
			for _, q := range matched {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					q.ID, q.Category, q.CompanyTag,
					time.UnixMilli(q.UpdatedAt).Format("2006-01-02"),
					truncate(q.Text, 60))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d of %d questions\n", len(matched), len(questions))
			return nil
		}),
	}

	cmd.Flags().StringVar(&category, "category", "", "Only questions in this category")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on text or company tag")
	cmd.Flags().StringVar(&date, "date", filter.DateAll, "all, today, week, month, year or YYYY-MM-DD")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
