package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benvon/interview-tracker/internal/export"
	"github.com/benvon/interview-tracker/internal/store"
)

func newExportCmd(run envRunner) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export questions",
		Long:  "Export every question as json, csv or markdown. Writes to stdout unless --out is given; --out - also means stdout.",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, env *Env) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			questions, err := env.Stores.Questions.ExportAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to read questions: %w", err)
			}
			labels, err := env.Stores.Categories.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to read categories: %w", err)
			}

			var buf bytes.Buffer
			if err := export.Write(&buf, f, questions, labels); err != nil {
				return fmt.Errorf("failed to export questions: %w", err)
			}

			if out == "" || out == "-" {
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				out = filepath.Join(out, f.FileName(time.Now()))
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d questions to %s\n", len(questions), out)
			return nil
		}),
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "json, csv or markdown")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory")
	return cmd
}

func newImportCmd(run envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge questions from a JSON or CSV export",
		Long:  "Merge a JSON array or CSV file produced by export into the store. Records are matched by id; later records win. Use - to read stdin as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, env *Env) error {
			path := args[0]

			var data []byte
			var err error
			if path == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			ctx := cmd.Context()
			var result store.ImportResult
			if strings.EqualFold(filepath.Ext(path), ".csv") {
				records, perr := export.ParseCSV(bytes.NewReader(data))
				if perr != nil {
					return perr
				}
				result, err = env.Stores.Questions.ImportMerge(ctx, records)
			} else {
				result, err = env.Stores.Questions.ImportJSON(ctx, data)
			}
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions, skipped %d\n", result.Imported, result.Skipped)
			return nil
		}),
	}
}
