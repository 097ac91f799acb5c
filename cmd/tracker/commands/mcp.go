package commands

import (
	"github.com/spf13/cobra"

	"github.com/benvon/interview-tracker/internal/mcpserver"
)

func newMCPCmd(version string, run envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the question tools over MCP stdio",
		Long:  "Run a Model Context Protocol server on stdin/stdout exposing list_questions, get_question, save_question and list_categories",
		Args:  cobra.NoArgs,
		RunE: run(func(_ *cobra.Command, _ []string, env *Env) error {
			env.Logger.Info("mcp_stdio_server_starting")
			return mcpserver.ServeStdio(mcpserver.New(version, env.Stores.Questions, env.Stores.Categories))
		}),
	}
}
