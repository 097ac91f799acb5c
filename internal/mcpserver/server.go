// Package mcpserver exposes the question collection as MCP tools.
//
// Each tool is a struct holding its store dependencies, with Definition() returning
// the mcp.Tool schema and Handle() serving calls. Tool failures are reported as
// error results, not Go errors, so the client sees the message.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/benvon/interview-tracker/internal/models"
)

// QuestionRepository is the part of the question store the tools use
type QuestionRepository interface {
	GetAll(ctx context.Context) ([]models.Question, error)
	Get(ctx context.Context, id string) (*models.Question, error)
	Save(ctx context.Context, q models.Question) (*models.Question, error)
}

// CategoryLister supplies the ordered category labels
type CategoryLister interface {
	GetAll(ctx context.Context) ([]string, error)
}

// New creates an MCP server with every question tool registered
func New(version string, questions QuestionRepository, categories CategoryLister) *server.MCPServer {
	s := server.NewMCPServer(
		"interview-tracker",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Tools for reading and recording interview questions and answers. "+
			"Call list_categories before save_question to pick an existing category."),
	)

	listTool := NewListQuestionsTool(questions, categories)
	s.AddTool(listTool.Definition(), listTool.Handle)

	getTool := NewGetQuestionTool(questions)
	s.AddTool(getTool.Definition(), getTool.Handle)

	saveTool := NewSaveQuestionTool(questions)
	s.AddTool(saveTool.Definition(), saveTool.Handle)

	categoriesTool := NewListCategoriesTool(categories)
	s.AddTool(categoriesTool.Definition(), categoriesTool.Handle)

	return s
}

// ServeStdio serves s over stdin/stdout until the client disconnects
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// NewHTTPHandler serves s over the streamable HTTP transport. The router decides the path.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithStateLess(true))
}

// jsonResult renders v as an indented JSON text result
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
