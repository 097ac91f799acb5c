package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/benvon/interview-tracker/internal/filter"
	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/store"
	"github.com/benvon/interview-tracker/internal/validation"
)

// ListQuestionsTool handles the list_questions tool.
type ListQuestionsTool struct {
	questions  QuestionRepository
	categories CategoryLister
	now        func() time.Time
}

// NewListQuestionsTool creates a ListQuestionsTool.
func NewListQuestionsTool(questions QuestionRepository, categories CategoryLister) *ListQuestionsTool {
	return &ListQuestionsTool{questions: questions, categories: categories, now: time.Now}
}

// Definition returns the MCP tool definition for list_questions.
func (t *ListQuestionsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_questions",
		mcp.WithDescription("List stored interview questions, newest first, optionally filtered."),
		mcp.WithString("category",
			mcp.Description("Exact category label, or All"),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive text matched against the question and company tag"),
		),
		mcp.WithString("date",
			mcp.Description("all, today, week, month, year, or a YYYY-MM-DD day"),
		),
	)
}

// Handle processes the list_questions tool call.
func (t *ListQuestionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := filter.ParseDateFilter(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	all, err := t.questions.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read questions: %v", err)), nil
	}
	known, err := t.categories.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read categories: %v", err)), nil
	}

	matched := filter.Apply(all, filter.Criteria{
		Category:        req.GetString("category", ""),
		Search:          req.GetString("search", ""),
		Date:            date,
		KnownCategories: known,
	}, t.now())
	if matched == nil {
		matched = []models.Question{}
	}
	return jsonResult(matched)
}

// GetQuestionTool handles the get_question tool.
type GetQuestionTool struct {
	questions QuestionRepository
}

// NewGetQuestionTool creates a GetQuestionTool.
func NewGetQuestionTool(questions QuestionRepository) *GetQuestionTool {
	return &GetQuestionTool{questions: questions}
}

// Definition returns the MCP tool definition for get_question.
func (t *GetQuestionTool) Definition() mcp.Tool {
	return mcp.NewTool("get_question",
		mcp.WithDescription("Fetch one question with its answer and sources."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Question id"),
		),
	)
}

// Handle processes the get_question tool call.
func (t *GetQuestionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	q, err := t.questions.Get(ctx, id)
	if errors.Is(err, store.ErrQuestionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no question with id %q", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read question: %v", err)), nil
	}
	return jsonResult(q)
}

// SaveQuestionTool handles the save_question tool.
type SaveQuestionTool struct {
	questions QuestionRepository
}

// NewSaveQuestionTool creates a SaveQuestionTool.
func NewSaveQuestionTool(questions QuestionRepository) *SaveQuestionTool {
	return &SaveQuestionTool{questions: questions}
}

// Definition returns the MCP tool definition for save_question.
func (t *SaveQuestionTool) Definition() mcp.Tool {
	return mcp.NewTool("save_question",
		mcp.WithDescription("Create a question, or update one when an existing id is given. "+
			"Omitted fields keep their stored values on update."),
		mcp.WithString("id",
			mcp.Description("Existing question id to update; omit to create"),
		),
		mcp.WithString("text",
			mcp.Description("Question text (required when creating)"),
		),
		mcp.WithString("answer",
			mcp.Description("Answer text"),
		),
		mcp.WithString("category",
			mcp.Description("Category label; unknown labels are stored as Other"),
		),
		mcp.WithString("company_tag",
			mcp.Description("Company the question was asked at"),
		),
	)
}

// Handle processes the save_question tool call.
func (t *SaveQuestionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	q := models.Question{Sources: []models.Source{}}

	if id := strings.TrimSpace(req.GetString("id", "")); id != "" {
		existing, err := t.questions.Get(ctx, id)
		switch {
		case err == nil:
			q = existing.Clone()
		case errors.Is(err, store.ErrQuestionNotFound):
			q.ID = id
		default:
			return mcp.NewToolResultError(fmt.Sprintf("failed to read question: %v", err)), nil
		}
	} else {
		q.ID = uuid.NewString()
	}

	if _, ok := args["text"]; ok {
		q.Text = validation.SanitizeText(req.GetString("text", ""))
	}
	if err := validation.ValidateQuestionText(q.Text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := args["answer"]; ok {
		q.Answer = req.GetString("answer", "")
		q.IsAIGenerated = false
	}
	if _, ok := args["category"]; ok {
		q.Category = validation.SanitizeLabel(req.GetString("category", ""))
	}
	if _, ok := args["company_tag"]; ok {
		q.CompanyTag = validation.SanitizeText(req.GetString("company_tag", ""))
	}

	saved, err := t.questions.Save(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save question: %v", err)), nil
	}
	return jsonResult(saved)
}

// ListCategoriesTool handles the list_categories tool.
type ListCategoriesTool struct {
	categories CategoryLister
}

// NewListCategoriesTool creates a ListCategoriesTool.
func NewListCategoriesTool(categories CategoryLister) *ListCategoriesTool {
	return &ListCategoriesTool{categories: categories}
}

// Definition returns the MCP tool definition for list_categories.
func (t *ListCategoriesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_categories",
		mcp.WithDescription("List category labels in display order. Other is always present."),
	)
}

// Handle processes the list_categories tool call.
func (t *ListCategoriesTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	labels, err := t.categories.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read categories: %v", err)), nil
	}
	return jsonResult(labels)
}
