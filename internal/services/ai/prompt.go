package ai

import (
	"fmt"
	"strings"

	"github.com/benvon/interview-tracker/internal/models"
)

const answerSystemPrompt = "You are an expert interview coach. You write accurate, well structured answers to " +
	"technical and behavioral interview questions. Use Markdown, and LaTeX for math where it helps."

// BuildAnswerPrompt builds the user prompt for an answer request. The model is asked to
// start its reply with one of the category labels in square brackets.
func BuildAnswerPrompt(req AnswerRequest) string {
	categories := req.Categories
	if len(categories) == 0 {
		categories = models.DefaultCategories
	}

	var b strings.Builder
	b.WriteString("Answer the following interview question.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(req.QuestionText))
	b.WriteString("Start your reply with the single best matching category in square brackets, ")
	fmt.Fprintf(&b, "chosen from: %s. ", strings.Join(categories, ", "))
	fmt.Fprintf(&b, "If none fits, use [%s]. ", models.CategoryOther)
	b.WriteString("After the tag, give the answer itself. Cite web sources where you rely on them.")
	return b.String()
}

// BuildChatSystemPrompt sets up a refinement conversation about one question and its
// current answer.
func BuildChatSystemPrompt(questionText, currentAnswer string) string {
	var b strings.Builder
	b.WriteString("You help a candidate refine their answer to an interview question. ")
	b.WriteString("Be concise and concrete.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(questionText))
	if strings.TrimSpace(currentAnswer) != "" {
		fmt.Fprintf(&b, "\nCurrent answer:\n%s\n", strings.TrimSpace(currentAnswer))
	} else {
		b.WriteString("\nThe candidate has not written an answer yet.\n")
	}
	return b.String()
}
