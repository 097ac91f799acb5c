package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/interview-tracker/internal/models"
)

// WriteMarkdown renders questions grouped by category. Sections follow the order of
// categories; labels not in that list follow in order of first appearance.
func WriteMarkdown(w io.Writer, questions []models.Question, categories []string) error {
	groups := make(map[string][]models.Question)
	var extra []string
	for _, q := range questions {
		label := q.Category
		if label == "" {
			label = models.CategoryOther
		}
		if _, seen := groups[label]; !seen && !models.ContainsCategory(categories, label) {
			extra = append(extra, label)
		}
		groups[label] = append(groups[label], q)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Interview Questions\n\n")

	for _, label := range append(append([]string{}, categories...), extra...) {
		items := groups[label]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(bw, "## %s\n\n", label)
		for _, q := range items {
			writeMarkdownQuestion(bw, q)
		}
	}

	return bw.Flush()
}

func writeMarkdownQuestion(w *bufio.Writer, q models.Question) {
	fmt.Fprintf(w, "### %s\n\n", singleLine(q.Text))
	if q.CompanyTag != "" {
		fmt.Fprintf(w, "*Company: %s*\n\n", q.CompanyTag)
	}

	switch {
	case strings.TrimSpace(q.Answer) != "":
		if q.IsAIGenerated {
			fmt.Fprintf(w, "**Answer** (AI generated):\n\n")
		} else {
			fmt.Fprintf(w, "**Answer:**\n\n")
		}
		for _, line := range strings.Split(strings.TrimRight(q.Answer, "\n"), "\n") {
			fmt.Fprintf(w, "> %s\n", line)
		}
		fmt.Fprintln(w)
	case q.Drawing != "":
		fmt.Fprintf(w, "![Answer drawing](%s)\n\n", q.Drawing)
	default:
		fmt.Fprintf(w, "*No answer yet.*\n\n")
	}

	if len(q.Sources) > 0 {
		fmt.Fprintf(w, "**Sources:**\n\n")
		for _, s := range q.Sources {
			title := s.Title
			if title == "" {
				title = s.URI
			}
			if s.URI == "" {
				fmt.Fprintf(w, "- %s\n", title)
				continue
			}
			fmt.Fprintf(w, "- [%s](%s)\n", title, s.URI)
		}
		fmt.Fprintln(w)
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
