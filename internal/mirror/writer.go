package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benvon/interview-tracker/internal/models"
)

// FileName is the mirror file written inside the attached directory.
const FileName = "interview_questions.json"

// Writer writes the collection to a mirror directory.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write replaces dir/interview_questions.json atomically. Errors wrap ErrSyncWrite.
func (w *Writer) Write(ctx context.Context, dir string, questions []models.Question) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncWrite, err)
	}
	if questions == nil {
		questions = []models.Question{}
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSyncWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ".interview_questions-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncWrite, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrSyncWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrSyncWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncWrite, err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, FileName)); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncWrite, err)
	}
	return nil
}
