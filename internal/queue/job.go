package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeMirrorSync writes the question collection to the attached mirror directory
	JobTypeMirrorSync JobType = "mirror_sync"
	// JobTypeAnswerGeneration generates an AI answer for a single question
	JobTypeAnswerGeneration JobType = "answer_generation"
)

// Metadata keys used by the job types above.
const (
	MetaDirectory    = "directory"
	MetaQuestionText = "question_text"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	QuestionID string         `json:"question_id,omitempty"` // Set for answer generation jobs
	NotBefore  *time.Time     `json:"not_before,omitempty"`  // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`   // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`    // Job-specific data
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, questionID string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		QuestionID: questionID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// NewMirrorSyncJob creates a job that mirrors the collection into dir
func NewMirrorSyncJob(dir string) *Job {
	job := NewJob(JobTypeMirrorSync, "")
	job.Metadata[MetaDirectory] = dir
	// A newer sync supersedes this one; retrying a stale snapshot is pointless.
	job.MaxRetries = 1
	return job
}

// NewAnswerGenerationJob creates a job that answers questionID, remembering the text
// the answer is generated for
func NewAnswerGenerationJob(questionID, questionText string) *Job {
	job := NewJob(JobTypeAnswerGeneration, questionID)
	job.Metadata[MetaQuestionText] = questionText
	return job
}

// MetadataString returns a string metadata value, or "" when absent
func (j *Job) MetadataString(key string) string {
	if j.Metadata == nil {
		return ""
	}
	switch v := j.Metadata[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
