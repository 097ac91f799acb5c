// Package seed loads the bundled project question file and merges it into the store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/store"
)

// FileName is the fixed seed resource name under the seed source.
const FileName = "project_questions.json"

// maxSeedBytes bounds the seed body read from disk or network.
const maxSeedBytes = 10 << 20

// Policy decides when the seed is merged.
type Policy string

const (
	// PolicyMergeIfEmpty merges only when the store holds no questions.
	PolicyMergeIfEmpty Policy = "if_empty"
	// PolicyAlwaysMerge merges on every launch.
	PolicyAlwaysMerge Policy = "always"
)

// ParsePolicy maps a configuration value to a Policy. Empty defaults to
// PolicyMergeIfEmpty.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyMergeIfEmpty:
		return PolicyMergeIfEmpty, nil
	case PolicyAlwaysMerge:
		return PolicyAlwaysMerge, nil
	default:
		return "", fmt.Errorf("unknown seed policy %q (want if_empty or always)", s)
	}
}

// Loader fetches the project seed from a directory or an http(s) base URL.
type Loader struct {
	source string
	client *http.Client
	logger *zap.Logger
}

// NewLoader creates a loader for source. An empty source disables seeding.
func NewLoader(source string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source: strings.TrimSpace(source),
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// LoadProjectSeed returns the seed questions. Any failure is logged and reported as
// absence.
func (l *Loader) LoadProjectSeed(ctx context.Context) ([]models.Question, bool) {
	if l.source == "" {
		return nil, false
	}

	body, err := l.fetch(ctx)
	if err != nil {
		l.logger.Info("project_seed_unavailable",
			zap.String("source", l.source),
			zap.Error(err))
		return nil, false
	}

	var questions []models.Question
	if err := json.Unmarshal(body, &questions); err != nil || questions == nil {
		l.logger.Warn("project_seed_invalid",
			zap.String("source", l.source),
			zap.Error(err))
		return nil, false
	}

	l.logger.Debug("project_seed_loaded", zap.Int("count", len(questions)))
	return questions, true
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://") {
		return l.fetchHTTP(ctx)
	}

	f, err := os.Open(filepath.Join(l.source, FileName))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(io.LimitReader(f, maxSeedBytes))
}

func (l *Loader) fetchHTTP(ctx context.Context) ([]byte, error) {
	base, err := url.Parse(strings.TrimSuffix(l.source, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid seed url: %w", err)
	}
	target := base.ResolveReference(&url.URL{Path: FileName})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSeedBytes))
}

// SeedSource is satisfied by Loader.
type SeedSource interface {
	LoadProjectSeed(ctx context.Context) ([]models.Question, bool)
}

// Target is the subset of the question store used when applying the seed.
type Target interface {
	GetAll(ctx context.Context) ([]models.Question, error)
	ImportMerge(ctx context.Context, records []models.Question) (store.ImportResult, error)
}

// Apply merges the seed into target according to policy. A missing seed is not an
// error.
func Apply(ctx context.Context, src SeedSource, target Target, policy Policy) (store.ImportResult, error) {
	if policy == PolicyMergeIfEmpty {
		existing, err := target.GetAll(ctx)
		if err != nil {
			return store.ImportResult{}, err
		}
		if len(existing) > 0 {
			return store.ImportResult{}, nil
		}
	}

	questions, ok := src.LoadProjectSeed(ctx)
	if !ok {
		return store.ImportResult{}, nil
	}
	return target.ImportMerge(ctx, questions)
}
