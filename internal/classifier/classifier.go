// Package classifier assigns one department to each complaint by calling the
// external completion service and parsing its two-line labeled reply.
package classifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/llm"
	"github.com/complaint-desk/backend/internal/storage/models"
	"github.com/complaint-desk/backend/pkg/logger"
	"github.com/complaint-desk/backend/pkg/utils"
)

// Completer is the outbound completion call. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Cache stores classification results keyed by complaint-text hash so repeat
// submissions skip the completion call. A nil Cache disables caching.
type Cache interface {
	GetClassification(ctx context.Context, key string) (*Result, bool, error)
	SetClassification(ctx context.Context, key string, result *Result, ttl time.Duration) error
}

type Result struct {
	Department string  `json:"department"`
	Confidence float64 `json:"confidence"`
}

type Classifier struct {
	completer         Completer
	cache             Cache
	departments       []string
	defaultDepartment string
	cacheTTL          time.Duration
}

func New(completer Completer, cache Cache, departments []string, defaultDepartment string, cacheTTL time.Duration) *Classifier {
	if len(departments) == 0 {
		departments = models.DefaultDepartments
	}
	if defaultDepartment == "" {
		defaultDepartment = models.DefaultDepartment
	}

	return &Classifier{
		completer:         completer,
		cache:             cache,
		departments:       departments,
		defaultDepartment: defaultDepartment,
		cacheTTL:          cacheTTL,
	}
}

// Classify returns the department and confidence for complaint. On any service
// or parse failure it returns the default department with zero confidence and
// the underlying error; callers treat that error as a non-fatal warning and
// proceed with the submission.
func (c *Classifier) Classify(ctx context.Context, complaint string) (Result, error) {
	fallback := Result{Department: c.defaultDepartment, Confidence: 0.0}

	cacheKey := utils.HashString(complaint)
	if c.cache != nil {
		cached, found, err := c.cache.GetClassification(ctx, cacheKey)
		if err != nil {
			logger.Warn("Classification cache lookup failed", zap.Error(err))
		} else if found {
			logger.Debug("Classification cache hit", zap.String("key", cacheKey))
			return *cached, nil
		}
	}

	resp, err := c.completer.Complete(ctx, llm.CompletionRequest{
		UserPrompt: c.buildPrompt(complaint),
	})
	if err != nil {
		return fallback, fmt.Errorf("classification failed: %w", err)
	}

	department, confidence := parseReply(resp.Content)

	if !models.IsKnownDepartment(department, c.departments) {
		logger.Warn("Model returned unknown department, using default",
			zap.String("department", department),
		)
		department = c.defaultDepartment
	}

	result := Result{Department: department, Confidence: confidence}

	if c.cache != nil {
		if err := c.cache.SetClassification(ctx, cacheKey, &result, c.cacheTTL); err != nil {
			logger.Warn("Failed to cache classification", zap.Error(err))
		}
	}

	logger.Info("Complaint classified",
		zap.String("department", result.Department),
		zap.Float64("confidence", result.Confidence),
	)

	return result, nil
}

func (c *Classifier) buildPrompt(complaint string) string {
	return fmt.Sprintf(`Classify the following customer complaint into exactly one of these departments: %s.
Provide a confidence score between 0 and 1.

Respond in the format:
Department: <Department Name>
Confidence: <Confidence Score>

Complaint: %s`, strings.Join(c.departments, ", "), complaint)
}

// parseReply extracts the labeled Department and Confidence lines. A missing
// line leaves the corresponding field at its zero value.
func parseReply(content string) (string, float64) {
	var (
		department string
		confidence float64
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Department:"):
			department = strings.TrimSpace(strings.TrimPrefix(line, "Department:"))
		case strings.HasPrefix(line, "Confidence:"):
			confidence = parseConfidence(strings.TrimSpace(strings.TrimPrefix(line, "Confidence:")))
		}
	}

	return department, confidence
}

// parseConfidence accepts a bare decimal or a percentage such as "70%".
// Anything else yields 0.0, which routes the complaint to manual review.
func parseConfidence(value string) float64 {
	if strings.HasSuffix(value, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return 0.0
		}
		return pct / 100
	}

	conf, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0.0
	}
	return conf
}
