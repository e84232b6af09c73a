package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complaint-desk/backend/internal/llm"
	"github.com/complaint-desk/backend/internal/storage/models"
)

type fakeCompleter struct {
	content string
	err     error
	calls   int
	prompt  string
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.prompt = req.UserPrompt
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

type fakeCache struct {
	entries map[string]*Result
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*Result)}
}

func (f *fakeCache) GetClassification(ctx context.Context, key string) (*Result, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	r, ok := f.entries[key]
	return r, ok, nil
}

func (f *fakeCache) SetClassification(ctx context.Context, key string, result *Result, ttl time.Duration) error {
	f.entries[key] = result
	return nil
}

func newClassifier(completer Completer, cache Cache) *Classifier {
	return New(completer, cache, models.DefaultDepartments, models.DefaultDepartment, time.Minute)
}

func TestClassifyWellFormedReply(t *testing.T) {
	completer := &fakeCompleter{content: "Department: Shipping\nConfidence: 0.92"}
	c := newClassifier(completer, nil)

	result, err := c.Classify(context.Background(), "Package arrived damaged")
	require.NoError(t, err)
	assert.Equal(t, "Shipping", result.Department)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
}

func TestClassifyPromptContainsDepartmentsAndComplaint(t *testing.T) {
	completer := &fakeCompleter{content: "Department: Billing\nConfidence: 0.8"}
	c := newClassifier(completer, nil)

	_, err := c.Classify(context.Background(), "Charged twice for one order")
	require.NoError(t, err)
	assert.Contains(t, completer.prompt, "Technical Support, Billing, Customer Service, Shipping, General Queries")
	assert.Contains(t, completer.prompt, "Charged twice for one order")
}

func TestClassifyUnknownDepartmentFallsBack(t *testing.T) {
	completer := &fakeCompleter{content: "Department: Legal\nConfidence: 0.99"}
	c := newClassifier(completer, nil)

	result, err := c.Classify(context.Background(), "I want to sue")
	require.NoError(t, err)
	assert.Equal(t, "General Queries", result.Department)
	assert.InDelta(t, 0.99, result.Confidence, 1e-9)
}

func TestClassifyServiceErrorFallsBack(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused")}
	c := newClassifier(completer, nil)

	result, err := c.Classify(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, "General Queries", result.Department)
	assert.Zero(t, result.Confidence)
}

func TestClassifyReplyMissingBothLines(t *testing.T) {
	completer := &fakeCompleter{content: "I think this belongs to shipping, probably."}
	c := newClassifier(completer, nil)

	result, err := c.Classify(context.Background(), "Package lost")
	require.NoError(t, err)
	assert.Equal(t, "General Queries", result.Department)
	assert.Zero(t, result.Confidence)
}

func TestClassifyCacheHitSkipsCompletion(t *testing.T) {
	completer := &fakeCompleter{content: "Department: Billing\nConfidence: 0.85"}
	cache := newFakeCache()
	c := newClassifier(completer, cache)

	first, err := c.Classify(context.Background(), "Double charged")
	require.NoError(t, err)

	second, err := c.Classify(context.Background(), "Double charged")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, completer.calls)
}

func TestClassifyCacheFailureIsNonFatal(t *testing.T) {
	completer := &fakeCompleter{content: "Department: Billing\nConfidence: 0.85"}
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	c := newClassifier(completer, cache)

	result, err := c.Classify(context.Background(), "Double charged")
	require.NoError(t, err)
	assert.Equal(t, "Billing", result.Department)
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		wantDepartment string
		wantConfidence float64
	}{
		{"both lines", "Department: Billing\nConfidence: 0.75", "Billing", 0.75},
		{"extra whitespace", "  Department:  Shipping  \n  Confidence:  0.5  ", "Shipping", 0.5},
		{"surrounding prose", "Sure!\nDepartment: Billing\nConfidence: 0.75\nHope that helps.", "Billing", 0.75},
		{"missing confidence", "Department: Shipping", "Shipping", 0},
		{"missing department", "Confidence: 0.9", "", 0.9},
		{"percent confidence", "Department: Billing\nConfidence: 70%", "Billing", 0.7},
		{"verbal confidence", "Department: Billing\nConfidence: high", "Billing", 0},
		{"empty reply", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			department, confidence := parseReply(tt.content)
			assert.Equal(t, tt.wantDepartment, department)
			assert.InDelta(t, tt.wantConfidence, confidence, 1e-9)
		})
	}
}

func TestClassifyNeverReturnsUnknownDepartment(t *testing.T) {
	replies := []string{
		"Department: SHIPPING\nConfidence: 0.9",
		"Department: shipping department\nConfidence: 0.9",
		"Department:\nConfidence: 0.9",
		"Department: '; DROP TABLE complaints; --\nConfidence: 1.0",
	}

	for _, reply := range replies {
		c := newClassifier(&fakeCompleter{content: reply}, nil)
		result, err := c.Classify(context.Background(), "whatever")
		require.NoError(t, err)
		assert.Contains(t, models.DefaultDepartments, result.Department)
	}
}
