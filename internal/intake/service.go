// Package intake orchestrates the complaint submission workflow: validation,
// classification, the conditional admin alert, and storage.
package intake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/classifier"
	"github.com/complaint-desk/backend/internal/metrics"
	"github.com/complaint-desk/backend/internal/storage/models"
	"github.com/complaint-desk/backend/internal/validation"
	"github.com/complaint-desk/backend/pkg/logger"
)

type Repository interface {
	Insert(record *models.ComplaintRecord) (int64, error)
	FetchAll() ([]models.ComplaintRecord, error)
	Search(term string) ([]models.ComplaintRecord, error)
}

type DepartmentClassifier interface {
	Classify(ctx context.Context, complaint string) (classifier.Result, error)
}

type AlertNotifier interface {
	NotifyLowConfidence(record *models.ComplaintRecord, confidence float64) bool
}

// Broadcaster pushes newly stored complaints to live staff clients. A nil
// Broadcaster disables the feed.
type Broadcaster interface {
	Broadcast(record models.ComplaintRecord)
}

// ValidationError carries per-field messages back to the submitter. The
// submission is fully recoverable: correct the fields and resubmit.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid submission: %s", strings.Join(fields, ", "))
}

type Service struct {
	repo        Repository
	classifier  DepartmentClassifier
	notifier    AlertNotifier
	feed        Broadcaster
	departments []string
	threshold   float64
}

func NewService(repo Repository, cls DepartmentClassifier, notifier AlertNotifier, feed Broadcaster, departments []string, threshold float64) *Service {
	if len(departments) == 0 {
		departments = models.DefaultDepartments
	}
	if threshold == 0 {
		threshold = 0.70
	}

	return &Service{
		repo:        repo,
		classifier:  cls,
		notifier:    notifier,
		feed:        feed,
		departments: departments,
		threshold:   threshold,
	}
}

type SubmitRequest struct {
	Name               string
	Age                int
	MobileNumber       string
	EmailID            string
	Complaint          string
	DepartmentOverride string
}

type SubmitResult struct {
	Record                models.ComplaintRecord
	Confidence            float64
	ClassificationWarning string
	AlertAttempted        bool
	AlertSent             bool
}

// Submit runs the full intake workflow. Classification and notification
// failures degrade to warnings; only validation and storage failures abort
// the submission.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	problems := validation.ValidateSubmission(validation.Submission{
		Name:         req.Name,
		Age:          req.Age,
		MobileNumber: req.MobileNumber,
		EmailID:      req.EmailID,
		Complaint:    req.Complaint,
	})
	if req.DepartmentOverride != "" && !models.IsKnownDepartment(req.DepartmentOverride, s.departments) {
		problems["department"] = "unknown department"
	}
	if len(problems) > 0 {
		metrics.SubmissionsTotal.WithLabelValues("validation_error").Inc()
		return nil, &ValidationError{Fields: problems}
	}

	start := time.Now()
	classification, err := s.classifier.Classify(ctx, req.Complaint)
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())

	result := &SubmitResult{Confidence: classification.Confidence}
	if err != nil {
		// Fallback department with zero confidence; the low-confidence path
		// below guarantees human review.
		logger.Warn("Classification failed, using fallback", zap.Error(err))
		metrics.ClassificationFailures.Inc()
		result.ClassificationWarning = err.Error()
	}
	metrics.ConfidenceScore.Observe(classification.Confidence)

	record := models.ComplaintRecord{
		Name:         req.Name,
		Age:          req.Age,
		MobileNumber: req.MobileNumber,
		EmailID:      req.EmailID,
		Complaint:    req.Complaint,
		Department:   classification.Department,
	}

	if req.DepartmentOverride != "" {
		record.Department = req.DepartmentOverride
	}

	if classification.Confidence < s.threshold {
		result.AlertAttempted = true
		result.AlertSent = s.notifier.NotifyLowConfidence(&record, classification.Confidence)
		if result.AlertSent {
			metrics.AlertsTotal.WithLabelValues("sent").Inc()
		} else {
			metrics.AlertsTotal.WithLabelValues("failed").Inc()
		}
	}

	id, err := s.repo.Insert(&record)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("failed to store complaint: %w", err)
	}

	record.ID = id
	record.Timestamp = time.Now().UTC()
	result.Record = record

	metrics.SubmissionsTotal.WithLabelValues("stored").Inc()
	metrics.SubmissionsByDepartment.WithLabelValues(record.Department).Inc()

	logger.Info("Complaint stored",
		zap.Int64("id", record.ID),
		zap.String("department", record.Department),
		zap.Float64("confidence", classification.Confidence),
	)

	if s.feed != nil {
		s.feed.Broadcast(record)
	}

	return result, nil
}

func (s *Service) List() ([]models.ComplaintRecord, error) {
	return s.repo.FetchAll()
}

func (s *Service) Search(term string) ([]models.ComplaintRecord, error) {
	return s.repo.Search(term)
}
