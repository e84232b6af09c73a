package notifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complaint-desk/backend/internal/storage/models"
)

type fakeSender struct {
	err     error
	to      []string
	subject string
	body    string
	calls   int
}

func (f *fakeSender) Send(to []string, subject, htmlBody string) error {
	f.calls++
	f.to = to
	f.subject = subject
	f.body = htmlBody
	return f.err
}

func sampleRecord() *models.ComplaintRecord {
	return &models.ComplaintRecord{
		Name:         "Jane Doe",
		Age:          30,
		MobileNumber: "9876543210",
		EmailID:      "jane@example.com",
		Complaint:    "Package arrived damaged",
		Department:   "Shipping",
	}
}

func TestNotifyLowConfidenceSendsToAdmin(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, "admin@example.com")

	ok := n.NotifyLowConfidence(sampleRecord(), 0.40)
	require.True(t, ok)

	assert.Equal(t, []string{"admin@example.com"}, sender.to)
	assert.Equal(t, "Low Confidence Complaint Alert", sender.subject)
}

func TestNotifyLowConfidenceBodyContainsRecordFields(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, "admin@example.com")

	require.True(t, n.NotifyLowConfidence(sampleRecord(), 0.40))

	assert.Contains(t, sender.body, "Jane Doe")
	assert.Contains(t, sender.body, "30")
	assert.Contains(t, sender.body, "9876543210")
	assert.Contains(t, sender.body, "jane@example.com")
	assert.Contains(t, sender.body, "Package arrived damaged")
	assert.Contains(t, sender.body, "Shipping")
	assert.Contains(t, sender.body, "40.00%")
}

func TestNotifyLowConfidenceEscapesComplaintText(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, "admin@example.com")

	record := sampleRecord()
	record.Complaint = `<script>alert("x")</script>`
	require.True(t, n.NotifyLowConfidence(record, 0.10))

	assert.NotContains(t, sender.body, "<script>")
}

func TestNotifyLowConfidenceSendFailureReturnsFalse(t *testing.T) {
	sender := &fakeSender{err: errors.New("auth failed")}
	n := New(sender, "admin@example.com")

	assert.False(t, n.NotifyLowConfidence(sampleRecord(), 0.40))
	assert.Equal(t, 1, sender.calls)
}
