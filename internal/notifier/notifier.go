// Package notifier delivers the low-confidence review alert to the
// administrator mailbox.
package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/storage/models"
	"github.com/complaint-desk/backend/pkg/logger"
)

// Sender delivers one rendered message. *SMTPSender satisfies it; tests swap
// in a capturing fake.
type Sender interface {
	Send(to []string, subject, htmlBody string) error
}

// SMTPSender submits mail to a fixed relay with STARTTLS and plain auth.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     username,
	}
}

func (s *SMTPSender) Send(to []string, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n")
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ",")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n\r\n", subject))
	msg.WriteString(htmlBody)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

var alertTemplate = template.Must(template.New("alert").Parse(`<html>
	<body style='font-family: Arial, sans-serif;'>
		<h2 style='color: #1e40af;'>Low Confidence Complaint Alert</h2>
		<p>Dear Administrator,</p>
		<p>A complaint has been classified with a confidence score of <strong>{{printf "%.2f%%" .ConfidencePercent}}</strong> (below the review threshold). Please review the details below:</p>
		<table style='border-collapse: collapse; width: 100%;'>
			<tr>
				<th style='border: 1px solid #ddd; padding: 8px; background-color: #f1f5f9;'>Field</th>
				<th style='border: 1px solid #ddd; padding: 8px; background-color: #f1f5f9;'>Details</th>
			</tr>
			{{range .Rows}}<tr>
				<td style='border: 1px solid #ddd; padding: 8px;'>{{.Field}}</td>
				<td style='border: 1px solid #ddd; padding: 8px;'>{{.Value}}</td>
			</tr>
			{{end}}
		</table>
		<p>Please review this complaint manually to ensure proper handling.</p>
		<p style='color: #64748b;'>Thank you for your attention.</p>
	</body>
</html>`))

type alertRow struct {
	Field string
	Value string
}

type alertData struct {
	ConfidencePercent float64
	Rows              []alertRow
}

// Notifier formats and delivers admin alerts for complaints that need a
// human look.
type Notifier struct {
	sender     Sender
	adminEmail string
}

func New(sender Sender, adminEmail string) *Notifier {
	return &Notifier{
		sender:     sender,
		adminEmail: adminEmail,
	}
}

// NotifyLowConfidence sends the review alert for record. It returns false on
// any render, connection, auth, or send failure; the complaint is stored
// either way, so failures only surface as warnings.
func (n *Notifier) NotifyLowConfidence(record *models.ComplaintRecord, confidence float64) bool {
	body, err := renderAlert(record, confidence)
	if err != nil {
		logger.Warn("Failed to render alert email", zap.Error(err))
		return false
	}

	err = n.sender.Send([]string{n.adminEmail}, "Low Confidence Complaint Alert", body)
	if err != nil {
		logger.Warn("Failed to send alert email",
			zap.Error(err),
			zap.String("recipient", n.adminEmail),
		)
		return false
	}

	logger.Info("Low confidence alert sent",
		zap.String("recipient", n.adminEmail),
		zap.Float64("confidence", confidence),
	)

	return true
}

func renderAlert(record *models.ComplaintRecord, confidence float64) (string, error) {
	data := alertData{
		ConfidencePercent: confidence * 100,
		Rows: []alertRow{
			{Field: "Name", Value: record.Name},
			{Field: "Age", Value: fmt.Sprintf("%d", record.Age)},
			{Field: "Mobile", Value: record.MobileNumber},
			{Field: "Email", Value: record.EmailID},
			{Field: "Complaint", Value: record.Complaint},
			{Field: "Department", Value: record.Department},
		},
	}

	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render alert template: %w", err)
	}

	return buf.String(), nil
}
