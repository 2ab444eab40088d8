package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService sends best-effort timesheet notifications. Failures are the
// caller's to report as warnings; they never roll back a timesheet write.
type EmailService interface {
	SendCorrectionNotice(to, employeeName, field, entryDate, newTime string) error
	SendOpenEntryReminder(to, employeeName, shiftDate string) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

type correctionNoticeData struct {
	EmployeeName string
	Field        string
	EntryDate    string
	NewTime      string
}

// SendCorrectionNotice notifies about a manual timesheet correction.
func (s *emailServiceImpl) SendCorrectionNotice(to, employeeName, field, entryDate, newTime string) error {
	data := correctionNoticeData{
		EmployeeName: employeeName,
		Field:        field,
		EntryDate:    entryDate,
		NewTime:      newTime,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "correction_notice.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Timesheet correction for %s", entryDate), body.String())
}

type openEntryReminderData struct {
	EmployeeName string
	ShiftDate    string
}

// SendOpenEntryReminder nudges an employee about an entry left open past
// its period.
func (s *emailServiceImpl) SendOpenEntryReminder(to, employeeName, shiftDate string) error {
	data := openEntryReminderData{
		EmployeeName: employeeName,
		ShiftDate:    shiftDate,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "open_entry_reminder.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Open timesheet entry for %s", shiftDate), body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := smtp.SendMail(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
