package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/mail"
	"strings"

	"tim_report_app_go/config"
	"tim_report_app_go/models"

	"github.com/resend/resend-go/v2"
)

var ErrInvalidRecipient = errors.New("invalid recipient address")

// Email represents an email message
type Email struct {
	To          []string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []EmailAttachment
}

// EmailAttachment is a file sent along with an email
type EmailAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

var reportEmailHTML = template.Must(template.New("report_email").Parse(`<p>Bonjour{{if .ClientName}} {{.ClientName}}{{end}},</p>
<p>Veuillez trouver ci-joint le rapport d'intervention{{if .Date}} du {{.Date}}{{end}}{{if .Reference}} (référence {{.Reference}}){{end}}.</p>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<p>Cordialement,<br>{{.Sender}}</p>`))

// ReportEmailData fills the report email body
type ReportEmailData struct {
	ClientName string
	Date       string
	Reference  string
	Message    string
	Sender     string
}

// ParseRecipients splits a comma or semicolon separated list of addresses
func ParseRecipients(raw string) ([]string, error) {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		addr, err := mail.ParseAddress(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRecipient, part)
		}
		out = append(out, addr.Address)
	}
	if len(out) == 0 {
		return nil, ErrInvalidRecipient
	}
	return out, nil
}

// BuildReportEmail prepares the email carrying a printed report
func BuildReportEmail(to []string, doc models.Document, message, sender, fileName string, pdf []byte) (*Email, error) {
	data := ReportEmailData{
		ClientName: orDefault(doc.ClientContactName, doc.ClientName),
		Date:       doc.Date,
		Reference:  doc.Reference,
		Message:    strings.TrimSpace(message),
		Sender:     sender,
	}

	var html bytes.Buffer
	if err := reportEmailHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render report email: %w", err)
	}

	subject := "Rapport d'intervention"
	if doc.Reference != "" {
		subject += " " + doc.Reference
	} else if doc.Date != "" {
		subject += " du " + doc.Date
	}

	text := "Veuillez trouver ci-joint le rapport d'intervention."
	if data.Message != "" {
		text += "\n\n" + data.Message
	}

	return &Email{
		To:       to,
		Subject:  subject,
		HTMLBody: html.String(),
		TextBody: text,
		Attachments: []EmailAttachment{{
			Filename:    fileName,
			ContentType: "application/pdf",
			Content:     pdf,
		}},
	}, nil
}

// SendEmail sends an email using the Resend API, or logs it in test mode
func SendEmail(ctx context.Context, cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	for _, a := range email.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     a.Content,
		})
	}

	sent, err := resend.NewClient(cfg.ResendAPIKey).Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("[INFO] Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode, not sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	for _, a := range email.Attachments {
		log.Printf("Attachment: %s (%s, %d bytes)", a.Filename, a.ContentType, len(a.Content))
	}
	log.Printf("%s\n", separator)
}
