package worker

// email_worker.go
// Processes email jobs from QueueEmail: mails the PDF receipt to the address
// given at checkout.

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

const emailMaxAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// Sender is the SMTP side of the email worker (infra.Mailer).
type Sender interface {
	Enabled() bool
	SendReceipt(to, subject, body, pdfPath string) error
}

// DeadLetterer receives jobs that failed every attempt.
type DeadLetterer interface {
	SendToDLQ(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int)
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer Sender
	dlq    DeadLetterer
}

// NewEmailWorker creates an EmailWorker; dlq may be nil.
func NewEmailWorker(mailer Sender, dlq DeadLetterer) *EmailWorker {
	return &EmailWorker{mailer: mailer, dlq: dlq}
}

// Process sends an email with the PDF receipt as attachment, retrying with
// backoff before giving the job up to the DLQ.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return
	}

	err := withRetry(ctx, emailMaxAttempts, func(attempt int) error {
		err := w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		if w.dlq != nil {
			w.dlq.SendToDLQ(ctx, QueueEmail, jobEmail, raw, err.Error(), emailMaxAttempts)
		}
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt sent successfully")
}
