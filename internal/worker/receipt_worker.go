package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: prints the thermal receipt,
// archives a PDF copy and, when the customer left an address, queues the
// email.

import (
	"context"
	"encoding/json"
	"fmt"

	"gestionstock/internal/infra"
	"gestionstock/internal/receipt"
	"gestionstock/internal/service"

	"github.com/rs/zerolog/log"
)

// EmailEnqueuer queues the email job (Dispatcher).
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReceiptWorker struct {
	emitter        receipt.Emitter
	layout         receipt.Layout
	pdfStoragePath string
	mailer         Sender
	emails         EmailEnqueuer
}

// NewReceiptWorker wires the receipt worker. An empty pdfStoragePath disables
// the PDF archive (and with it the email copy).
func NewReceiptWorker(emitter receipt.Emitter, layout receipt.Layout, pdfStoragePath string, mailer Sender, emails EmailEnqueuer) *ReceiptWorker {
	return &ReceiptWorker{
		emitter:        emitter,
		layout:         layout,
		pdfStoragePath: pdfStoragePath,
		mailer:         mailer,
		emails:         emails,
	}
}

// Process handles a single receipt job:
//  1. Parse the sale event
//  2. Print the receipt (best effort, failures are logged by the emitter)
//  3. Archive the PDF copy
//  4. Optionally enqueue the email job
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var ev service.SaleEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	r := receipt.FromSale(ev.Sale)
	saleID := ev.Sale.ID.String()

	w.emitter.Emit(ctx, r)

	if w.pdfStoragePath == "" {
		return
	}
	pdfPath, err := infra.GenerateReceiptPDF(r, w.layout, w.pdfStoragePath)
	if err != nil {
		log.Warn().Err(err).Str("sale_id", saleID).Msg("receipt_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("sale_id", saleID).Msg("receipt_worker: PDF generated")

	if ev.ReceiptEmail == "" || ev.Type != service.SaleCompletedEvent || w.mailer == nil || !w.mailer.Enabled() {
		return
	}
	job := EmailJobPayload{
		ToEmail: ev.ReceiptEmail,
		Subject: fmt.Sprintf("Votre reçu %s", w.layout.StoreName),
		Body: fmt.Sprintf("Veuillez trouver ci-joint votre reçu.\nTotal: %s %s",
			ev.Sale.TotalAmount.StringFixed(2), w.layout.Currency),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("email", ev.ReceiptEmail).Msg("receipt_worker: failed to enqueue email")
		return
	}
	log.Info().Str("email", ev.ReceiptEmail).Msg("receipt_worker: email job enqueued")
}
