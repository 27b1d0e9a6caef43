package infra

// pdf.go renders the archive copy of a receipt with go-pdf/fpdf: the same
// content as the thermal print, on a 74mm wide page, saved to
// storagePath/receipt_{sale id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"gestionstock/internal/receipt"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF writes the PDF copy of r and returns its path.
func GenerateReceiptPDF(r receipt.Receipt, layout receipt.Layout, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", r.SaleID)
	filePath := filepath.Join(storagePath, fileName)

	// Height grows with the number of lines; the header and footer take ~60mm.
	height := 60 + 5*float64(len(r.Lines))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1252")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(layout.StoreName), "", 1, "C", false, 0, "")
	if r.Title != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, tr(r.Title), "", 1, "C", false, 0, "")
	}
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, layout.FormatTime(r.Time), "", 1, "L", false, 0, "")
	if r.ClientName != "" {
		pdf.CellFormat(contentW, 4, tr("Client: "+r.ClientName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.55
	col2 := contentW * 0.15
	col3 := contentW * 0.30

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Article", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qte", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Prix", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range r.Lines {
		name := []rune(l.Name)
		if len(name) > 24 {
			name = append(name[:23], '.')
		}
		pdf.CellFormat(col1, 5, tr(string(name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, l.UnitPrice.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, r.Total.StringFixed(2)+" "+layout.Currency, "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr(layout.Footer), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
