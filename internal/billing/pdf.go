package billing

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"vishubh-healthcare-server/internal/models"
)

// Renderer is the document-rendering collaborator, invoked once per invoice.
type Renderer interface {
	Render(inv *models.Invoice, appt *models.Appointment) ([]byte, error)
}

// PDFRenderer renders invoices with gofpdf.
type PDFRenderer struct{}

func (PDFRenderer) Render(inv *models.Invoice, appt *models.Appointment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "VISHUBH HEALTHCARE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Medical Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	paymentLabel := "PENDING"
	if inv.Paid {
		paymentLabel = "PAID"
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	row("Invoice Number:", inv.ID)
	row("Date:", inv.GeneratedAt.Format("02 January 2006"))
	row("Status:", paymentLabel)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Patient Information", "", 1, "L", false, 0, "")
	row("Name:", appt.Patient.FullName())
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Doctor Information", "", 1, "L", false, 0, "")
	if appt.Doctor != nil {
		row("Doctor:", "Dr. "+appt.Doctor.FullName())
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Appointment Details", "", 1, "L", false, 0, "")
	row("Date:", appt.Date)
	row("Time:", appt.Time)
	row("Symptoms:", appt.Symptoms)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Billing Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(120, 8, "Consultation Fee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Rs. %.2f", inv.Amount), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 8, "Total Amount", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Rs. %.2f", inv.Amount), "1", 1, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Thank you for choosing Vishubh Healthcare!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "For any queries, please contact us.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("billing: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
