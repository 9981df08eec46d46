package infra

// PDF rendering with go-pdf/fpdf: thermal-receipt-style sale tickets and an
// A5 end-of-shift report. These replace the browser front end's
// HTML-to-image export.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Djidro/Royalpos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateReceiptPDF renders a completed sale as a small receipt PDF.
// storagePath is created if needed; returns the absolute file path.
func GenerateReceiptPDF(sale *model.Sale, businessName, currency, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", sale.ID)
	filePath := filepath.Join(storagePath, fileName)

	// 74mm x 105mm, close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, businessName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Receipt #"+shortID(sale.ID.String()), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := item.Name
		if len(name) > 22 {
			name = name[:21] + "~"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, item.Subtotal().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, sale.Total.StringFixed(2)+" "+currency, "", 1, "R", false, 0, "")

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Paid by: "+sale.PaymentMethod, "", 1, "L", false, 0, "")
	if sale.Refunded {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "*** REFUNDED ***", "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// ShiftReportData carries the precomputed figures for the PDF; the report
// service owns the arithmetic.
type ShiftReportData struct {
	Shift         *model.Shift
	SalesCount    int
	RefundsCount  int
	ExpensesTotal decimal.Decimal
	Deposit       decimal.Decimal
	Expenses      []model.Expense
}

// GenerateShiftReportPDF renders the end-of-shift report on A5.
func GenerateShiftReportPDF(data ShiftReportData, businessName, currency, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	sh := data.Shift
	fileName := fmt.Sprintf("shift_%s.pdf", sh.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, businessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Shift Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW*0.5, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.5, 6, value, "", 1, "R", false, 0, "")
	}

	row("Cashier:", sh.Cashier)
	row("Opened:", sh.OpenedAt.Format("02/01/2006 15:04"))
	if sh.ClosedAt != nil {
		row("Closed:", sh.ClosedAt.Format("02/01/2006 15:04"))
	}
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	row("Sales:", fmt.Sprintf("%d", data.SalesCount))
	row("Refunds:", fmt.Sprintf("%d", data.RefundsCount))
	row("Starting cash:", sh.StartingCash.StringFixed(2)+" "+currency)
	row("Cash sales:", sh.CashTotal.StringFixed(2)+" "+currency)
	row("MoMo sales:", sh.MomoTotal.StringFixed(2)+" "+currency)
	row("Expenses:", data.ExpensesTotal.StringFixed(2)+" "+currency)

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW*0.5, 7, "Grand total:", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.5, 7, sh.GrandTotal.StringFixed(2)+" "+currency, "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW*0.5, 7, "Deposit:", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.5, 7, data.Deposit.StringFixed(2)+" "+currency, "", 1, "R", false, 0, "")

	if len(data.Expenses) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Expense detail", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, ex := range data.Expenses {
			label := ex.Name
			if ex.NoteOnly() {
				label += " (note)"
			}
			pdf.CellFormat(contentW*0.7, 5, label, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.3, 5, ex.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// shortID mirrors the receipt numbering the register displays: the last six
// characters of the record id.
func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
