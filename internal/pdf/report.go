package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ReportGenerator renders tabular reports as landscape A4 PDFs. Reports are
// English-only, so the built-in Helvetica is enough and no TTF is needed.
type ReportGenerator struct {
	ShopName string
}

func NewReportGenerator(shopName string) *ReportGenerator {
	if shopName == "" {
		shopName = "Stockroom"
	}
	return &ReportGenerator{ShopName: shopName}
}

// Table renders a title, a generation timestamp, and the given rows. The
// first row is treated as the header and repeated on every page.
func (g *ReportGenerator) Table(title string, rows [][]string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("pdf table: no rows")
	}
	header := rows[0]
	body := rows[1:]

	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetTitle(title, false)
	doc.SetAuthor(g.ShopName, false)
	doc.SetMargins(12, 12, 12)
	doc.SetAutoPageBreak(true, 18)

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-14)
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	pageW, _ := doc.GetPageSize()
	usable := pageW - 24
	colW := usable / float64(len(header))

	writeHeader := func() {
		doc.SetFont("Helvetica", "B", 9)
		doc.SetFillColor(230, 230, 230)
		for _, h := range header {
			doc.CellFormat(colW, 8, h, "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Helvetica", "", 9)
	}

	doc.SetHeaderFunc(func() {
		doc.SetFont("Helvetica", "B", 15)
		doc.CellFormat(0, 9, fmt.Sprintf("%s - %s", g.ShopName, title), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(0, 6, "Generated: "+time.Now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
		doc.Ln(2)
		writeHeader()
	})
	doc.AddPage()

	for _, row := range body {
		for i := 0; i < len(header); i++ {
			cell := ""
			if i < len(row) {
				cell = truncate(row[i], 40)
			}
			doc.CellFormat(colW, 7, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	if len(body) == 0 {
		doc.CellFormat(usable, 7, "No data", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
