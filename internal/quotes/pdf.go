package quotes

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfShopName    = "Maldonado Repuestos"
	pdfFont        = "Helvetica"
	pdfNameMaxRune = 60
)

var statusLabels = map[string]string{
	"pending":   "Pendiente",
	"contacted": "Contactado",
	"quoted":    "Cotizado",
	"closed":    "Cerrado",
}

// renderPDF lays out a single page quote summary. Core fonts are cp1252, so
// text goes through the translator to keep Spanish accents.
func renderPDF(q QuoteDTO, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(fmt.Sprintf("Cotización #%d", q.ID)), false)
	pdf.SetAuthor(pdfShopName, false)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.Cell(0, 10, tr(pdfShopName))
	pdf.Ln(9)

	pdf.SetFont(pdfFont, "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Cotización #%d del %s", q.ID, q.CreatedAt.Format("02/01/2006"))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Estado: "+statusLabel(string(q.Status))))
	pdf.Ln(10)

	pdf.SetFont(pdfFont, "B", 12)
	pdf.Cell(0, 7, "Cliente")
	pdf.Ln(7)
	pdf.SetFont(pdfFont, "", 10)
	for _, row := range [][2]string{
		{"Nombre", q.Name},
		{"Email", q.Email},
		{"Teléfono", q.Phone},
		{"Vehículo", valueOr(q.VehicleInfo, "No especificado")},
	} {
		pdf.CellFormat(30, 6, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(pdfFont, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(35, 7, tr("Código"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(125, 7, "Producto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Cantidad", "1", 1, "R", true, 0, "")

	pdf.SetFont(pdfFont, "", 10)
	units := 0
	for _, item := range q.Items {
		units += item.Quantity
		pdf.CellFormat(35, 6, tr(item.ProductCode), "1", 0, "L", false, 0, "")
		pdf.CellFormat(125, 6, tr(trimRunes(item.ProductName, pdfNameMaxRune)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(item.Quantity), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont(pdfFont, "B", 10)
	pdf.CellFormat(160, 7, "Total de unidades", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, strconv.Itoa(units), "1", 1, "R", false, 0, "")

	if q.Message != nil {
		pdf.Ln(6)
		pdf.SetFont(pdfFont, "B", 12)
		pdf.Cell(0, 7, "Mensaje")
		pdf.Ln(7)
		pdf.SetFont(pdfFont, "", 10)
		pdf.MultiCell(0, 5, tr(*q.Message), "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont(pdfFont, "", 8)
	pdf.Cell(0, 5, tr("Precios sujetos a confirmación. Generado el "+generatedAt.Format("02/01/2006 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func valueOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}

func trimRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
