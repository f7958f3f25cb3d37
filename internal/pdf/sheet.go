package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/eljojo/occtview/internal/translations"
	"github.com/eljojo/occtview/internal/viewer"
)

// SheetData contains all data needed to generate a snapshot sheet.
type SheetData struct {
	Title     string
	Snapshot  []byte // PNG read back from the canvas
	Models    []viewer.ModelSource
	ViewerURL string // encoded as QR code when set
	Context   viewer.ContextKind
	Width     int
	Height    int
	Version   string
	Created   time.Time
	Language  string // defaults to "en"
}

// Font sizes
const (
	titleSize   = 20.0
	headingSize = 12.0
	bodySize    = 10.0
	smallMono   = 7.0
)

// QR code size in mm on the PDF page.
const qrSizeMM = 45.0

// accent is the strip color at the top of the sheet.
var accent = [3]int{122, 143, 166}

// QRContent returns the string encoded in the QR code, or "" when the sheet
// has no viewer URL.
func (d SheetData) QRContent() string {
	return d.ViewerURL
}

// GenerateSheet renders the snapshot sheet PDF.
func GenerateSheet(data SheetData) ([]byte, error) {
	if len(data.Snapshot) == 0 {
		return nil, errors.New("snapshot image is required")
	}
	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data.Snapshot))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if format != "png" {
		return nil, fmt.Errorf("snapshot must be PNG, got %s", format)
	}
	if imgCfg.Width == 0 || imgCfg.Height == 0 {
		return nil, errors.New("snapshot has zero dimensions")
	}

	lang := data.Language
	if lang == "" {
		lang = "en"
	}
	created := data.Created
	if created.IsZero() {
		created = time.Now()
	}

	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(20, 20, 20)
	p.SetAutoPageBreak(true, 20)
	tr := textEncoder(p)
	t := func(key string, args ...any) string {
		return tr(translations.T("sheet", lang, key, args...))
	}

	p.SetFooterFunc(func() {
		p.SetY(-15)
		p.SetFont(fontSans, "", 7)
		p.SetTextColor(180, 180, 180)
		p.CellFormat(0, 10, t("footer", data.Version), "", 0, "C", false, 0, "")
		p.SetTextColor(46, 42, 38)
	})

	p.AddPage()
	pageWidth, pageHeight := p.GetPageSize()
	leftMargin, _, rightMargin, bottomMargin := p.GetMargins()
	contentWidth := pageWidth - leftMargin - rightMargin

	p.SetFillColor(accent[0], accent[1], accent[2])
	p.Rect(0, 0, pageWidth, 4, "F")

	// ── Title ──
	p.Ln(6)
	p.SetFont(fontSans, "B", titleSize)
	p.CellFormat(0, 10, t("title"), "", 1, "C", false, 0, "")
	if data.Title != "" {
		p.SetFont(fontSans, "", 14)
		p.CellFormat(0, 8, tr(data.Title), "", 1, "C", false, 0, "")
	}
	p.SetFont(fontSans, "", bodySize)
	p.CellFormat(0, 6, t("created", created.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	p.Ln(4)

	// ── Snapshot, scaled to the content width and at most half the page ──
	imgW := contentWidth
	imgH := imgW * float64(imgCfg.Height) / float64(imgCfg.Width)
	if maxH := (pageHeight - bottomMargin) / 2; imgH > maxH {
		imgH = maxH
		imgW = imgH * float64(imgCfg.Width) / float64(imgCfg.Height)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	p.RegisterImageOptionsReader("snapshot", opts, bytes.NewReader(data.Snapshot))
	imgX := leftMargin + (contentWidth-imgW)/2
	imgY := p.GetY()
	p.SetDrawColor(180, 180, 180)
	p.Rect(imgX-0.5, imgY-0.5, imgW+1, imgH+1, "D")
	p.ImageOptions("snapshot", imgX, imgY, imgW, imgH, false, opts, 0, "")
	p.SetY(imgY + imgH + 3)

	if data.Context != "" && data.Width > 0 && data.Height > 0 {
		p.SetFont(fontSans, "I", 9)
		p.CellFormat(0, 5, t("context_line", data.Context, data.Width, data.Height), "", 1, "C", false, 0, "")
	}
	p.Ln(6)

	// ── Models ──
	addSection(p, t("models_heading"))
	if len(data.Models) == 0 {
		addBody(p, t("no_models"))
	}
	for _, m := range data.Models {
		p.SetFont(fontSans, "B", bodySize)
		nameStr := "   " + tr(m.Name) + "  "
		p.CellFormat(p.GetStringWidth(nameStr), 6, nameStr, "", 0, "L", false, 0, "")
		p.SetFont(fontMono, "", 8)
		p.CellFormat(0, 6, tr(m.URL), "", 1, "L", false, 0, "")
	}
	p.Ln(6)

	// ── Viewer link ──
	if content := data.QRContent(); content != "" {
		if p.GetY()+10+qrSizeMM+12 > pageHeight-bottomMargin {
			p.AddPage()
		}
		addSection(p, t("viewer_url_heading"))
		qrPNG, err := generateQRPNG(content)
		if err != nil {
			return nil, fmt.Errorf("generating QR code: %w", err)
		}
		qrOpts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		p.RegisterImageOptionsReader("qrcode", qrOpts, bytes.NewReader(qrPNG))
		qrX := leftMargin + (contentWidth-qrSizeMM)/2
		p.ImageOptions("qrcode", qrX, p.GetY(), qrSizeMM, qrSizeMM, false, qrOpts, 0, "")
		p.SetY(p.GetY() + qrSizeMM + 2)

		p.SetFont(fontSans, "I", bodySize)
		p.CellFormat(0, 5, t("scan_hint"), "", 1, "C", false, 0, "")
		p.SetFont(fontMono, "", smallMono)
		p.SetFillColor(245, 245, 245)
		p.CellFormat(0, 4, tr(content), "", 1, "C", true, 0, "")
	}

	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("building PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func addSection(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(fontSans, "B", headingSize)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 8, " "+title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}

func addBody(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont(fontSans, "", bodySize)
	pdf.MultiCell(0, 5, text, "", "L", false)
}

// generateQRPNG creates a QR code PNG image for the given content string.
func generateQRPNG(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, 512)
}
