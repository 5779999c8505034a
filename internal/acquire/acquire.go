// Package acquire turns a PDF document into an ordered sequence of page
// texts. Pages with a usable embedded text layer are read directly; pages
// that look scanned are rendered and run through OCR instead.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/contract"
)

// Config controls text acquisition and the OCR fallback.
type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned pages, default 300
	PSM           int    // tesseract page segmentation mode, 0 = default

	// MinTextLength is the embedded-text threshold below which a page is
	// treated as scanned. Default 100.
	MinTextLength int
}

func (c Config) withDefaults() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "eng"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = 100
	}
	return c
}

// Acquirer reads documents into pages.
type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// New builds an Acquirer with defaults filled in.
func New(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{cfg: cfg.withDefaults(), runner: execRunner{}, logger: logger}
}

// Acquire extracts per-page text from the PDF at path. The second return
// reports whether OCR was used on at least one page. A document that
// cannot be opened is a fatal error; a single page that fails OCR keeps
// whatever embedded text it had.
func (a *Acquirer) Acquire(ctx context.Context, path string) ([]contract.Page, bool, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []contract.Page
	ocrUsed := false

	for num := 1; num <= reader.NumPage(); num++ {
		if err := ctx.Err(); err != nil {
			return nil, ocrUsed, err
		}

		text := a.pageText(reader, num)

		if len(strings.TrimSpace(text)) < a.cfg.MinTextLength {
			a.logger.Info("page appears to be scanned, using OCR", "page", num)
			ocrText, err := a.ocrPage(ctx, path, num)
			if err != nil {
				a.logger.Error("ocr failed, keeping embedded text", "page", num, "error", err)
			} else if strings.TrimSpace(ocrText) != "" {
				text = ocrText
				ocrUsed = true
			}
		}

		pages = append(pages, contract.Page{
			Number: num,
			Text:   NormalizeText(text),
		})
	}

	return pages, ocrUsed, nil
}

// pageText reads the embedded text layer of one page. A page that fails to
// decode yields empty text so the OCR fallback can take over.
func (a *Acquirer) pageText(reader *pdf.Reader, num int) string {
	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		a.logger.Warn("embedded text extraction failed", "page", num, "error", err)
		return ""
	}
	return content
}

// NormalizeText collapses whitespace runs inside each line and drops blank
// lines, preserving the remaining line boundaries.
func NormalizeText(text string) string {
	var normalized []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			normalized = append(normalized, line)
		}
	}
	return strings.Join(normalized, "\n")
}
