package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
)

// BackendConfig is resolved once at startup and shared read-only by every export.
type BackendConfig struct {
	// FontFamily is a core PDF font (Helvetica, Times, Courier) used when no
	// UTF-8 font is configured.
	FontFamily string
	// FontDir holds UTF8Regular and UTF8Bold. When both are set the document
	// embeds them and text is written as UTF-8; otherwise text is translated
	// to cp1252 and unsupported runes become '.'.
	FontDir     string
	UTF8Regular string
	UTF8Bold    string
	Compress    bool
}

// Backend renders laid out documents to PDF with fpdf.
type Backend struct {
	cfg  BackendConfig
	utf8 bool
}

const utf8Family = "lawbridge"

// NewBackend validates cfg. Hosts call it once and pass the Backend to the Exporter.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if cfg.FontFamily == "" {
		cfg.FontFamily = "Helvetica"
	}
	b := &Backend{cfg: cfg}
	if cfg.UTF8Regular != "" || cfg.UTF8Bold != "" {
		if cfg.UTF8Regular == "" || cfg.UTF8Bold == "" {
			return nil, fmt.Errorf("export: both regular and bold UTF-8 fonts are required")
		}
		for _, name := range []string{cfg.UTF8Regular, cfg.UTF8Bold} {
			if _, err := os.Stat(filepath.Join(cfg.FontDir, name)); err != nil {
				return nil, fmt.Errorf("export: font %s: %w", name, err)
			}
		}
		b.utf8 = true
	}
	return b, nil
}

// canvas is one in-progress document. It is never shared between exports.
type canvas struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

func (b *Backend) newCanvas(opts Options, now time.Time) *canvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.PageWidth, Ht: opts.PageHeight},
		FontDirStr:     b.cfg.FontDir,
	})
	pdf.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(b.cfg.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("lawbridge", true)

	c := &canvas{pdf: pdf, family: b.cfg.FontFamily}
	if b.utf8 {
		pdf.AddUTF8Font(utf8Family, "", b.cfg.UTF8Regular)
		pdf.AddUTF8Font(utf8Family, "B", b.cfg.UTF8Bold)
		c.family = utf8Family
		c.tr = func(s string) string { return s }
	} else {
		c.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	return c
}

func (c *canvas) setFont(f Font) {
	style := ""
	if f.Bold {
		style = "B"
	}
	c.pdf.SetFont(c.family, style, f.Size)
}

// StringWidth implements Measurer with the canvas' own font metrics.
func (c *canvas) StringWidth(s string, f Font) float64 {
	c.setFont(f)
	return c.pdf.GetStringWidth(c.tr(s))
}

func (c *canvas) draw(doc Document) ([]byte, error) {
	for _, page := range doc.Pages {
		c.pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case OpText:
				c.setFont(op.Font)
				c.pdf.SetXY(op.X, op.Y)
				c.pdf.CellFormat(op.W, op.H, c.tr(op.Text), "", 0, op.Align, false, 0, "")
			case OpRule:
				c.pdf.SetDrawColor(200, 200, 200)
				c.pdf.SetLineWidth(0.2)
				c.pdf.Line(op.X, op.Y, op.X+op.W, op.Y)
			}
		}
	}
	if c.pdf.Err() {
		return nil, c.pdf.Error()
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
