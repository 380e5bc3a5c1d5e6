package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// Document is the render-ready form of a worksheet. It is deliberately
// self-contained so the renderer has no view of storage models.
type Document struct {
	Title       string
	Description string
	Questions   []Question

	// IncludeAnswerKey appends the key on a trailing page.
	IncludeAnswerKey bool
}

type Question struct {
	Number        int
	Text          string
	ImagePath     *string
	Choices       []Choice
	CorrectAnswer string
	FreeResponse  bool
}

type Choice struct {
	Letter    string
	Text      string
	ImagePath *string
}

const (
	pageMargin   = 18.0
	bodyFontSize = 11.0
	lineHeight   = 6.0
	imageWidth   = 90.0
	eqHeight     = 5.5
)

// PDFGenerator lays worksheets out on US Letter pages.
type PDFGenerator struct {
	equations *EquationRenderer
	logger    *slog.Logger
	outputDir string
}

func NewPDFGenerator(equations *EquationRenderer, logger *slog.Logger, outputDir string) *PDFGenerator {
	return &PDFGenerator{
		equations: equations,
		logger:    logger,
		outputDir: outputDir,
	}
}

// Generate renders the document and returns the written file path.
func (g *PDFGenerator) Generate(doc *Document, filename string) (string, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, doc.Title, "", "C", false)
	if doc.Description != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, doc.Description, "", "C", false)
	}
	pdf.Ln(4)

	for _, question := range doc.Questions {
		if err := g.writeQuestion(pdf, question); err != nil {
			return "", err
		}
	}

	if doc.IncludeAnswerKey {
		g.writeAnswerKey(pdf, doc)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(g.outputDir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}

	g.logger.Info("Rendered worksheet PDF", "path", path, "questions", len(doc.Questions))
	return path, nil
}

func (g *PDFGenerator) writeQuestion(pdf *fpdf.Fpdf, question Question) error {
	pdf.SetFont("Helvetica", "B", bodyFontSize)
	pdf.CellFormat(10, lineHeight, fmt.Sprintf("%d.", question.Number), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", bodyFontSize)
	if err := g.writeRich(pdf, question.Text); err != nil {
		return err
	}
	pdf.Ln(1)

	if question.ImagePath != nil && *question.ImagePath != "" {
		g.placeImageFile(pdf, *question.ImagePath)
	}

	if question.FreeResponse {
		pdf.SetX(pageMargin + 10)
		pdf.CellFormat(0, lineHeight*1.5, "Answer: ______________________________", "", 1, "L", false, 0, "")
		pdf.Ln(3)
		return nil
	}

	for _, choice := range question.Choices {
		pdf.SetX(pageMargin + 10)
		pdf.SetFont("Helvetica", "B", bodyFontSize)
		pdf.CellFormat(10, lineHeight, choice.Letter+")", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodyFontSize)
		if err := g.writeRich(pdf, choice.Text); err != nil {
			return err
		}
		if choice.ImagePath != nil && *choice.ImagePath != "" {
			g.placeImageFile(pdf, *choice.ImagePath)
		}
	}
	pdf.Ln(4)
	return nil
}

// writeRich writes text with inline LaTeX math rendered as images sized
// to the text line.
func (g *PDFGenerator) writeRich(pdf *fpdf.Fpdf, text string) error {
	if !HasEquations(text) {
		pdf.MultiCell(0, lineHeight, text, "", "L", false)
		return nil
	}

	for _, segment := range Split(text) {
		if !segment.Equation {
			pdf.Write(lineHeight, segment.Text)
			continue
		}
		png, err := g.equations.Render(segment.Text)
		if err != nil {
			// A bad expression falls back to its raw source rather than
			// sinking the whole worksheet.
			g.logger.Warn("Falling back to raw equation text", "expr", segment.Text, "error", err)
			pdf.Write(lineHeight, "$"+segment.Text+"$")
			continue
		}
		g.placeEquation(pdf, segment.Text, png)
	}
	pdf.Ln(lineHeight)
	return nil
}

// placeEquation drops a pre-rendered equation PNG at the write cursor.
func (g *PDFGenerator) placeEquation(pdf *fpdf.Fpdf, expr string, png []byte) {
	name := "eq-" + cacheKey(expr)
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	if pdf.GetImageInfo(name) == nil {
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	}
	info := pdf.GetImageInfo(name)
	width := eqHeight * info.Width() / info.Height()
	x, y := pdf.GetXY()
	pdf.ImageOptions(name, x, y, width, eqHeight, false, opts, 0, "")
	pdf.SetXY(x+width+1, y)
}

func (g *PDFGenerator) placeImageFile(pdf *fpdf.Fpdf, path string) {
	if _, err := os.Stat(path); err != nil {
		g.logger.Warn("Skipping missing image", "path", path)
		return
	}
	pdf.Ln(2)
	x := pdf.GetX() + 10
	pdf.ImageOptions(path, x, pdf.GetY(), imageWidth, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	pdf.Ln(2)
}

func (g *PDFGenerator) writeAnswerKey(pdf *fpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, "Answer Key", "", "C", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", bodyFontSize)
	for _, question := range doc.Questions {
		answer := question.CorrectAnswer
		pdf.MultiCell(0, lineHeight, fmt.Sprintf("%d. %s", question.Number, answer), "", "L", false)
	}
}
