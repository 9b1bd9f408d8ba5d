package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/fundscope/internal/market"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pdfFont      = "Arial"
	pdfFontSize  = 10.0
	pdfPageWidth = 180.0
)

// PDF renders each result on its own A4 page
func PDF(results ...*market.AnalysisResult) ([]byte, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to render")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.SetCreator("fundscope", true)

	tickers := make([]string, len(results))
	for i, r := range results {
		tickers[i] = r.UsedTicker
	}
	doc.SetTitle("Fundamental analysis: "+strings.Join(tickers, ", "), true)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	for _, r := range results {
		doc.AddPage()
		source := []byte(Markdown(r))
		root := md.Parser().Parse(text.NewReader(source))

		renderer := &pdfRenderer{
			pdf:       doc,
			source:    source,
			translate: doc.UnicodeTranslatorFromDescriptor(""),
		}
		renderer.setFont()
		if err := ast.Walk(root, renderer.walk); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", r.UsedTicker, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfRenderer walks the markdown report AST and draws it with fpdf
type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	bold      bool
	italic    bool
}

func (r *pdfRenderer) setFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(pdfFont, style, pdfFontSize)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			size := 12.0
			if node.Level == 1 {
				size = 16
			}
			r.pdf.Ln(4)
			r.pdf.SetFont(pdfFont, "B", size)
		} else {
			r.pdf.Ln(8)
			r.setFont()
		}
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(5, r.translate(string(node.Segment.Value(r.source))))
			if node.SoftLineBreak() {
				r.pdf.Write(5, " ")
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.setFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", pdfFontSize)
			r.pdf.Write(5, r.translate(string(node.Text(r.source))))
			r.setFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 15+pdfPageWidth, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case *extast.Table:
		if entering {
			r.renderTable(r.tableRows(node))
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) tableRows(table *extast.Table) [][]string {
	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch child.(type) {
			case *extast.TableHeader, *extast.TableRow:
				var row []string
				for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
					row = append(row, strings.ReplaceAll(string(cell.Text(r.source)), `\|`, "|"))
				}
				rows = append(rows, row)
			}
		}
	}
	collect(table)
	return rows
}

// renderTable draws rows as bordered cells; the first row is the header
func (r *pdfRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	widths := r.columnWidths(rows)
	const lineHeight = 6.0

	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(pdfFont, "B", pdfFontSize-1)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont(pdfFont, "", pdfFontSize-1)
			r.pdf.SetFillColor(255, 255, 255)
		}
		for j, width := range widths {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			r.pdf.CellFormat(width, lineHeight, r.translate(cell), "1", 0, "L", i == 0, 0, "")
		}
		r.pdf.Ln(lineHeight)
	}

	r.pdf.Ln(3)
	r.setFont()
}

// columnWidths sizes columns to their widest cell, scaled down to fit the page
func (r *pdfRenderer) columnWidths(rows [][]string) []float64 {
	numCols := len(rows[0])
	widths := make([]float64, numCols)

	r.pdf.SetFont(pdfFont, "B", pdfFontSize-1)
	for _, row := range rows {
		for j := 0; j < numCols && j < len(row); j++ {
			if w := r.pdf.GetStringWidth(r.translate(row[j])) + 6; w > widths[j] {
				widths[j] = w
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total > pdfPageWidth {
		scale := pdfPageWidth / total
		for j := range widths {
			widths[j] *= scale
		}
	}
	return widths
}
