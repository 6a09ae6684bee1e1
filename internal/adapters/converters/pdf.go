package converters

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/testcase"
)

const (
	pdfFormat      = "pdf"
	pdfPageWidth   = 190.0
	pdfMarginLeft  = 10.0
	pdfMarginTop   = 10.0
	pdfMarginRight = 10.0
	pdfLineHeight  = 5.0
)

// PDFConverter renders the test-case catalogue as a PDF report.
type PDFConverter struct {
	pdf      *gofpdf.Fpdf
	tocItems []tocItem
	caseLink map[int]int // Serial number to link ID
}

type tocItem struct {
	title  string
	level  int
	linkID int
}

// NewPDFConverter creates a new PDF converter.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

// Format returns the output format name.
func (c *PDFConverter) Format() string {
	return pdfFormat
}

// Convert writes a title page, a table of contents and one section per module.
func (c *PDFConverter) Convert(spec *domain.APISpec, opts domain.GenerateOptions, output io.Writer) error {
	c.pdf = gofpdf.New("P", "mm", "A4", "")
	c.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	c.pdf.SetDrawColor(180, 180, 180) // Light gray for all borders
	c.tocItems = nil
	c.caseLink = make(map[int]int)

	rows := testcase.Synthesize(spec, opts)
	modules := groupCases(rows)

	// Links are created before any page so the table of contents can point forward.
	c.collectTOC(modules)

	c.addTitlePage(spec, rows, opts)
	c.addTableOfContents()
	c.addOverview(rows)

	for i, module := range modules {
		c.addModule(i+1, module)
	}

	return c.pdf.Output(output)
}

func (c *PDFConverter) collectTOC(modules []moduleCases) {
	c.tocItems = append(c.tocItems, tocItem{title: "Overview", level: 1, linkID: c.pdf.AddLink()})

	for _, module := range modules {
		c.tocItems = append(c.tocItems, tocItem{
			title:  fmt.Sprintf("%s (%d cases)", module.name, len(module.rows)),
			level:  2,
			linkID: c.pdf.AddLink(),
		})
		for _, row := range module.rows {
			c.caseLink[row.SerialNo] = c.pdf.AddLink()
		}
	}
}

func (c *PDFConverter) addTitlePage(spec *domain.APISpec, rows []testcase.Row, opts domain.GenerateOptions) {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 28)
	c.pdf.Ln(40)
	c.pdf.MultiCell(pdfPageWidth, 12, nonEmpty(spec.Title, "API"), "", "C", false)
	c.pdf.Ln(5)

	c.pdf.SetFont("Arial", "", 14)
	c.pdf.SetTextColor(100, 100, 100)
	c.pdf.CellFormat(pdfPageWidth, 8, "Functional Test Cases", "", 1, "C", false, 0, "")
	if spec.Version != "" {
		c.pdf.CellFormat(pdfPageWidth, 8, fmt.Sprintf("Version %s", spec.Version), "", 1, "C", false, 0, "")
	}
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.Ln(20)

	if spec.Description != "" {
		c.pdf.SetFont("Arial", "", 11)
		c.pdf.MultiCell(pdfPageWidth, 6, stripHTML(spec.Description), "", "C", false)
	}

	c.pdf.Ln(30)
	c.pdf.SetFont("Arial", "", 10)
	c.pdf.SetTextColor(128, 128, 128)
	c.pdf.CellFormat(pdfPageWidth, 6, fmt.Sprintf("%d test cases generated %s", len(rows),
		opts.Clock()().UTC().Format("2006-01-02 15:04 UTC")), "", 1, "C", false, 0, "")
	c.pdf.SetTextColor(0, 0, 0)
}

func (c *PDFConverter) addTableOfContents() {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 20)
	c.pdf.CellFormat(pdfPageWidth, 10, "Table of Contents", "", 1, "", false, 0, "")
	c.pdf.Ln(8)

	for _, item := range c.tocItems {
		indent := float64(item.level-1) * 8

		if item.level == 1 {
			c.pdf.SetFont("Arial", "B", 12)
		} else {
			c.pdf.SetFont("Arial", "", 10)
		}

		c.pdf.SetX(pdfMarginLeft + indent)
		c.pdf.CellFormat(pdfPageWidth-indent, pdfLineHeight+1, truncate(item.title, 70), "", 1, "", false, item.linkID, "")
	}
}

// addOverview prints case counts per test type.
func (c *PDFConverter) addOverview(rows []testcase.Row) {
	c.pdf.AddPage()
	c.pdf.SetLink(c.tocItems[0].linkID, -1, -1)
	c.addSectionHeader("Overview")

	counts := map[string]int{}
	for _, r := range rows {
		counts[r.TestType]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	colWidths := []float64{120, 70}
	c.addTableHeader(colWidths, []string{"Test Type", "Cases"})
	c.pdf.SetFont("Arial", "", 9)
	for _, t := range types {
		c.addTableRow(colWidths, []string{t, strconv.Itoa(counts[t])}, []string{"L", "C"}, nil)
	}
	c.addTableRow(colWidths, []string{"Total", strconv.Itoa(len(rows))}, []string{"L", "C"}, nil)
}

func (c *PDFConverter) addModule(tocIndex int, module moduleCases) {
	c.pdf.AddPage()
	if tocIndex < len(c.tocItems) {
		c.pdf.SetLink(c.tocItems[tocIndex].linkID, -1, -1)
	}

	c.pdf.SetFont("Arial", "B", 14)
	c.pdf.SetFillColor(240, 240, 240)
	c.pdf.CellFormat(pdfPageWidth, 8, module.name, "", 1, "", true, 0, "")
	c.pdf.Ln(4)

	c.addCaseSummary(module.rows)
	c.pdf.Ln(6)

	for _, row := range module.rows {
		c.checkPageBreak(45)
		c.pdf.SetLink(c.caseLink[row.SerialNo], -1, -1)
		c.addCase(row)
	}
}

func (c *PDFConverter) addCaseSummary(rows []testcase.Row) {
	colWidths := []float64{12, 18, 80, 15, 35, 30}
	c.addTableHeader(colWidths, []string{"#", "Method", "Endpoint", "Status", "Type", "Priority"})

	c.pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		link := c.caseLink[r.SerialNo]
		c.addTableRow(colWidths,
			[]string{strconv.Itoa(r.SerialNo), r.Method, r.Endpoint, strconv.Itoa(r.ExpectedStatus), r.TestType, r.Priority},
			[]string{"C", "C", "L", "C", "L", "L"},
			[]int{link, 0, 0, 0, 0, 0},
		)
	}
}

func (c *PDFConverter) addCase(r testcase.Row) {
	c.methodBadge(r.Method)

	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.SetFont("Arial", "B", 11)
	methodWidth := float64(len(r.Method)*3) + 8
	c.pdf.CellFormat(pdfPageWidth-methodWidth, 7, fmt.Sprintf(" %s   (TC-%03d)", r.Endpoint, r.SerialNo), "", 1, "", false, 0, "")
	c.pdf.Ln(1)

	colWidths := []float64{35, 155}
	c.pdf.SetFont("Arial", "", 8)
	for _, d := range caseDetails(r) {
		if d[0] == "Body" {
			continue
		}
		c.addTableRow(colWidths, []string{d[0], d[1]}, []string{"L", "L"}, nil)
	}

	if r.RequestBody != "" {
		c.pdf.Ln(2)
		c.addBody(r.RequestBody)
	}

	c.pdf.Ln(2)
	c.pdf.SetDrawColor(220, 220, 220)
	c.pdf.Line(pdfMarginLeft, c.pdf.GetY(), pdfMarginLeft+pdfPageWidth, c.pdf.GetY())
	c.pdf.SetDrawColor(180, 180, 180) // Reset to standard light gray
	c.pdf.Ln(6)
}

func (c *PDFConverter) methodBadge(method string) {
	methodColors := map[string][3]int{
		"GET":    {97, 175, 254},  // Blue
		"POST":   {73, 204, 144},  // Green
		"PUT":    {252, 161, 48},  // Orange
		"DELETE": {249, 62, 62},   // Red
		"PATCH":  {80, 227, 194},  // Teal
	}

	color, ok := methodColors[method]
	if !ok {
		color = [3]int{128, 128, 128}
	}

	c.pdf.SetFont("Arial", "B", 11)
	c.pdf.SetFillColor(color[0], color[1], color[2])
	c.pdf.SetTextColor(255, 255, 255)
	c.pdf.CellFormat(float64(len(method)*3)+8, 7, method, "", 0, "C", true, 0, "")
}

func (c *PDFConverter) addBody(body string) {
	c.pdf.SetFont("Arial", "I", 9)
	c.pdf.SetTextColor(60, 60, 60)
	c.pdf.CellFormat(pdfPageWidth, 6, "Request body:", "", 1, "", false, 0, "")

	c.pdf.SetFont("Courier", "", 8)
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.SetFillColor(250, 250, 250)
	c.pdf.MultiCell(pdfPageWidth, 4, truncate(body, 600), "1", "", true)
}

func (c *PDFConverter) addSectionHeader(title string) {
	c.pdf.SetFont("Arial", "B", 18)
	c.pdf.CellFormat(pdfPageWidth, 10, title, "", 1, "", false, 0, "")
	c.pdf.Ln(4)
}

func (c *PDFConverter) addTableHeader(colWidths []float64, headers []string) {
	c.pdf.SetFont("Arial", "B", 8)
	c.pdf.SetFillColor(245, 245, 245)
	for i, header := range headers {
		c.pdf.CellFormat(colWidths[i], 6, header, "1", 0, "", true, 0, "")
	}
	c.pdf.Ln(-1)
}

func (c *PDFConverter) checkPageBreak(height float64) {
	_, pageHeight := c.pdf.GetPageSize()
	_, _, _, bottomMargin := c.pdf.GetMargins()

	if c.pdf.GetY()+height > pageHeight-bottomMargin-10 {
		c.pdf.AddPage()
	}
}

// addTableRow draws a row whose height fits the tallest wrapped cell.
func (c *PDFConverter) addTableRow(colWidths []float64, contents []string, aligns []string, linkIDs []int) {
	maxLines := 1
	for i, content := range contents {
		lines := c.pdf.SplitLines([]byte(content), colWidths[i])
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}

	rowHeight := float64(maxLines) * pdfLineHeight

	c.checkPageBreak(rowHeight)

	startX := c.pdf.GetX()
	startY := c.pdf.GetY()

	for i, content := range contents {
		width := colWidths[i]

		align := ""
		if len(aligns) > i {
			align = aligns[i]
		}

		linkID := 0
		if len(linkIDs) > i {
			linkID = linkIDs[i]
		}

		if linkID > 0 {
			c.pdf.SetTextColor(0, 102, 204)
		}

		c.pdf.SetXY(startX, startY)
		c.pdf.MultiCell(width, pdfLineHeight, content, "0", align, false)
		if linkID > 0 {
			c.pdf.Link(startX, startY, width, rowHeight, linkID)
			c.pdf.SetTextColor(0, 0, 0)
		}

		c.pdf.Rect(startX, startY, width, rowHeight, "D")
		startX += width
	}

	c.pdf.SetXY(pdfMarginLeft, startY+rowHeight)
}
