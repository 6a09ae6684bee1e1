package converters

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/testcase"
)

const docxFormat = "docx"

// DocxConverter renders the test-case catalogue as a Word (DOCX) document.
type DocxConverter struct{}

// NewDocxConverter creates a new DOCX converter.
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{}
}

// Format returns the output format name.
func (c *DocxConverter) Format() string {
	return docxFormat
}

// Convert writes one heading per module and one block per test case.
func (c *DocxConverter) Convert(spec *domain.APISpec, opts domain.GenerateOptions, output io.Writer) error {
	document, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	rows := testcase.Synthesize(spec, opts)

	c.addTitle(document, spec, len(rows))
	for _, module := range groupCases(rows) {
		c.addModule(document, module)
	}

	if err := document.Write(output); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

func (c *DocxConverter) addTitle(document *docx.RootDoc, spec *domain.APISpec, total int) {
	_, _ = document.AddHeading(nonEmpty(spec.Title, "API")+" Test Cases", 0) // Level 0 = Title style
	if spec.Version != "" {
		document.AddParagraph(fmt.Sprintf("Version: %s", spec.Version))
	}
	document.AddParagraph(fmt.Sprintf("Total test cases: %d", total))
	document.AddEmptyParagraph()
}

func (c *DocxConverter) addModule(document *docx.RootDoc, module moduleCases) {
	_, _ = document.AddHeading(fmt.Sprintf("%s (%d)", module.name, len(module.rows)), 1)

	for _, row := range module.rows {
		_, _ = document.AddHeading(caseTitle(row), 2)
		for _, d := range caseDetails(row) {
			document.AddParagraph(fmt.Sprintf("• %s: %s", d[0], strings.TrimSpace(d[1])))
		}
		document.AddEmptyParagraph()
	}
}
