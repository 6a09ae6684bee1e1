package converters

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/testcase"
)

const adfFormat = "confluence"

// ADFConverter renders the test-case catalogue in Atlassian Document Format for Confluence or Jira.
type ADFConverter struct{}

// NewADFConverter creates a new ADF converter.
func NewADFConverter() *ADFConverter {
	return &ADFConverter{}
}

// Format returns the output format name.
func (c *ADFConverter) Format() string {
	return adfFormat
}

// ADF node types.
type adfDocument struct {
	Version int       `json:"version"`
	Type    string    `json:"type"`
	Content []adfNode `json:"content"`
}

type adfNode struct {
	Type    string    `json:"type"`
	Attrs   *adfAttrs `json:"attrs,omitempty"`
	Content []adfNode `json:"content,omitempty"`
	Text    string    `json:"text,omitempty"`
	Marks   []adfMark `json:"marks,omitempty"`
}

type adfAttrs struct {
	Level int `json:"level,omitempty"`
}

type adfMark struct {
	Type string `json:"type"`
}

// Convert writes a heading and a bullet list per module.
func (c *ADFConverter) Convert(spec *domain.APISpec, opts domain.GenerateOptions, output io.Writer) error {
	rows := testcase.Synthesize(spec, opts)

	adf := &adfDocument{
		Version: 1,
		Type:    "doc",
		Content: []adfNode{
			c.heading(nonEmpty(spec.Title, "API")+" Test Cases", 1),
			c.paragraph(fmt.Sprintf("Total test cases: %d", len(rows))),
		},
	}

	for _, module := range groupCases(rows) {
		adf.Content = append(adf.Content, c.heading(module.name, 2), c.caseList(module.rows))
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(adf); err != nil {
		return fmt.Errorf("failed to encode ADF: %w", err)
	}

	return nil
}

func (c *ADFConverter) heading(text string, level int) adfNode {
	return adfNode{
		Type:  "heading",
		Attrs: &adfAttrs{Level: level},
		Content: []adfNode{
			{Type: "text", Text: text},
		},
	}
}

func (c *ADFConverter) paragraph(text string) adfNode {
	return adfNode{
		Type: "paragraph",
		Content: []adfNode{
			{Type: "text", Text: text},
		},
	}
}

func (c *ADFConverter) codeText(text string) adfNode {
	return adfNode{
		Type:  "text",
		Text:  text,
		Marks: []adfMark{{Type: "code"}},
	}
}

func (c *ADFConverter) caseList(rows []testcase.Row) adfNode {
	items := make([]adfNode, 0, len(rows))

	for _, row := range rows {
		items = append(items, adfNode{
			Type: "listItem",
			Content: []adfNode{
				{
					Type: "paragraph",
					Content: []adfNode{
						c.codeText(formatMethod(row.Method) + " " + row.Endpoint),
						{Type: "text", Text: " → " + strconv.Itoa(row.ExpectedStatus) + ": " + row.Description},
					},
				},
				c.detailList(row),
			},
		})
	}

	return adfNode{
		Type:    "bulletList",
		Content: items,
	}
}

func (c *ADFConverter) detailList(row testcase.Row) adfNode {
	details := caseDetails(row)
	items := make([]adfNode, 0, len(details))
	for _, d := range details {
		items = append(items, adfNode{
			Type: "listItem",
			Content: []adfNode{{
				Type: "paragraph",
				Content: []adfNode{
					{Type: "text", Text: d[0] + ": ", Marks: []adfMark{{Type: "strong"}}},
					{Type: "text", Text: d[1]},
				},
			}},
		})
	}
	return adfNode{Type: "bulletList", Content: items}
}
