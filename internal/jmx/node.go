// Package jmx models a JMeter test plan as a tree of typed XML nodes and
// serializes it in a single pass.
package jmx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Attr is a single XML attribute. Attributes keep insertion order so output is stable.
type Attr struct {
	Name  string
	Value string
}

// Node is an XML element with ordered attributes, optional text and children.
// A node has either Text or Children, never both.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// El creates an element with attributes given as name/value pairs.
func El(name string, attrs ...string) *Node {
	n := &Node{Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attrs = append(n.Attrs, Attr{Name: attrs[i], Value: attrs[i+1]})
	}
	return n
}

// Append adds children and returns n for chaining. Nil children are skipped.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// WithText sets the element's character data.
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Find returns every descendant (depth first, document order) with the given element name.
func (n *Node) Find(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
		out = append(out, c.Find(name)...)
	}
	return out
}

// Prop returns the text of the direct child property whose name attribute is name.
func (n *Node) Prop(name string) (string, bool) {
	for _, c := range n.Children {
		if c.Attr("name") == name {
			return c.Text, true
		}
	}
	return "", false
}

// Child returns the direct child property or element named by its name attribute.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Attr("name") == name {
			return c
		}
	}
	return nil
}

// Encode writes the XML declaration followed by the tree, indented by two spaces.
func Encode(w io.Writer, root *Node) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)}); err != nil {
		return fmt.Errorf("failed to write xml declaration: %w", err)
	}
	if err := encodeNode(enc, root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded document.
func Marshal(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}

	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("failed to encode <%s>: %w", n.Name, err)
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return fmt.Errorf("failed to encode <%s> text: %w", n.Name, err)
		}
	}
	for _, c := range n.Children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
