// Package xmldoc is a thin document layer on top of etree used by merging
// transformers: parsing, text extraction, copying of nodes between documents
// and normalized serialization.
package xmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// IndentSpaces is the indentation used for every level of normalized output.
const IndentSpaces = 2

// ErrNoRoot is returned when input was parsed but has no root element.
var ErrNoRoot = errors.New("document has no root element")

// Parse reads complete XML document from r.
func Parse(r io.Reader) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		// descriptors are mostly UTF-8, but legacy ones may declare other encodings
		CharsetReader: charset.NewReaderLabel,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to parse XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*etree.Document, error) {
	return Parse(strings.NewReader(s))
}

// TextContent returns concatenation of all character data under element,
// including nested elements, in document order.
func TextContent(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var text strings.Builder
	for _, node := range el.Child {
		switch token := node.(type) {
		case *etree.CharData:
			text.WriteString(token.Data)
		case *etree.Element:
			text.WriteString(TextContent(token))
		}
	}
	return text.String()
}

// ShallowCopy returns unparented element with the same tag and attributes
// as el but without any children.
func ShallowCopy(el *etree.Element) *etree.Element {
	out := etree.NewElement(el.FullTag())
	for _, a := range el.Attr {
		out.CreateAttr(a.FullKey(), a.Value)
	}
	return out
}

// Detach removes element from its parent, if any.
func Detach(el *etree.Element) {
	if p := el.Parent(); p != nil {
		p.RemoveChild(el)
	}
}

// AppendCopies deep copies every child token of src (elements, character
// data, comments, etc.) and appends copies to dst preserving order. Source
// is not modified.
func AppendCopies(dst, src *etree.Element) int {
	cp := src.Copy()
	children := make([]etree.Token, len(cp.Child))
	copy(children, cp.Child)
	for _, t := range children {
		dst.AddChild(t)
	}
	return len(children)
}

// AppendCopy appends deep copy of element el to dst.
func AppendCopy(dst, el *etree.Element) {
	dst.AddChild(el.Copy())
}

// EnsureDeclaration makes sure document starts with XML declaration.
func EnsureDeclaration(doc *etree.Document) {
	for _, t := range doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
}

// Normalize removes all whitespace only character data from the document tree
// and re-indents it with IndentSpaces spaces per level.
func Normalize(doc *etree.Document) {
	stripBlank(&doc.Element)
	doc.Indent(IndentSpaces)
}

// stripBlank removes whitespace only character data recursively, including
// from elements which have no child elements (etree indentation leaves those
// alone).
func stripBlank(el *etree.Element) {
	for i := len(el.Child) - 1; i >= 0; i-- {
		switch token := el.Child[i].(type) {
		case *etree.CharData:
			if !token.IsCData() && len(strings.TrimSpace(token.Data)) == 0 {
				el.RemoveChildAt(i)
			}
		case *etree.Element:
			stripBlank(token)
		}
	}
}

// Write normalizes document and writes it to w as UTF-8 encoded markup.
func Write(doc *etree.Document, w io.Writer) error {
	EnsureDeclaration(doc)
	Normalize(doc)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to serialize XML: %w", err)
	}
	return nil
}

// WriteToBytes is Write for in-memory results.
func WriteToBytes(doc *etree.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
