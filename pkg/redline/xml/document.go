package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Document represents a Word document structure
type Document struct {
	// Prolog holds the XML declaration and anything else before the root
	Prolog []xml.Token
	// Root is the w:document start element, namespace declarations included
	Root xml.StartElement
	// Leading and Trailing hold root children around the body (w:background...)
	Leading  []*RawXMLElement
	Trailing []*RawXMLElement
	Body     *Body
	// MaxID is the largest w:id found in the part, or -1
	MaxID int
}

// Body represents the document body
type Body struct {
	Attrs []xml.Attr
	// Elements maintains the order of all body elements
	Elements []BodyElement
}

// Paragraphs returns the body's top-level paragraphs in document order.
// Paragraphs nested in tables or content controls are not included.
func (b *Body) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, el := range b.Elements {
		if p, ok := el.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b *Body) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: w("body")}, Attr: b.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, elem := range b.Elements {
		switch el := elem.(type) {
		case *Paragraph:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: w("p")}}); err != nil {
				return err
			}
		case *RawXMLElement:
			if err := e.EncodeElement(el, xml.StartElement{Name: el.XMLName}); err != nil {
				return err
			}
		}
	}

	return e.EncodeToken(start.End())
}

// MarshalXML writes the root element, the body and any sibling elements.
func (doc *Document) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if err := e.EncodeToken(doc.Root); err != nil {
		return err
	}
	for _, raw := range doc.Leading {
		if err := raw.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	if doc.Body != nil {
		if err := e.EncodeElement(doc.Body, xml.StartElement{Name: xml.Name{Local: w("body")}}); err != nil {
			return err
		}
	}
	for _, raw := range doc.Trailing {
		if err := raw.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	return e.EncodeToken(doc.Root.End())
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	p := newParser(r)

	prolog, root, err := p.prolog()
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc := &Document{Prolog: prolog, Root: root}

	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == w("body") && doc.Body == nil {
				elements, err := p.elements()
				if err != nil {
					return nil, fmt.Errorf("failed to parse document body: %w", err)
				}
				doc.Body = &Body{Attrs: t.Attr, Elements: elements}
				continue
			}
			raw, err := p.raw(t)
			if err != nil {
				return nil, fmt.Errorf("failed to parse document: %w", err)
			}
			if doc.Body == nil {
				doc.Leading = append(doc.Leading, raw)
			} else {
				doc.Trailing = append(doc.Trailing, raw)
			}
		case xml.EndElement:
			if doc.Body == nil {
				return nil, errors.New("failed to parse document: missing w:body")
			}
			doc.MaxID = p.maxID
			return doc, nil
		}
	}
}

// MarshalDocument serializes a document, declaration included.
func MarshalDocument(doc *Document) ([]byte, error) {
	return marshalPart(doc.Prolog, doc)
}

// declaration is written when a part had none.
var declaration = xml.ProcInst{
	Target: "xml",
	Inst:   []byte(`version="1.0" encoding="UTF-8" standalone="yes"`),
}

func marshalPart(prolog []xml.Token, root xml.Marshaler) ([]byte, error) {
	var buf bytes.Buffer
	e := xml.NewEncoder(&buf)

	if len(prolog) == 0 {
		prolog = []xml.Token{declaration}
	}
	for _, tok := range prolog {
		if err := e.EncodeToken(tok); err != nil {
			return nil, err
		}
	}
	if err := e.Encode(root); err != nil {
		return nil, err
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
