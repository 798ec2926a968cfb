package xml

import (
	"encoding/xml"
	"strings"
	"unicode/utf8"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Attrs      []xml.Attr
	Properties *ParagraphProperties
	// Content maintains the order of runs, tracked changes and markers
	Content []ParagraphContent
}

// isBodyElement implements the BodyElement interface
func (p *Paragraph) isBodyElement() {}

// NewParagraph creates a paragraph holding a single unformatted run.
func NewParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.Content = []ParagraphContent{NewTextRun(text)}
	}
	return p
}

// GetText returns the rendered text: the text of every run and tracked
// change, in order. Deleted text is included; markers contribute nothing.
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, item := range p.Content {
		if text, ok := ContentText(item); ok {
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// AcceptedText returns the text as it reads with every tracked change
// accepted: deletions dropped, insertions kept.
func (p *Paragraph) AcceptedText() string {
	return AcceptedText(p.Content)
}

// Style returns the paragraph style id, or "" when none is set.
func (p *Paragraph) Style() string {
	if p.Properties == nil {
		return ""
	}
	return p.Properties.Style
}

// MarshalXML implements custom XML marshaling for Paragraph to ensure proper namespacing
func (p *Paragraph) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: w("p")}, Attr: p.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil {
		if err := p.Properties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}

	for _, item := range p.Content {
		if err := encodeContent(e, item, false); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

// ContentText returns the text carried by a paragraph content item and
// whether the item carries text at all.
func ContentText(item ParagraphContent) (string, bool) {
	switch v := item.(type) {
	case *Run:
		return v.GetText(), true
	case *TrackedChange:
		return v.GetText(), true
	case *Container:
		return v.GetText(), true
	default:
		return "", false
	}
}

// ContentLen returns the character length of a content item; zero for
// markers and raw elements. Hyperlinks and other containers count the text
// of their runs.
func ContentLen(item ParagraphContent) int {
	text, _ := ContentText(item)
	return utf8.RuneCountInString(text)
}

// encodeContent writes one content item. Runs nested in a deletion write
// their text as w:delText.
func encodeContent(e *xml.Encoder, item ParagraphContent, deleted bool) error {
	switch v := item.(type) {
	case *Run:
		return v.encode(e, deleted)
	case *Container:
		return v.encode(e, deleted)
	case *TrackedChange:
		return v.MarshalXML(e, xml.StartElement{})
	case *CommentRangeStart:
		return v.MarshalXML(e, xml.StartElement{})
	case *CommentRangeEnd:
		return v.MarshalXML(e, xml.StartElement{})
	case *CommentReference:
		return v.MarshalXML(e, xml.StartElement{})
	case *RawXMLElement:
		return v.MarshalXML(e, xml.StartElement{})
	}
	return nil
}

// ParagraphProperties represents paragraph formatting properties. Only the
// style is interpreted; the element itself is kept verbatim.
type ParagraphProperties struct {
	Style string
	Raw   *RawXMLElement
}

// NewParagraphProperties creates properties that only set a style.
func NewParagraphProperties(style string) *ParagraphProperties {
	return &ParagraphProperties{
		Style: style,
		Raw:   Element(w("pPr"), nil, Element(w("pStyle"), []string{"w:val", style})),
	}
}

// MarshalXML implements custom XML marshaling for ParagraphProperties
func (pp *ParagraphProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if pp.Raw != nil {
		return pp.Raw.MarshalXML(e, xml.StartElement{})
	}
	return NewParagraphProperties(pp.Style).Raw.MarshalXML(e, xml.StartElement{})
}

// styleOf extracts w:pStyle/@w:val from a direct child of pPr.
func styleOf(pPr *RawXMLElement) string {
	depth := 0
	for _, tok := range pPr.Tokens {
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && t.Name.Local == w("pStyle") {
				return attrValue(t.Attr, "w:val")
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return ""
}
