package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// parser reads a part with RawToken so prefixes survive untranslated. Every
// name it hands out is flattened to its qualified form ("w:p").
type parser struct {
	d *xml.Decoder
	// maxID is the largest w:id seen anywhere in the part
	maxID int
}

func newParser(r io.Reader) *parser {
	return &parser{d: xml.NewDecoder(r), maxID: -1}
}

func (p *parser) next() (xml.Token, error) {
	tok, err := p.d.RawToken()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case xml.StartElement:
		se := xml.StartElement{Name: xml.Name{Local: qualified(t.Name)}}
		if len(t.Attr) > 0 {
			se.Attr = make([]xml.Attr, len(t.Attr))
			for i, a := range t.Attr {
				se.Attr[i] = xml.Attr{Name: xml.Name{Local: qualified(a.Name)}, Value: a.Value}
			}
		}
		if id, ok := idAttr(se.Attr); ok && id > p.maxID {
			p.maxID = id
		}
		return se, nil
	case xml.EndElement:
		return xml.EndElement{Name: xml.Name{Local: qualified(t.Name)}}, nil
	default:
		return xml.CopyToken(tok), nil
	}
}

// nextInside is next for callers that are within an open element, where
// EOF means the part was truncated.
func (p *parser) nextInside() (xml.Token, error) {
	tok, err := p.next()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

// prolog consumes everything before the root element and returns the root.
func (p *parser) prolog() ([]xml.Token, xml.StartElement, error) {
	var prolog []xml.Token
	for {
		tok, err := p.next()
		if errors.Is(err, io.EOF) {
			return nil, xml.StartElement{}, errors.New("no root element")
		}
		if err != nil {
			return nil, xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if attrValue(t.Attr, "xmlns:"+mainPrefix) != NamespaceMain {
				return nil, xml.StartElement{}, fmt.Errorf("root element %s does not bind prefix %q to %s", t.Name.Local, mainPrefix, NamespaceMain)
			}
			return prolog, t, nil
		case xml.ProcInst, xml.Comment, xml.Directive:
			prolog = append(prolog, t)
		}
	}
}

// raw captures an element and everything inside it.
func (p *parser) raw(start xml.StartElement) (*RawXMLElement, error) {
	raw := &RawXMLElement{XMLName: start.Name, Attrs: start.Attr}
	stack := []string{start.Name.Local}
	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			raw.Tokens = append(raw.Tokens, t)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return raw, nil
			}
			raw.Tokens = append(raw.Tokens, t)
		case xml.CharData:
			if keepCharData(stack[len(stack)-1], t) {
				raw.Tokens = append(raw.Tokens, t)
			}
		default:
			raw.Tokens = append(raw.Tokens, t)
		}
	}
}

// skip consumes the remainder of an element.
func (p *parser) skip() error {
	depth := 1
	for depth > 0 {
		tok, err := p.nextInside()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// textElements are the elements whose whitespace is content.
var textElements = map[string]bool{
	"t":            true,
	"delText":      true,
	"instrText":    true,
	"delInstrText": true,
}

// keepCharData drops formatting whitespace between elements.
func keepCharData(parent string, data xml.CharData) bool {
	if len(bytes.TrimSpace(data)) > 0 {
		return true
	}
	_, local, found := strings.Cut(parent, ":")
	if !found {
		local = parent
	}
	return textElements[local]
}

// elements decodes the children of a body-like container (w:body,
// w:comment) until its end element.
func (p *parser) elements() ([]BodyElement, error) {
	var out []BodyElement
	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == w("p") {
				para, err := p.paragraph(t)
				if err != nil {
					return nil, err
				}
				out = append(out, para)
				continue
			}
			raw, err := p.raw(t)
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		case xml.EndElement:
			return out, nil
		}
	}
}

func (p *parser) paragraph(start xml.StartElement) (*Paragraph, error) {
	para := &Paragraph{Attrs: start.Attr}
	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == w("pPr") {
				raw, err := p.raw(t)
				if err != nil {
					return nil, err
				}
				para.Properties = &ParagraphProperties{Style: styleOf(raw), Raw: raw}
				continue
			}
			item, err := p.content(t)
			if err != nil {
				return nil, err
			}
			para.Content = append(para.Content, item)
		case xml.EndElement:
			return para, nil
		}
	}
}

func (p *parser) content(start xml.StartElement) (ParagraphContent, error) {
	if containerElements[start.Name.Local] {
		return p.container(start)
	}
	switch start.Name.Local {
	case w("r"):
		return p.run(start)
	case w("ins"):
		return p.trackedChange(start, Inserted)
	case w("del"):
		return p.trackedChange(start, Deleted)
	case w("commentRangeStart"):
		id, _ := idAttr(start.Attr)
		return &CommentRangeStart{ID: id}, p.skip()
	case w("commentRangeEnd"):
		id, _ := idAttr(start.Attr)
		return &CommentRangeEnd{ID: id}, p.skip()
	default:
		return p.raw(start)
	}
}

// run decodes w:r. A run that carries a comment reference and no text is
// returned as a *CommentReference.
func (p *parser) run(start xml.StartElement) (ParagraphContent, error) {
	run := &Run{Attrs: start.Attr}
	refID := -1
	hasText := false
	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case w("rPr"):
				raw, err := p.raw(t)
				if err != nil {
					return nil, err
				}
				run.Properties = raw
			case w("t"), w("delText"):
				text, err := p.text(t)
				if err != nil {
					return nil, err
				}
				run.Content = append(run.Content, text)
				hasText = true
			default:
				raw, err := p.raw(t)
				if err != nil {
					return nil, err
				}
				if t.Name.Local == w("commentReference") {
					if id, ok := idAttr(t.Attr); ok {
						refID = id
					}
				}
				run.Content = append(run.Content, raw)
			}
		case xml.EndElement:
			if refID >= 0 && !hasText {
				return &CommentReference{ID: refID, Attrs: run.Attrs, Properties: run.Properties}, nil
			}
			return run, nil
		}
	}
}

func (p *parser) text(start xml.StartElement) (*Text, error) {
	text := &Text{Preserve: attrValue(start.Attr, "xml:space") == "preserve"}
	var sb strings.Builder
	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := p.skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			text.Value = sb.String()
			return text, nil
		}
	}
}

func (p *parser) trackedChange(start xml.StartElement, kind ChangeKind) (*TrackedChange, error) {
	change := &TrackedChange{
		Kind:   kind,
		Author: attrValue(start.Attr, "w:author"),
		Date:   attrValue(start.Attr, "w:date"),
		Attrs:  start.Attr,
	}
	change.ID, _ = idAttr(start.Attr)
	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			item, err := p.content(t)
			if err != nil {
				return nil, err
			}
			change.Content = append(change.Content, item)
		case xml.EndElement:
			return change, nil
		}
	}
}

func (p *parser) container(start xml.StartElement) (*Container, error) {
	c := &Container{Name: start.Name.Local, Attrs: start.Attr}
	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			item, err := p.content(t)
			if err != nil {
				return nil, err
			}
			c.Content = append(c.Content, item)
		case xml.EndElement:
			return c, nil
		}
	}
}
