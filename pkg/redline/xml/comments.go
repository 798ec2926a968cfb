package xml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Comments represents the comments part (word/comments.xml)
type Comments struct {
	Prolog  []xml.Token
	Root    xml.StartElement
	Entries []*Comment
	// MaxID is the largest w:id found in the part, or -1
	MaxID int
}

// Comment represents a single w:comment entry
type Comment struct {
	ID       int
	Author   string
	Initials string
	Date     string
	Attrs    []xml.Attr
	Elements []BodyElement
}

// NewComments creates an empty comments part with the namespace
// declarations Word requires.
func NewComments() *Comments {
	return &Comments{
		Root: xml.StartElement{
			Name: xml.Name{Local: w("comments")},
			Attr: []xml.Attr{
				attr("xmlns:"+mainPrefix, NamespaceMain),
				attr("xmlns:r", NamespaceRelationships),
			},
		},
		MaxID: -1,
	}
}

// NewComment builds a comment entry. Each line of text becomes a paragraph
// styled CommentText; the first one carries the annotation reference.
func NewComment(id int, author, initials, date, text string) *Comment {
	c := &Comment{ID: id, Author: author, Initials: initials, Date: date}
	for i, line := range strings.Split(text, "\n") {
		para := &Paragraph{Properties: NewParagraphProperties("CommentText")}
		if i == 0 {
			para.Content = append(para.Content, &Run{
				Properties: runStyle("CommentReference"),
				Content:    []RunContent{Element(w("annotationRef"), nil)},
			})
		}
		if line != "" {
			para.Content = append(para.Content, NewTextRun(line))
		}
		c.Elements = append(c.Elements, para)
	}
	return c
}

// GetText returns the comment body, one line per paragraph.
func (c *Comment) GetText() string {
	var lines []string
	for _, el := range c.Elements {
		if p, ok := el.(*Paragraph); ok {
			lines = append(lines, p.GetText())
		}
	}
	return strings.Join(lines, "\n")
}

// Find returns the entry with the given id.
func (cs *Comments) Find(id int) (*Comment, bool) {
	for _, c := range cs.Entries {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Remove deletes the entry with the given id and reports whether it existed.
func (cs *Comments) Remove(id int) bool {
	for i, c := range cs.Entries {
		if c.ID == id {
			cs.Entries = append(cs.Entries[:i], cs.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// MarshalXML writes w:comments and its entries
func (cs *Comments) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if err := e.EncodeToken(cs.Root); err != nil {
		return err
	}
	for _, c := range cs.Entries {
		if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: w("comment")}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(cs.Root.End())
}

// MarshalXML writes a single w:comment
func (c *Comment) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	attrs := append([]xml.Attr(nil), c.Attrs...)
	attrs = setAttr(attrs, "w:id", strconv.Itoa(c.ID))
	attrs = setAttr(attrs, "w:author", c.Author)
	if c.Date != "" {
		attrs = setAttr(attrs, "w:date", c.Date)
	}
	if c.Initials != "" {
		attrs = setAttr(attrs, "w:initials", c.Initials)
	}

	start := xml.StartElement{Name: xml.Name{Local: w("comment")}, Attr: attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, el := range c.Elements {
		switch v := el.(type) {
		case *Paragraph:
			if err := v.MarshalXML(e, xml.StartElement{}); err != nil {
				return err
			}
		case *RawXMLElement:
			if err := v.MarshalXML(e, xml.StartElement{}); err != nil {
				return err
			}
		}
	}
	return e.EncodeToken(start.End())
}

// ParseComments parses the comments part
func ParseComments(r io.Reader) (*Comments, error) {
	p := newParser(r)

	prolog, root, err := p.prolog()
	if err != nil {
		return nil, fmt.Errorf("failed to parse comments: %w", err)
	}
	cs := &Comments{Prolog: prolog, Root: root}

	for {
		tok, err := p.nextInside()
		if err != nil {
			return nil, fmt.Errorf("failed to parse comments: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != w("comment") {
				// w:comments only admits w:comment children
				if err := p.skip(); err != nil {
					return nil, fmt.Errorf("failed to parse comments: %w", err)
				}
				continue
			}
			c, err := p.comment(t)
			if err != nil {
				return nil, fmt.Errorf("failed to parse comment: %w", err)
			}
			cs.Entries = append(cs.Entries, c)
		case xml.EndElement:
			cs.MaxID = p.maxID
			return cs, nil
		}
	}
}

func (p *parser) comment(start xml.StartElement) (*Comment, error) {
	id, ok := idAttr(start.Attr)
	if !ok {
		return nil, errors.New("comment without w:id")
	}
	elements, err := p.elements()
	if err != nil {
		return nil, err
	}
	return &Comment{
		ID:       id,
		Author:   attrValue(start.Attr, "w:author"),
		Initials: attrValue(start.Attr, "w:initials"),
		Date:     attrValue(start.Attr, "w:date"),
		Attrs:    start.Attr,
		Elements: elements,
	}, nil
}

// MarshalComments serializes the comments part, declaration included.
func MarshalComments(cs *Comments) ([]byte, error) {
	return marshalPart(cs.Prolog, cs)
}
