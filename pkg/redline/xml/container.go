package xml

import (
	"encoding/xml"
	"strings"
)

// containerElements are the inline wrappers decoded as *Container.
var containerElements = map[string]bool{
	w("hyperlink"): true,
	w("smartTag"):  true,
	w("customXml"): true,
}

// Container is an inline wrapper around runs, such as w:hyperlink. Its runs
// are part of the paragraph text. Name and attributes are kept as read.
type Container struct {
	Name    string
	Attrs   []xml.Attr
	Content []ParagraphContent
}

func (c *Container) isParagraphContent() {}

// NewHyperlink creates a w:hyperlink to a relationship id holding one run.
func NewHyperlink(relID, text string) *Container {
	return &Container{
		Name:    w("hyperlink"),
		Attrs:   []xml.Attr{attr("r:id", relID)},
		Content: []ParagraphContent{NewTextRun(text)},
	}
}

// Clone returns a container with the same name and attributes holding
// content.
func (c *Container) Clone(content []ParagraphContent) *Container {
	return &Container{Name: c.Name, Attrs: c.Attrs, Content: content}
}

// GetText returns the rendered text of the wrapped content.
func (c *Container) GetText() string {
	var sb strings.Builder
	for _, item := range c.Content {
		if text, ok := ContentText(item); ok {
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// MarshalXML writes the wrapper and its content.
func (c *Container) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return c.encode(e, false)
}

func (c *Container) encode(e *xml.Encoder, deleted bool) error {
	start := xml.StartElement{Name: xml.Name{Local: c.Name}, Attr: c.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, item := range c.Content {
		if err := encodeContent(e, item, deleted); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// AcceptedText returns the text of content with every tracked change
// accepted: deleted text is skipped wherever it is nested.
func AcceptedText(content []ParagraphContent) string {
	var sb strings.Builder
	writeAccepted(&sb, content)
	return sb.String()
}

func writeAccepted(sb *strings.Builder, content []ParagraphContent) {
	for _, item := range content {
		switch v := item.(type) {
		case *Run:
			sb.WriteString(v.GetText())
		case *TrackedChange:
			if v.Kind == Inserted {
				writeAccepted(sb, v.Content)
			}
		case *Container:
			writeAccepted(sb, v.Content)
		}
	}
}

// Walk calls fn for every item of content, descending into tracked changes
// and containers.
func Walk(content []ParagraphContent, fn func(item ParagraphContent)) {
	for _, item := range content {
		fn(item)
		switch v := item.(type) {
		case *TrackedChange:
			Walk(v.Content, fn)
		case *Container:
			Walk(v.Content, fn)
		}
	}
}
