package xml

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Namespace URIs declared by parts this package creates.
const (
	NamespaceMain          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// mainPrefix is the prefix every decoded part must bind to NamespaceMain.
const mainPrefix = "w"

// BodyElement represents any element that can appear in a document body
type BodyElement interface {
	isBodyElement()
}

// ParagraphContent represents any content that can appear in a paragraph.
// The concrete types are *Run, *TrackedChange, *CommentRangeStart,
// *CommentRangeEnd, *CommentReference and *RawXMLElement.
type ParagraphContent interface {
	isParagraphContent()
}

// RunContent represents a child of a run: *Text or *RawXMLElement.
type RunContent interface {
	isRunContent()
}

// RawXMLElement represents a raw XML element that we preserve but don't parse.
// Names are stored flat ("w:tbl") so the element encodes back with the
// prefixes it was read with.
type RawXMLElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr
	Tokens  []xml.Token
}

func (r *RawXMLElement) isBodyElement()      {}
func (r *RawXMLElement) isParagraphContent() {}
func (r *RawXMLElement) isRunContent()       {}

// Name returns the qualified element name, e.g. "w:bookmarkStart".
func (r *RawXMLElement) Name() string {
	return r.XMLName.Local
}

// MarshalXML replays the captured token stream
func (r *RawXMLElement) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: r.XMLName, Attr: r.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, tok := range r.Tokens {
		if err := e.EncodeToken(tok); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Element builds a RawXMLElement from a qualified name, attribute pairs
// (name, value, name, value...) and child elements.
func Element(name string, attrs []string, children ...*RawXMLElement) *RawXMLElement {
	raw := &RawXMLElement{XMLName: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		raw.Attrs = append(raw.Attrs, attr(attrs[i], attrs[i+1]))
	}
	for _, child := range children {
		raw.Tokens = append(raw.Tokens, child.tokens()...)
	}
	return raw
}

// tokens returns the element including its own start and end tokens.
func (r *RawXMLElement) tokens() []xml.Token {
	start := xml.StartElement{Name: r.XMLName, Attr: r.Attrs}
	out := make([]xml.Token, 0, len(r.Tokens)+2)
	out = append(out, start)
	out = append(out, r.Tokens...)
	return append(out, start.End())
}

// attrValue looks up an attribute by qualified name.
func (r *RawXMLElement) attrValue(name string) string {
	return attrValue(r.Attrs, name)
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// setAttr replaces or appends an attribute, keeping the existing order.
func setAttr(attrs []xml.Attr, name, value string) []xml.Attr {
	for i := range attrs {
		if attrs[i].Name.Local == name {
			attrs[i].Value = value
			return attrs
		}
	}
	return append(attrs, attr(name, value))
}

func idAttr(attrs []xml.Attr) (int, bool) {
	v := attrValue(attrs, "w:id")
	if v == "" {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return id, true
}

// qualified joins a raw prefix and local name ("w", "p" -> "w:p").
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// w returns the qualified name of an element in the main namespace.
func w(local string) string {
	return mainPrefix + ":" + local
}
