package xml

import (
	"encoding/xml"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Run represents a run of text (w:r). Properties and non-text children are
// kept verbatim.
type Run struct {
	Attrs      []xml.Attr
	Properties *RawXMLElement
	Content    []RunContent
}

// isParagraphContent implements the ParagraphContent interface
func (r *Run) isParagraphContent() {}

// NewTextRun creates an unformatted run holding text.
func NewTextRun(text string) *Run {
	return &Run{Content: []RunContent{&Text{Value: text}}}
}

// GetText returns the text content of a run
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, c := range r.Content {
		if t, ok := c.(*Text); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}

// Len returns the run's text length in characters.
func (r *Run) Len() int {
	return utf8.RuneCountInString(r.GetText())
}

// Split divides the run at a character offset. Non-text children that sit
// exactly on the offset go to the left piece when zeroWidthLeft is set.
// A piece without any content is returned as nil.
//
// The pieces do not inherit the run's properties.
func (r *Run) Split(offset int, zeroWidthLeft bool) (left, right *Run) {
	var lc, rc []RunContent
	pos := 0
	for _, c := range r.Content {
		t, ok := c.(*Text)
		if !ok {
			if pos < offset || (pos == offset && zeroWidthLeft) {
				lc = append(lc, c)
			} else {
				rc = append(rc, c)
			}
			continue
		}
		n := utf8.RuneCountInString(t.Value)
		switch {
		case pos+n <= offset:
			lc = append(lc, c)
		case pos >= offset:
			rc = append(rc, c)
		default:
			head, tail := splitRunes(t.Value, offset-pos)
			lc = append(lc, &Text{Value: head, Preserve: t.Preserve})
			rc = append(rc, &Text{Value: tail, Preserve: t.Preserve})
		}
		pos += n
	}
	if len(lc) > 0 {
		left = &Run{Content: lc}
	}
	if len(rc) > 0 {
		right = &Run{Content: rc}
	}
	return left, right
}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r *Run) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return r.encode(e, false)
}

// encode writes the run; inside a deletion text is written as w:delText.
func (r *Run) encode(e *xml.Encoder, deleted bool) error {
	start := xml.StartElement{Name: xml.Name{Local: w("r")}, Attr: r.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := r.Properties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}

	for _, c := range r.Content {
		switch v := c.(type) {
		case *Text:
			if err := v.encode(e, deleted); err != nil {
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

// Text represents text content. It is written as w:t, or w:delText when the
// enclosing run belongs to a deletion.
type Text struct {
	Value    string
	Preserve bool
}

func (t *Text) isRunContent() {}

func (t *Text) encode(e *xml.Encoder, deleted bool) error {
	name := w("t")
	if deleted {
		name = w("delText")
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if t.Preserve || needsPreserve(t.Value) {
		start.Attr = append(start.Attr, attr("xml:space", "preserve"))
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if t.Value != "" {
		if err := e.EncodeToken(xml.CharData(t.Value)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func needsPreserve(s string) bool {
	return s != strings.TrimSpace(s)
}

// splitRunes splits s after n characters.
func splitRunes(s string, n int) (string, string) {
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx], s[idx:]
		}
		i++
	}
	return s, ""
}

// ChangeKind distinguishes tracked insertions from tracked deletions.
type ChangeKind int

const (
	Inserted ChangeKind = iota
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "insert"
	case Deleted:
		return "delete"
	default:
		return "unknown"
	}
}

// TrackedChange is a w:ins or w:del wrapper around runs.
type TrackedChange struct {
	Kind    ChangeKind
	ID      int
	Author  string
	Date    string
	Attrs   []xml.Attr
	Content []ParagraphContent
}

func (c *TrackedChange) isParagraphContent() {}

// NewTrackedChange wraps text in a single unformatted run.
func NewTrackedChange(kind ChangeKind, id int, author, date, text string) *TrackedChange {
	return &TrackedChange{
		Kind:    kind,
		ID:      id,
		Author:  author,
		Date:    date,
		Content: []ParagraphContent{NewTextRun(text)},
	}
}

// GetText returns the text carried by the change, deleted or not.
func (c *TrackedChange) GetText() string {
	var sb strings.Builder
	for _, item := range c.Content {
		if text, ok := ContentText(item); ok {
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// MarshalXML writes w:ins or w:del with its runs.
func (c *TrackedChange) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	name := w("ins")
	if c.Kind == Deleted {
		name = w("del")
	}
	attrs := append([]xml.Attr(nil), c.Attrs...)
	attrs = setAttr(attrs, "w:id", strconv.Itoa(c.ID))
	attrs = setAttr(attrs, "w:author", c.Author)
	if c.Date != "" {
		attrs = setAttr(attrs, "w:date", c.Date)
	}

	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, item := range c.Content {
		if err := encodeContent(e, item, c.Kind == Deleted); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// CommentRangeStart marks where a comment's anchored range begins.
type CommentRangeStart struct {
	ID int
}

func (m *CommentRangeStart) isParagraphContent() {}

func (m *CommentRangeStart) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return encodeMarker(e, w("commentRangeStart"), m.ID)
}

// CommentRangeEnd marks where a comment's anchored range ends.
type CommentRangeEnd struct {
	ID int
}

func (m *CommentRangeEnd) isParagraphContent() {}

func (m *CommentRangeEnd) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return encodeMarker(e, w("commentRangeEnd"), m.ID)
}

// CommentReference is the run carrying w:commentReference.
type CommentReference struct {
	ID         int
	Attrs      []xml.Attr
	Properties *RawXMLElement
}

func (m *CommentReference) isParagraphContent() {}

// NewCommentReference creates a reference run styled as CommentReference.
func NewCommentReference(id int) *CommentReference {
	return &CommentReference{ID: id, Properties: runStyle("CommentReference")}
}

func (m *CommentReference) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: w("r")}, Attr: m.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if m.Properties != nil {
		if err := m.Properties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	if err := encodeMarker(e, w("commentReference"), m.ID); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func encodeMarker(e *xml.Encoder, name string, id int) error {
	start := xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{attr("w:id", strconv.Itoa(id))},
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func runStyle(style string) *RawXMLElement {
	return Element(w("rPr"), nil, Element(w("rStyle"), []string{"w:val", style}))
}
