package redline

import (
	"github.com/benjaminschreck/go-redline/pkg/redline/xml"
)

// Comment is a reviewer comment as stored in the comments part.
type Comment struct {
	ID       int    `json:"comment_id"`
	Text     string `json:"comment_text"`
	Author   string `json:"author"`
	Initials string `json:"initials"`
	Date     string `json:"created_at"`
	// ParagraphIndex is the paragraph holding the comment's anchor, nil when
	// no anchor for the comment exists in the body
	ParagraphIndex *int `json:"paragraph_index,omitempty"`
}

// Anchor selects the text a comment is attached to: either the first
// occurrence of Text, or the character range [Start, End).
type Anchor struct {
	Text  string
	Start *int
	End   *int
}

// Range returns an anchor over [start, end).
func Range(start, end int) Anchor {
	return Anchor{Start: &start, End: &end}
}

// TextAnchor returns an anchor over the first occurrence of text.
func TextAnchor(text string) Anchor {
	return Anchor{Text: text}
}

func (a Anchor) validate() error {
	hasText := a.Text != ""
	hasRange := a.Start != nil || a.End != nil
	switch {
	case hasText && hasRange:
		return NewValidationError(CodeMissingTextSelection, "anchor", "give either anchor text or a start/end range, not both")
	case hasText:
		return nil
	case a.Start != nil && a.End != nil:
		return nil
	case hasRange:
		return NewValidationError(CodeMissingTextSelection, "anchor", "a range anchor needs both start and end")
	default:
		return NewValidationError(CodeMissingTextSelection, "anchor", "an anchor text or a start/end range is required")
	}
}

func (a Anchor) resolve(content []xml.ParagraphContent) (Span, error) {
	if a.Text != "" {
		return ResolveText(content, a.Text)
	}
	return ResolveRange(content, *a.Start, *a.End)
}

// CommentOptions describes a comment to add.
type CommentOptions struct {
	ParagraphIndex int
	Text           string
	Anchor         Anchor
	Author         string
	Initials       string
	Date           string
}

// AddComment anchors a new comment to a range of a paragraph. The comments
// part is created, and registered in both manifests, when missing.
func (p *Package) AddComment(opts CommentOptions) (Comment, error) {
	if err := ValidateCommentText(opts.Text); err != nil {
		return Comment{}, err
	}
	if err := opts.Anchor.validate(); err != nil {
		return Comment{}, err
	}
	para, err := p.paragraph(opts.ParagraphIndex)
	if err != nil {
		return Comment{}, err
	}
	span, err := opts.Anchor.resolve(para.Content)
	if err != nil {
		return Comment{}, err
	}

	if err := p.ensureCommentsPart(); err != nil {
		return Comment{}, err
	}

	id := p.ids.Next()
	para.Content = p.splitter().InjectCommentAnchor(para.Content, span, id)
	p.Comments.Entries = append(p.Comments.Entries,
		xml.NewComment(id, opts.Author, opts.Initials, opts.Date, opts.Text))
	p.documentDirty = true
	p.commentsDirty = true

	p.log.Debug().Int("id", id).Int("paragraph", opts.ParagraphIndex).Stringer("span", span).Msg("comment added")

	index := opts.ParagraphIndex
	return Comment{
		ID:             id,
		Text:           opts.Text,
		Author:         opts.Author,
		Initials:       opts.Initials,
		Date:           opts.Date,
		ParagraphIndex: &index,
	}, nil
}

// ensureCommentsPart creates the comments part if needed and keeps the
// content-type and relationship manifests consistent with it.
func (p *Package) ensureCommentsPart() error {
	if p.Comments == nil {
		p.Comments = xml.NewComments()
		p.commentsDirty = true
		p.log.Debug().Str("part", p.commentsPart).Msg("comments part created")
	}

	types, _ := p.Part(contentTypesPart)
	types, changed, err := ensureContentTypeOverride(types, p.commentsPart, commentsContentType)
	if err != nil {
		return err
	}
	if changed {
		p.setPart(contentTypesPart, types)
	}

	rels, _ := p.Part(documentRelsPart)
	target := relativeTarget("word", p.commentsPart)
	rels, id, changed, err := ensureRelationship(rels, commentsRelationshipType, target)
	if err != nil {
		return err
	}
	if changed {
		p.setPart(documentRelsPart, rels)
		p.log.Debug().Str("id", id).Str("target", target).Msg("comments relationship added")
	}
	return nil
}

// RemoveComment deletes a comment entry together with its markers. Markers
// are removed from every paragraph, including paragraphs in tables and
// other elements that are kept as raw XML.
func (p *Package) RemoveComment(id int) error {
	if p.Comments == nil || !p.Comments.Remove(id) {
		return documentErrorf(CodeCommentNotFound, "comment %d not found", id)
	}
	removed := 0
	body := p.Document.Body
	elements := body.Elements[:0]
	for _, el := range body.Elements {
		switch v := el.(type) {
		case *xml.Paragraph:
			var n int
			v.Content, n = removeMarkers(v.Content, id)
			removed += n
		case *xml.RawXMLElement:
			if v.IsCommentMarker(id) {
				removed++
				continue
			}
			removed += v.RemoveCommentMarkers(id)
		}
		elements = append(elements, el)
	}
	body.Elements = elements
	p.documentDirty = true
	p.commentsDirty = true

	p.log.Debug().Int("id", id).Int("markers", removed).Msg("comment removed")
	return nil
}

// removeMarkers drops every marker of the comment, including markers that
// ended up inside tracked changes, hyperlinks or raw inline elements.
func removeMarkers(content []xml.ParagraphContent, id int) ([]xml.ParagraphContent, int) {
	out := content[:0]
	removed := 0
	for _, item := range content {
		if mid, ok := markerID(item); ok && mid == id {
			removed++
			continue
		}
		var n int
		switch v := item.(type) {
		case *xml.TrackedChange:
			v.Content, n = removeMarkers(v.Content, id)
		case *xml.Container:
			v.Content, n = removeMarkers(v.Content, id)
		case *xml.RawXMLElement:
			n = v.RemoveCommentMarkers(id)
		}
		removed += n
		out = append(out, item)
	}
	return out, removed
}

// ListComments returns the stored comments in part order. The paragraph index
// of each comment is found by looking up its markers in the body.
func (p *Package) ListComments() []Comment {
	if p.Comments == nil {
		return nil
	}
	anchors := p.commentParagraphs()
	out := make([]Comment, 0, len(p.Comments.Entries))
	for _, c := range p.Comments.Entries {
		comment := Comment{
			ID:       c.ID,
			Text:     c.GetText(),
			Author:   c.Author,
			Initials: c.Initials,
			Date:     c.Date,
		}
		if idx, ok := anchors[c.ID]; ok {
			comment.ParagraphIndex = &idx
		}
		out = append(out, comment)
	}
	return out
}

// commentParagraphs maps comment ids to the first paragraph holding one of
// their markers.
func (p *Package) commentParagraphs() map[int]int {
	out := make(map[int]int)
	for i, para := range p.Paragraphs() {
		xml.Walk(para.Content, func(item xml.ParagraphContent) {
			if id, ok := markerID(item); ok {
				if _, seen := out[id]; !seen {
					out[id] = i
				}
			}
		})
	}
	return out
}
