package redline

import (
	"github.com/benjaminschreck/go-redline/pkg/redline/xml"
)

// splitter cuts paragraph content at character offsets. Splitting a tracked
// change gives the right-hand piece a fresh id so ids stay unique.
//
// Run properties (rPr) of a split run are not carried over to its pieces.
type splitter struct {
	ids *idAllocator
}

// splitItem divides one item at a character offset. An offset on the item's
// edge leaves it whole; otherwise non-text children sitting exactly on the
// offset go left when zeroWidthLeft is set. Either piece may be nil.
func (s splitter) splitItem(item xml.ParagraphContent, offset int, zeroWidthLeft bool) (left, right xml.ParagraphContent) {
	n := xml.ContentLen(item)
	if offset <= 0 {
		return nil, item
	}
	if offset >= n {
		return item, nil
	}

	switch v := item.(type) {
	case *xml.Run:
		l, r := v.Split(offset, zeroWidthLeft)
		// avoid typed nil interfaces
		if l != nil {
			left = l
		}
		if r != nil {
			right = r
		}
	case *xml.TrackedChange:
		lc, rc := s.splitContent(v.Content, offset, zeroWidthLeft)
		if len(lc) > 0 {
			left = &xml.TrackedChange{Kind: v.Kind, ID: v.ID, Author: v.Author, Date: v.Date, Attrs: v.Attrs, Content: lc}
		}
		if len(rc) > 0 {
			id := v.ID
			if left != nil {
				id = s.ids.Next()
			}
			right = &xml.TrackedChange{Kind: v.Kind, ID: id, Author: v.Author, Date: v.Date, Attrs: v.Attrs, Content: rc}
		}
	case *xml.Container:
		lc, rc := s.splitContent(v.Content, offset, zeroWidthLeft)
		if len(lc) > 0 {
			left = v.Clone(lc)
		}
		if len(rc) > 0 {
			right = v.Clone(rc)
		}
	default:
		return item, nil
	}
	return left, right
}

// splitContent divides a content sequence at a character offset. Items
// that end on the offset go left and items that start on it go right;
// zero-width items on the offset follow zeroWidthLeft.
func (s splitter) splitContent(content []xml.ParagraphContent, offset int, zeroWidthLeft bool) (left, right []xml.ParagraphContent) {
	pos := 0
	for _, item := range content {
		n := xml.ContentLen(item)
		switch {
		case n == 0:
			if pos < offset || (pos == offset && zeroWidthLeft) {
				left = append(left, item)
			} else {
				right = append(right, item)
			}
		case pos+n <= offset:
			left = append(left, item)
		case pos >= offset:
			right = append(right, item)
		default:
			l, r := s.splitItem(item, offset-pos, zeroWidthLeft)
			if l != nil {
				left = append(left, l)
			}
			if r != nil {
				right = append(right, r)
			}
		}
		pos += n
	}
	return left, right
}

// segments cuts content into the parts before, inside and after a resolved
// span. Items between the two boundary items pass through unchanged, and
// zero-width items on either edge stay outside the span.
func (s splitter) segments(content []xml.ParagraphContent, span Span) (left, middle, right []xml.ParagraphContent) {
	si, ei := span.Start.Index, span.End.Index

	left = append(left, content[:si]...)
	if si == ei {
		l, rest := s.splitItem(content[si], span.Start.Offset, true)
		m, r := s.splitItem(rest, span.End.Offset-span.Start.Offset, false)
		left = appendItem(left, l)
		middle = appendItem(middle, m)
		right = appendItem(right, r)
	} else {
		l, m := s.splitItem(content[si], span.Start.Offset, true)
		left = appendItem(left, l)
		middle = appendItem(middle, m)
		middle = append(middle, content[si+1:ei]...)
		m, r := s.splitItem(content[ei], span.End.Offset, false)
		middle = appendItem(middle, m)
		right = appendItem(right, r)
	}
	right = append(right, content[ei+1:]...)
	return left, middle, right
}

func appendItem(items []xml.ParagraphContent, item xml.ParagraphContent) []xml.ParagraphContent {
	if item == nil {
		return items
	}
	return append(items, item)
}

// InjectCommentAnchor wraps the span in comment range markers and places the
// reference run right after the range end.
func (s splitter) InjectCommentAnchor(content []xml.ParagraphContent, span Span, id int) []xml.ParagraphContent {
	left, middle, right := s.segments(content, span)

	out := make([]xml.ParagraphContent, 0, len(content)+5)
	out = append(out, left...)
	out = append(out, &xml.CommentRangeStart{ID: id})
	out = append(out, middle...)
	out = append(out, &xml.CommentRangeEnd{ID: id}, xml.NewCommentReference(id))
	out = append(out, right...)
	return out
}

// InsertAt splices change in at a character offset. Zero-width items on the
// offset stay before the insertion. An offset strictly inside a hyperlink
// or other container puts the insertion inside it.
func (s splitter) InsertAt(content []xml.ParagraphContent, offset int, change *xml.TrackedChange) []xml.ParagraphContent {
	pos := 0
	for i, item := range content {
		n := xml.ContentLen(item)
		if c, ok := item.(*xml.Container); ok && pos < offset && offset < pos+n {
			out := make([]xml.ParagraphContent, 0, len(content))
			out = append(out, content[:i]...)
			out = append(out, c.Clone(s.InsertAt(c.Content, offset-pos, change)))
			return append(out, content[i+1:]...)
		}
		pos += n
	}

	left, right := s.splitContent(content, offset, true)

	out := make([]xml.ParagraphContent, 0, len(content)+2)
	out = append(out, left...)
	out = append(out, change)
	out = append(out, right...)
	return out
}

// WrapDeleted moves the span into change, which must be a deletion. Spans
// that overlap an existing tracked change are rejected.
//
// A deletion may not contain a hyperlink, so the part of the span inside a
// container is wrapped inside it. When the span runs across a container
// edge, each side gets its own deletion; the pieces after the first get
// fresh ids.
func (s splitter) WrapDeleted(content []xml.ParagraphContent, span Span, change *xml.TrackedChange) ([]xml.ParagraphContent, error) {
	for i := span.Start.Index; i <= span.End.Index; i++ {
		if c, ok := content[i].(*xml.TrackedChange); ok {
			return nil, documentErrorf(CodeRevisionConflict,
				"range [%d, %d) overlaps tracked %s %d", span.From, span.To, c.Kind, c.ID)
		}
	}

	if c, ok := content[span.Start.Index].(*xml.Container); ok && span.Start.Index == span.End.Index {
		inner, err := ResolveRange(c.Content, span.Start.Offset, span.End.Offset)
		if err != nil {
			return nil, err
		}
		inner.From, inner.To = span.From, span.To
		wrapped, err := s.WrapDeleted(c.Content, inner, change)
		if err != nil {
			return nil, err
		}
		out := make([]xml.ParagraphContent, 0, len(content))
		out = append(out, content[:span.Start.Index]...)
		out = append(out, c.Clone(wrapped))
		return append(out, content[span.Start.Index+1:]...), nil
	}

	left, middle, right := s.segments(content, span)
	for _, item := range middle {
		if c := firstChange(item); c != nil {
			return nil, documentErrorf(CodeRevisionConflict,
				"range [%d, %d) overlaps tracked %s %d", span.From, span.To, c.Kind, c.ID)
		}
	}

	out := make([]xml.ParagraphContent, 0, len(content)+2)
	out = append(out, left...)
	out = append(out, s.wrapAll(middle, change)...)
	out = append(out, right...)
	return out, nil
}

// wrapAll places content in deletions, descending into containers. The
// first deletion is change itself; later ones copy its author and date.
func (s splitter) wrapAll(content []xml.ParagraphContent, change *xml.TrackedChange) []xml.ParagraphContent {
	var (
		out     []xml.ParagraphContent
		current *xml.TrackedChange
		used    bool
	)
	next := func() *xml.TrackedChange {
		if !used {
			used = true
			return change
		}
		return &xml.TrackedChange{Kind: xml.Deleted, ID: s.ids.Next(), Author: change.Author, Date: change.Date}
	}
	for _, item := range content {
		if c, ok := item.(*xml.Container); ok {
			current = nil
			inner := next()
			inner.Content = c.Content
			out = append(out, c.Clone([]xml.ParagraphContent{inner}))
			continue
		}
		if current == nil {
			current = next()
			out = append(out, current)
		}
		current.Content = append(current.Content, item)
	}
	return out
}

// firstChange returns the first tracked change at or below item.
func firstChange(item xml.ParagraphContent) *xml.TrackedChange {
	var found *xml.TrackedChange
	xml.Walk([]xml.ParagraphContent{item}, func(it xml.ParagraphContent) {
		if c, ok := it.(*xml.TrackedChange); ok && found == nil {
			found = c
		}
	})
	return found
}
