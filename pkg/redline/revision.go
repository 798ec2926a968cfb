package redline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/benjaminschreck/go-redline/pkg/redline/diff"
	"github.com/benjaminschreck/go-redline/pkg/redline/xml"
)

// Revision is a tracked insertion or deletion as found in the body.
type Revision struct {
	ID             int    `json:"id"`
	Type           string `json:"type"`
	Text           string `json:"text"`
	Author         string `json:"author"`
	Date           string `json:"date"`
	ParagraphIndex int    `json:"paragraph_index"`
}

// ChangeMeta is the identity recorded on new tracked changes.
type ChangeMeta struct {
	Author string
	Date   string
}

func newRevision(c *xml.TrackedChange, paragraph int) Revision {
	return Revision{
		ID:             c.ID,
		Type:           c.Kind.String(),
		Text:           c.GetText(),
		Author:         c.Author,
		Date:           c.Date,
		ParagraphIndex: paragraph,
	}
}

// Paragraphs returns the addressable paragraphs of the body.
func (p *Package) Paragraphs() []*xml.Paragraph {
	return p.Document.Body.Paragraphs()
}

// paragraph returns the paragraph at index.
func (p *Package) paragraph(index int) (*xml.Paragraph, error) {
	if err := ValidateParagraphIndex(index); err != nil {
		return nil, err
	}
	paras := p.Paragraphs()
	if index >= len(paras) {
		return nil, documentErrorf(CodeParagraphNotFound,
			"paragraph index %d is out of range; document has %d paragraphs", index, len(paras))
	}
	return paras[index], nil
}

func (p *Package) splitter() splitter {
	return splitter{ids: p.ids}
}

// Revisions scans every paragraph for tracked changes, including changes
// nested in hyperlinks.
func (p *Package) Revisions() []Revision {
	var out []Revision
	for i, para := range p.Paragraphs() {
		xml.Walk(para.Content, func(item xml.ParagraphContent) {
			if c, ok := item.(*xml.TrackedChange); ok {
				out = append(out, newRevision(c, i))
			}
		})
	}
	return out
}

// InsertText inserts text as a tracked insertion at a character offset of
// the paragraph, or at its end when position is nil.
func (p *Package) InsertText(index int, text string, position *int, meta ChangeMeta) (Revision, error) {
	if text == "" {
		return Revision{}, NewValidationError(CodeInvalidArgument, "text", "text to insert cannot be empty")
	}
	para, err := p.paragraph(index)
	if err != nil {
		return Revision{}, err
	}

	total := renderedLen(para.Content)
	offset := total
	if position != nil {
		offset = *position
	}
	if offset < 0 {
		return Revision{}, documentErrorf(CodeInvalidRange, "position %d must be non-negative", offset)
	}
	if offset > total {
		return Revision{}, documentErrorf(CodeRangeNotFound, "position %d exceeds paragraph length %d", offset, total)
	}

	change := xml.NewTrackedChange(xml.Inserted, p.ids.Next(), meta.Author, meta.Date, text)
	para.Content = p.splitter().InsertAt(para.Content, offset, change)
	p.documentDirty = true

	p.log.Debug().Int("paragraph", index).Int("position", offset).Int("id", change.ID).Msg("text inserted")
	return newRevision(change, index), nil
}

// DeleteText marks the first occurrence of text in the paragraph as a
// tracked deletion. A deletion crossing a hyperlink edge is stored as one
// change per side; the returned revision is the first and carries the whole
// text.
func (p *Package) DeleteText(index int, text string, meta ChangeMeta) (Revision, error) {
	para, err := p.paragraph(index)
	if err != nil {
		return Revision{}, err
	}
	span, err := ResolveText(para.Content, text)
	if err != nil {
		return Revision{}, err
	}

	change := &xml.TrackedChange{Kind: xml.Deleted, ID: p.ids.Next(), Author: meta.Author, Date: meta.Date}
	content, err := p.splitter().WrapDeleted(para.Content, span, change)
	if err != nil {
		return Revision{}, err
	}
	para.Content = content
	p.documentDirty = true

	p.log.Debug().Int("paragraph", index).Stringer("span", span).Int("id", change.ID).Msg("text deleted")
	rev := newRevision(change, index)
	rev.Text = text
	return rev, nil
}

// ReplaceText replaces the first occurrence of oldText in the accepted text
// with newText. The paragraph's accepted text is diffed against the result
// and the edit script applied in place.
func (p *Package) ReplaceText(index int, oldText, newText string, strategy diff.Strategy, meta ChangeMeta) ([]Revision, error) {
	if oldText == "" {
		return nil, NewValidationError(CodeInvalidArgument, "old_text", "text to replace cannot be empty")
	}
	para, err := p.paragraph(index)
	if err != nil {
		return nil, err
	}
	current := para.AcceptedText()
	i := strings.Index(current, oldText)
	if i < 0 {
		return nil, documentErrorf(CodeTextNotFound, "text %q not found in paragraph %d", oldText, index)
	}
	updated := current[:i] + newText + current[i+len(oldText):]
	return p.rewrite(index, current, updated, strategy, meta)
}

// ModifyParagraph replaces the whole accepted text of the paragraph.
func (p *Package) ModifyParagraph(index int, newText string, strategy diff.Strategy, meta ChangeMeta) ([]Revision, error) {
	para, err := p.paragraph(index)
	if err != nil {
		return nil, err
	}
	return p.rewrite(index, para.AcceptedText(), newText, strategy, meta)
}

func (p *Package) rewrite(index int, current, updated string, strategy diff.Strategy, meta ChangeMeta) ([]Revision, error) {
	ops, err := diff.Compute(strategy, current, updated)
	if err != nil {
		return nil, NewValidationError(CodeInvalidArgument, "strategy", err.Error())
	}
	return p.ApplyDiff(index, ops, meta)
}

// ApplyDiff applies an edit script over the paragraph's accepted text.
// Equal stretches keep their original items; deleted stretches are wrapped
// in new deletions, or withdrawn where they were tracked insertions; inserted
// text becomes new insertions. Existing deletions, bookmarks and other
// zero-width items stay where they are. Comment markers in the paragraph are
// dropped.
func (p *Package) ApplyDiff(index int, ops []diff.Operation, meta ChangeMeta) ([]Revision, error) {
	para, err := p.paragraph(index)
	if err != nil {
		return nil, err
	}
	if src := diff.Source(ops); src != para.AcceptedText() {
		return nil, NewValidationError(CodeInvalidArgument, "ops",
			fmt.Sprintf("edit script does not match paragraph %d text", index))
	}

	rw := newRewriter(p.splitter(), ops, meta)
	content := rw.walk(para.Content, false)
	content = rw.flush(content)

	if ids := uniqueInts(rw.dropped); len(ids) > 0 {
		p.log.Warn().Int("paragraph", index).Ints("comments", ids).
			Msg("paragraph rewritten; comment anchors in it were discarded")
	}

	revisions := make([]Revision, 0, len(rw.created))
	for _, c := range rw.created {
		revisions = append(revisions, newRevision(c, index))
	}

	para.Content = content
	p.documentDirty = true
	p.log.Debug().Int("paragraph", index).Int("revisions", len(revisions)).
		Int("withdrawn", rw.withdrawn).Msg("paragraph rewritten")
	return revisions, nil
}

// step is an edit operation measured in characters.
type step struct {
	kind diff.Kind
	n    int
	text string
}

// rewriter walks paragraph content alongside an edit script over its
// accepted text. Deleted text has no width in that coordinate space, so
// existing deletions pass through untouched.
type rewriter struct {
	sp    splitter
	steps []step
	meta  ChangeMeta

	created []*xml.TrackedChange
	fresh   map[*xml.TrackedChange]bool
	dropped []int
	// withdrawn counts characters of earlier insertions removed by the script
	withdrawn int
	// deletion is the open deletion that adjacent deleted pieces join
	deletion *xml.TrackedChange
}

func newRewriter(sp splitter, ops []diff.Operation, meta ChangeMeta) *rewriter {
	rw := &rewriter{sp: sp, meta: meta, fresh: make(map[*xml.TrackedChange]bool)}
	for _, op := range ops {
		if op.Text == "" {
			continue
		}
		rw.steps = append(rw.steps, step{kind: op.Kind, n: utf8.RuneCountInString(op.Text), text: op.Text})
	}
	return rw
}

func (rw *rewriter) newChange(kind xml.ChangeKind, text string) *xml.TrackedChange {
	c := xml.NewTrackedChange(kind, rw.sp.ids.Next(), rw.meta.Author, rw.meta.Date, text)
	rw.created = append(rw.created, c)
	return c
}

// flush emits the insertions due at the current position.
func (rw *rewriter) flush(out []xml.ParagraphContent) []xml.ParagraphContent {
	for len(rw.steps) > 0 && rw.steps[0].kind == diff.Insert {
		c := rw.newChange(xml.Inserted, rw.steps[0].text)
		rw.fresh[c] = true
		out = append(out, c)
		rw.steps = rw.steps[1:]
		rw.deletion = nil
	}
	return out
}

// walk rewrites one content sequence. Inside an insertion, deleted text is
// withdrawn instead of wrapped.
func (rw *rewriter) walk(content []xml.ParagraphContent, inInsertion bool) []xml.ParagraphContent {
	var out []xml.ParagraphContent
	for _, item := range content {
		if id, ok := markerID(item); ok {
			rw.dropped = append(rw.dropped, id)
			continue
		}
		if acceptedLen(item) == 0 {
			out = append(out, rw.stripMarkers(item))
			rw.deletion = nil
			continue
		}

		out = rw.flush(out)
		switch v := item.(type) {
		case *xml.Run:
			out = rw.run(out, v, inInsertion)
		case *xml.Container:
			out = append(out, v.Clone(rw.walk(v.Content, inInsertion)))
			rw.deletion = nil
		case *xml.TrackedChange:
			out = append(out, rw.insertion(v)...)
			rw.deletion = nil
		}
	}
	return out
}

// run consumes the run's text step by step, splitting it where a step ends.
func (rw *rewriter) run(out []xml.ParagraphContent, r *xml.Run, inInsertion bool) []xml.ParagraphContent {
	rest := r
	for rest != nil && len(rw.steps) > 0 {
		out = rw.flush(out)
		if len(rw.steps) == 0 {
			break
		}
		st := &rw.steps[0]
		kind := st.kind
		piece := rest
		if n := rest.Len(); st.n < n {
			piece, rest = rest.Split(st.n, true)
			st.n = 0
		} else {
			st.n -= n
			rest = nil
		}
		if st.n == 0 {
			rw.steps = rw.steps[1:]
		}

		switch {
		case kind == diff.Equal:
			out = append(out, piece)
			rw.deletion = nil
		case inInsertion:
			rw.withdrawn += piece.Len()
		default:
			if rw.deletion == nil {
				rw.deletion = &xml.TrackedChange{Kind: xml.Deleted, ID: rw.sp.ids.Next(), Author: rw.meta.Author, Date: rw.meta.Date}
				rw.created = append(rw.created, rw.deletion)
				out = append(out, rw.deletion)
			}
			rw.deletion.Content = append(rw.deletion.Content, piece)
		}
	}
	if rest != nil {
		out = append(out, rest)
	}
	return out
}

// insertion rewrites an existing insertion. New insertions that land inside
// it split it, since insertions do not nest; pieces after the first get
// fresh ids. Pieces left without text are unwrapped.
func (rw *rewriter) insertion(c *xml.TrackedChange) []xml.ParagraphContent {
	inner := rw.walk(c.Content, true)

	var (
		out     []xml.ParagraphContent
		segment []xml.ParagraphContent
		kept    bool
	)
	closeSegment := func() {
		if xml.AcceptedText(segment) == "" {
			out = append(out, segment...)
		} else {
			id := c.ID
			if kept {
				id = rw.sp.ids.Next()
			}
			kept = true
			out = append(out, &xml.TrackedChange{Kind: c.Kind, ID: id, Author: c.Author, Date: c.Date, Attrs: c.Attrs, Content: segment})
		}
		segment = nil
	}
	for _, item := range inner {
		if tc, ok := item.(*xml.TrackedChange); ok && rw.fresh[tc] {
			closeSegment()
			out = append(out, tc)
			continue
		}
		segment = append(segment, item)
	}
	closeSegment()
	return out
}

// stripMarkers removes comment markers nested in a zero-width item.
func (rw *rewriter) stripMarkers(item xml.ParagraphContent) xml.ParagraphContent {
	switch v := item.(type) {
	case *xml.TrackedChange:
		v.Content = rw.dropMarkers(v.Content)
	case *xml.Container:
		v.Content = rw.dropMarkers(v.Content)
	}
	return item
}

func (rw *rewriter) dropMarkers(content []xml.ParagraphContent) []xml.ParagraphContent {
	out := content[:0]
	for _, item := range content {
		if id, ok := markerID(item); ok {
			rw.dropped = append(rw.dropped, id)
			continue
		}
		out = append(out, rw.stripMarkers(item))
	}
	return out
}

// acceptedLen returns the accepted-text length of an item.
func acceptedLen(item xml.ParagraphContent) int {
	return utf8.RuneCountInString(xml.AcceptedText([]xml.ParagraphContent{item}))
}

// markerID returns the comment id of a comment marker.
func markerID(item xml.ParagraphContent) (int, bool) {
	switch v := item.(type) {
	case *xml.CommentRangeStart:
		return v.ID, true
	case *xml.CommentRangeEnd:
		return v.ID, true
	case *xml.CommentReference:
		return v.ID, true
	}
	return 0, false
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	var out []int
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
