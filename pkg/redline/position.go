package redline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/benjaminschreck/go-redline/pkg/redline/xml"
)

// Boundary addresses a character position inside a paragraph's content: the
// index of a text-carrying item and the character offset within it.
type Boundary struct {
	Index  int
	Offset int
}

// Span is a resolved half-open range [From, To) of rendered text.
type Span struct {
	From, To int
	// Start lies in the item where From falls (itemStart <= From < itemEnd)
	Start Boundary
	// End lies in the item where To falls (itemStart < To <= itemEnd)
	End Boundary
}

// renderedLen returns the rendered length of content in characters.
func renderedLen(content []xml.ParagraphContent) int {
	n := 0
	for _, item := range content {
		n += xml.ContentLen(item)
	}
	return n
}

// ResolveRange maps [start, end) of the rendered text to item boundaries.
func ResolveRange(content []xml.ParagraphContent, start, end int) (Span, error) {
	if start < 0 || end <= start {
		return Span{}, documentErrorf(CodeInvalidRange, "invalid range [%d, %d): start must be non-negative and end greater than start", start, end)
	}
	total := renderedLen(content)
	if end > total {
		return Span{}, documentErrorf(CodeRangeNotFound, "range [%d, %d) exceeds paragraph length %d", start, end, total)
	}

	span := Span{From: start, To: end, Start: Boundary{Index: -1}, End: Boundary{Index: -1}}
	pos := 0
	for i, item := range content {
		n := xml.ContentLen(item)
		if n == 0 {
			continue
		}
		if span.Start.Index < 0 && pos <= start && start < pos+n {
			span.Start = Boundary{Index: i, Offset: start - pos}
		}
		if pos < end && end <= pos+n {
			span.End = Boundary{Index: i, Offset: end - pos}
			break
		}
		pos += n
	}
	if span.Start.Index < 0 || span.End.Index < 0 {
		return Span{}, documentErrorf(CodeRangeNotFound, "range [%d, %d) not found in paragraph", start, end)
	}
	return span, nil
}

// ResolveText finds the first occurrence of text in the rendered text and
// resolves it as a range.
func ResolveText(content []xml.ParagraphContent, text string) (Span, error) {
	if text == "" {
		return Span{}, NewValidationError(CodeInvalidArgument, "text", "text to locate cannot be empty")
	}
	start, ok := findText(renderedText(content), text)
	if !ok {
		return Span{}, documentErrorf(CodeTextNotFound, "text %q not found in paragraph", text)
	}
	return ResolveRange(content, start, start+utf8.RuneCountInString(text))
}

// findText returns the character offset of the first occurrence of sub.
func findText(s, sub string) (int, bool) {
	i := strings.Index(s, sub)
	if i < 0 {
		return 0, false
	}
	return utf8.RuneCountInString(s[:i]), true
}

func renderedText(content []xml.ParagraphContent) string {
	var sb strings.Builder
	for _, item := range content {
		if text, ok := xml.ContentText(item); ok {
			sb.WriteString(text)
		}
	}
	return sb.String()
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d) start=%d:%d end=%d:%d", s.From, s.To, s.Start.Index, s.Start.Offset, s.End.Index, s.End.Offset)
}
