package xml

import (
	"encoding/xml"
	"slices"
)

// RemoveCommentMarkers drops the range markers and the reference of a
// comment from the captured element, wherever they are nested. A run left
// with nothing but its properties goes with them. It returns the number of
// markers removed.
func (r *RawXMLElement) RemoveCommentMarkers(id int) int {
	var n int
	r.Tokens, n = removeMarkerTokens(r.Tokens, id)
	return n
}

func removeMarkerTokens(tokens []xml.Token, id int) ([]xml.Token, int) {
	out := make([]xml.Token, 0, len(tokens))
	removed := 0
	for i := 0; i < len(tokens); i++ {
		start, ok := tokens[i].(xml.StartElement)
		if !ok {
			out = append(out, tokens[i])
			continue
		}
		end := matchingEnd(tokens, i)
		switch start.Name.Local {
		case w("commentRangeStart"), w("commentRangeEnd"), w("commentReference"):
			if mid, ok := idAttr(start.Attr); ok && mid == id {
				removed++
				i = end
				continue
			}
		case w("r"):
			inner, n := removeMarkerTokens(tokens[i+1:end], id)
			if n == 0 {
				break
			}
			removed += n
			if hasChildren(inner, w("rPr")) {
				out = append(out, start)
				out = append(out, inner...)
				out = append(out, tokens[end])
			}
			i = end
			continue
		}
		out = append(out, start)
	}
	return out, removed
}

// matchingEnd returns the index of the end token closing the element that
// starts at i.
func matchingEnd(tokens []xml.Token, i int) int {
	depth := 0
	for j := i; j < len(tokens); j++ {
		switch tokens[j].(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(tokens) - 1
}

// hasChildren reports whether tokens hold a top-level element other than
// those named in ignore.
func hasChildren(tokens []xml.Token, ignore ...string) bool {
	depth := 0
	for _, tok := range tokens {
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && !slices.Contains(ignore, t.Name.Local) {
				return true
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return false
}

// IsCommentMarker reports whether the element itself is a range marker or
// reference of the comment, as found between paragraphs.
func (r *RawXMLElement) IsCommentMarker(id int) bool {
	switch r.XMLName.Local {
	case w("commentRangeStart"), w("commentRangeEnd"), w("commentReference"):
		mid, ok := idAttr(r.Attrs)
		return ok && mid == id
	}
	return false
}
