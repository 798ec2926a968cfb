// Package xml provides the WordprocessingML model used by redline.
//
// DOCX files are ZIP archives of XML parts. This package decodes the two parts
// redline edits, the main document (word/document.xml) and the comments part
// (word/comments.xml), into an ordered, typed tree and encodes it back.
//
// # Structure Organization
//
//   - types.go: Core interfaces (BodyElement, ParagraphContent, RunContent) and RawXMLElement
//   - decode.go: The token-level parser shared by both parts
//   - document.go: Top-level Document and Body structures
//   - paragraph.go: Paragraph and its properties
//   - run.go: Runs, text, tracked changes (w:ins, w:del) and comment markers
//   - comments.go: The comments part
//
// # Key Concepts
//
// ParagraphContent is a closed set: *Run, *TrackedChange, *CommentRangeStart,
// *CommentRangeEnd, *CommentReference and *RawXMLElement. Anything the model
// does not interpret (tables, bookmarks, hyperlinks, drawings, section
// properties) is kept as a RawXMLElement and written back unchanged.
//
// The rendered text of a paragraph is the text of its runs and tracked
// changes in order, deleted text included. Character offsets used across
// redline are counted in that text, in runes.
//
// # XML Namespaces
//
// Parts are decoded with encoding/xml's RawToken, so element and attribute
// names keep the prefix they were written with and are stored flat
// ("w:p"). The main namespace must be bound to the "w" prefix on the root
// element; every element this package creates uses it.
//
// Example of building a paragraph with a tracked insertion:
//
//	para := xml.NewParagraph("Hello ")
//	para.Content = append(para.Content,
//	    xml.NewTrackedChange(xml.Inserted, 1, "Reviewer", "2024-01-01T00:00:00Z", "world"))
package xml
