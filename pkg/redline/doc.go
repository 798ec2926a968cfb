// Package redline edits Word documents (DOCX) in place: it anchors reviewer
// comments to character ranges and records edits as tracked changes, so every
// change stays visible and reversible in a word processor.
//
// # Quick Start
//
// The Editor works on files. Each call loads the document, applies one
// operation and writes the whole package back:
//
//	ed := redline.New()
//
//	info, err := ed.Read("/abs/path/report.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Paragraphs[0].Text)
//
//	_, err = ed.AddComment("/abs/path/report.docx", redline.AddCommentRequest{
//	    ParagraphIndex: 0,
//	    Text:           "Needs a citation",
//	    Anchor:         redline.TextAnchor("world"),
//	})
//
//	revs, err := ed.ReplaceText("/abs/path/report.docx", redline.ReplaceTextRequest{
//	    ParagraphIndex: 0,
//	    OldText:        "quick fox",
//	    NewText:        "lazy dog",
//	})
//
// # Coordinates
//
// Paragraphs are addressed by their 0-based position among the body's
// top-level paragraphs. Positions inside a paragraph are character offsets
// into its rendered text: the text of every run and tracked change, deleted
// text included. Comment markers and other non-text elements add nothing.
//
// # Working With Packages
//
// Package exposes the same operations in memory. Open or OpenReader decode the
// main document and the comments part; Save and WriteTo write them back.
// Parts that were not changed are copied byte for byte.
//
//	pkg, err := redline.Open(path)
//	rev, err := pkg.InsertText(0, " (draft)", nil, redline.ChangeMeta{Author: "Ann"})
//	err = pkg.Save(path, redline.SaveOptions{Verify: true})
//
// # Limitations
//
// Formatting (rPr) of a run that has to be split is not copied to its
// pieces. ReplaceText and ModifyParagraph work on the accepted text of a
// paragraph and edit it in place; comment anchors inside the rewritten
// paragraph are dropped. Field results (w:fldSimple) are opaque and do not
// count as text. Paragraphs inside tables are not addressable.
//
// # Errors
//
// Failures are *ValidationError (bad input, detected before the file is
// read) or *DocumentError. Both carry a stable Code; use ErrorCode to read it.
package redline
