package redline

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	pkg := openTestPackage(t, para("Hello world"))

	c, err := pkg.AddComment(CommentOptions{
		ParagraphIndex: 0,
		Text:           "Nice",
		Anchor:         TextAnchor("world"),
		Author:         "Ann",
		Initials:       "A",
		Date:           "2024-05-01T10:00:00Z",
	})
	require.NoError(t, err)
	require.NotNil(t, c.ParagraphIndex)
	assert.Equal(t, 0, *c.ParagraphIndex)

	p := pkg.Paragraphs()[0]
	want := []string{"r:Hello ", "start#0", "r:world", "end#0", "ref#0"}
	assert.Equal(t, want, describe(p.Content))
	assert.Equal(t, "Hello world", p.GetText())

	reloaded := reload(t, pkg)
	assert.Equal(t, want, describe(reloaded.Paragraphs()[0].Content))

	comments := reloaded.ListComments()
	require.Len(t, comments, 1)
	assert.Equal(t, c.ID, comments[0].ID)
	assert.Equal(t, "Nice", comments[0].Text)
	assert.Equal(t, "Ann", comments[0].Author)
	assert.Equal(t, "A", comments[0].Initials)
	assert.Equal(t, "2024-05-01T10:00:00Z", comments[0].Date)
	require.NotNil(t, comments[0].ParagraphIndex)
	assert.Equal(t, 0, *comments[0].ParagraphIndex)
}

func TestAddCommentByRange(t *testing.T) {
	pkg := openTestPackage(t, para("First")+para("Second paragraph"))

	_, err := pkg.AddComment(CommentOptions{ParagraphIndex: 1, Text: "range", Anchor: Range(7, 16)})
	require.NoError(t, err)

	assert.Equal(t, []string{"r:Second ", "start#0", "r:paragraph", "end#0", "ref#0"}, describe(pkg.Paragraphs()[1].Content))
	assert.Equal(t, []string{"r:First"}, describe(pkg.Paragraphs()[0].Content))
}

func TestAddCommentMultiline(t *testing.T) {
	pkg := openTestPackage(t, para("Hello"))

	_, err := pkg.AddComment(CommentOptions{ParagraphIndex: 0, Text: "line one\nline two", Anchor: Range(0, 5)})
	require.NoError(t, err)

	comments := reload(t, pkg).ListComments()
	require.Len(t, comments, 1)
	assert.Equal(t, "line one\nline two", comments[0].Text)
}

func TestAddCommentErrors(t *testing.T) {
	tests := []struct {
		name  string
		opts  CommentOptions
		code  Code
		valid bool
	}{
		{
			name: "text not found",
			opts: CommentOptions{Text: "c", Anchor: TextAnchor("xyz")},
			code: CodeTextNotFound,
		},
		{
			name: "reversed range",
			opts: CommentOptions{Text: "c", Anchor: Range(5, 3)},
			code: CodeInvalidRange,
		},
		{
			name: "range past the end",
			opts: CommentOptions{Text: "c", Anchor: Range(0, 100)},
			code: CodeRangeNotFound,
		},
		{
			name: "paragraph out of range",
			opts: CommentOptions{ParagraphIndex: 4, Text: "c", Anchor: TextAnchor("Hello")},
			code: CodeParagraphNotFound,
		},
		{
			name:  "no anchor",
			opts:  CommentOptions{Text: "c"},
			code:  CodeMissingTextSelection,
			valid: true,
		},
		{
			name:  "both anchors",
			opts:  CommentOptions{Text: "c", Anchor: Anchor{Text: "Hello", Start: Range(0, 1).Start, End: Range(0, 1).End}},
			code:  CodeMissingTextSelection,
			valid: true,
		},
		{
			name:  "start without end",
			opts:  CommentOptions{Text: "c", Anchor: Anchor{Start: Range(0, 1).Start}},
			code:  CodeMissingTextSelection,
			valid: true,
		},
		{
			name:  "blank text",
			opts:  CommentOptions{Text: "  \n ", Anchor: TextAnchor("Hello")},
			code:  CodeEmptyCommentText,
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := openTestPackage(t, para("Hello world"))
			types, _ := pkg.Part(contentTypesPart)

			_, err := pkg.AddComment(tt.opts)
			requireCode(t, err, tt.code)
			assert.Equal(t, tt.valid, IsValidationError(err))

			// nothing was touched
			assert.Nil(t, pkg.Comments)
			assert.False(t, pkg.documentDirty)
			assert.Equal(t, []string{"r:Hello world"}, describe(pkg.Paragraphs()[0].Content))
			after, _ := pkg.Part(contentTypesPart)
			assert.Equal(t, types, after)
			assert.NotContains(t, pkg.PartNames(), defaultCommentsPart)
		})
	}
}

func TestAddCommentRegistersPartOnce(t *testing.T) {
	pkg := openTestPackage(t, para("one two three"))

	for _, word := range []string{"one", "two", "three"} {
		_, err := pkg.AddComment(CommentOptions{Text: "about " + word, Anchor: TextAnchor(word)})
		require.NoError(t, err)
	}
	reloaded := reload(t, pkg)
	assert.Len(t, reloaded.ListComments(), 3)

	types, ok := reloaded.Part(contentTypesPart)
	require.True(t, ok)
	doc, err := xmlquery.Parse(strings.NewReader(string(types)))
	require.NoError(t, err)
	overrides := xmlquery.Find(doc, "//Override[@PartName='/word/comments.xml']")
	require.Len(t, overrides, 1)
	assert.Equal(t, commentsContentType, overrides[0].SelectAttr("ContentType"))

	rels, ok := reloaded.Part(documentRelsPart)
	require.True(t, ok)
	doc, err = xmlquery.Parse(strings.NewReader(string(rels)))
	require.NoError(t, err)
	found := xmlquery.Find(doc, "//Relationship[@Type='"+commentsRelationshipType+"']")
	require.Len(t, found, 1)
	assert.Equal(t, "rId2", found[0].SelectAttr("Id"))
	assert.Equal(t, "comments.xml", found[0].SelectAttr("Target"))

	// the styles relationship is untouched
	assert.Len(t, xmlquery.Find(doc, "//Relationship[@Id='rId1']"), 1)
}

func TestCommentsPartNamespaces(t *testing.T) {
	pkg := openTestPackage(t, para("Hello"))
	_, err := pkg.AddComment(CommentOptions{Text: "c", Anchor: Range(0, 5)})
	require.NoError(t, err)
	require.NoError(t, pkg.encodeDirty())

	data, ok := pkg.Part(defaultCommentsPart)
	require.True(t, ok)
	assert.Contains(t, string(data), `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`)
	assert.Contains(t, string(data), `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`)
	assert.Contains(t, string(data), `<w:comment w:id="0" w:author="">`)
}

func TestAddCommentToExistingPart(t *testing.T) {
	comments := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:comments xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:comment w:id="4" w:author="Bob" w:date="2023-01-01T00:00:00Z" w:initials="B"><w:p><w:r><w:t>old note</w:t></w:r></w:p></w:comment>` +
		`</w:comments>`
	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId3" Type="` + commentsRelationshipType + `" Target="comments.xml"/>` +
		`</Relationships>`
	body := `<w:p><w:commentRangeStart w:id="4"/><w:r><w:t>Hello</w:t></w:r><w:commentRangeEnd w:id="4"/>` +
		`<w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr><w:commentReference w:id="4"/></w:r>` +
		`<w:r><w:t xml:space="preserve"> world</w:t></w:r></w:p>`

	pkg := openTestPackage(t, body,
		testPart{defaultCommentsPart, comments},
		testPart{documentRelsPart, rels},
	)
	require.NotNil(t, pkg.Comments)
	assert.Equal(t, []string{"start#4", "r:Hello", "end#4", "ref#4", "r: world"}, describe(pkg.Paragraphs()[0].Content))

	c, err := pkg.AddComment(CommentOptions{Text: "new note", Anchor: TextAnchor("world"), Author: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, 5, c.ID)

	reloaded := reload(t, pkg)
	listed := reloaded.ListComments()
	require.Len(t, listed, 2)
	assert.Equal(t, "old note", listed[0].Text)
	assert.Equal(t, "Bob", listed[0].Author)
	assert.Equal(t, "new note", listed[1].Text)

	// the existing relationship is reused
	relsOut, _ := reloaded.Part(documentRelsPart)
	assert.Equal(t, rels, string(relsOut))
}

func TestRemoveComment(t *testing.T) {
	pkg := openTestPackage(t, para("Hello world"))
	c, err := pkg.AddComment(CommentOptions{Text: "c", Anchor: TextAnchor("world")})
	require.NoError(t, err)

	requireCode(t, pkg.RemoveComment(c.ID+10), CodeCommentNotFound)

	require.NoError(t, pkg.RemoveComment(c.ID))
	assert.Equal(t, []string{"r:Hello ", "r:world"}, describe(pkg.Paragraphs()[0].Content))
	assert.Empty(t, pkg.ListComments())

	requireCode(t, pkg.RemoveComment(c.ID), CodeCommentNotFound)
}

func TestRemoveCommentInsideTrackedChange(t *testing.T) {
	pkg := openTestPackage(t, para("Hello world"))
	c, err := pkg.AddComment(CommentOptions{Text: "c", Anchor: TextAnchor("world")})
	require.NoError(t, err)

	// the deletion swallows the range start; the range end stays outside
	_, err = pkg.DeleteText(0, "Hello world", testMeta)
	require.NoError(t, err)
	require.NoError(t, pkg.RemoveComment(c.ID))

	reloaded := reload(t, pkg)
	assert.Equal(t, []string{"del#1:Hello world"}, describe(reloaded.Paragraphs()[0].Content))
	for _, rev := range reloaded.Revisions() {
		assert.Equal(t, "Hello world", rev.Text)
	}
}

func TestRemoveCommentWithoutPart(t *testing.T) {
	pkg := openTestPackage(t, para("Hello"))
	requireCode(t, pkg.RemoveComment(1), CodeCommentNotFound)
}

// existingComment holds comment 7 for the table and body marker cases.
func existingComment() []testPart {
	return []testPart{
		{defaultCommentsPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:comments xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
			`<w:comment w:id="7" w:author="Bob"><w:p><w:r><w:t>note</w:t></w:r></w:p></w:comment>` +
			`</w:comments>`},
		{documentRelsPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId3" Type="` + commentsRelationshipType + `" Target="comments.xml"/>` +
			`</Relationships>`},
	}
}

func TestRemoveCommentMarkersOutsideParagraphs(t *testing.T) {
	tests := []struct {
		name string
		body string
		keep []string
	}{
		{
			name: "table cell",
			body: para("Intro") +
				`<w:tbl><w:tr><w:tc><w:p><w:commentRangeStart w:id="7"/><w:r><w:t>cell</w:t></w:r>` +
				`<w:commentRangeEnd w:id="7"/><w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr>` +
				`<w:commentReference w:id="7"/></w:r></w:p></w:tc></w:tr></w:tbl>`,
			keep: []string{"<w:t>cell</w:t>", "<w:tbl>"},
		},
		{
			name: "between paragraphs",
			body: `<w:commentRangeStart w:id="7"/>` + para("first") + para("second") +
				`<w:commentRangeEnd w:id="7"/>` +
				`<w:p><w:r><w:commentReference w:id="7"/></w:r><w:r><w:t>third</w:t></w:r></w:p>`,
			keep: []string{"first", "second", "third"},
		},
		{
			name: "raw inline element",
			body: `<w:p><w:sdt><w:sdtContent><w:commentRangeStart w:id="7"/><w:r><w:t>boxed</w:t></w:r>` +
				`<w:commentRangeEnd w:id="7"/></w:sdtContent></w:sdt></w:p>`,
			keep: []string{"<w:sdt>", "boxed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := openTestPackage(t, tt.body, existingComment()...)
			require.Len(t, pkg.ListComments(), 1)

			require.NoError(t, pkg.RemoveComment(7))

			reloaded := reload(t, pkg)
			assert.Empty(t, reloaded.ListComments())
			data, _ := reloaded.Part(documentPart)
			doc := string(data)
			for _, marker := range []string{"commentRangeStart", "commentRangeEnd", "commentReference"} {
				assert.NotContains(t, doc, marker)
			}
			for _, s := range tt.keep {
				assert.Contains(t, doc, s)
			}
		})
	}
}

func TestRemoveCommentKeepsOtherMarkers(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p><w:commentRangeStart w:id="7"/><w:commentRangeStart w:id="8"/>` +
		`<w:r><w:t>cell</w:t></w:r><w:commentRangeEnd w:id="8"/><w:commentRangeEnd w:id="7"/>` +
		`<w:r><w:commentReference w:id="7"/><w:commentReference w:id="8"/></w:r></w:p></w:tc></w:tr></w:tbl>`
	pkg := openTestPackage(t, body, existingComment()...)

	require.NoError(t, pkg.RemoveComment(7))

	data, _ := reload(t, pkg).Part(documentPart)
	doc := string(data)
	assert.NotContains(t, doc, `w:id="7"`)
	assert.Contains(t, doc, `<w:commentRangeStart w:id="8">`)
	assert.Contains(t, doc, `<w:commentRangeEnd w:id="8">`)
	assert.Contains(t, doc, `<w:r><w:commentReference w:id="8">`)
}
