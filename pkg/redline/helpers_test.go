package redline

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-redline/pkg/redline/xml"
)

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const testDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const testStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="paragraph" w:styleId="Heading1"/></w:styles>`

// para returns a paragraph holding one run per text.
func para(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, text := range texts {
		fmt.Fprintf(&sb, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, text)
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>` + body + `<w:sectPr/></w:body></w:document>`
}

type testPart struct {
	name    string
	content string
}

// buildDocx assembles a minimal package around body. Extra parts are added
// after the standard ones, replacing any of them with the same name.
func buildDocx(t *testing.T, body string, extra ...testPart) []byte {
	t.Helper()

	parts := []testPart{
		{contentTypesPart, testContentTypes},
		{"_rels/.rels", testPackageRels},
		{documentPart, documentXML(body)},
		{documentRelsPart, testDocumentRels},
		{"word/styles.xml", testStyles},
	}
	for _, e := range extra {
		replaced := false
		for i := range parts {
			if parts[i].name == e.name {
				parts[i] = e
				replaced = true
			}
		}
		if !replaced {
			parts = append(parts, e)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = io.WriteString(w, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// openTestPackage decodes a package built around body.
func openTestPackage(t *testing.T, body string, extra ...testPart) *Package {
	t.Helper()
	data := buildDocx(t, body, extra...)
	pkg, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	pkg.SetLogger(zerolog.Nop())
	return pkg
}

// writeTestDocx writes a package built around body to a temporary file.
func writeTestDocx(t *testing.T, body string, extra ...testPart) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.docx")
	require.NoError(t, os.WriteFile(path, buildDocx(t, body, extra...), 0644))
	return path
}

// reload writes pkg to memory and decodes it again.
func reload(t *testing.T, pkg *Package) *Package {
	t.Helper()
	var buf bytes.Buffer
	_, err := pkg.WriteTo(&buf)
	require.NoError(t, err)
	out, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	out.SetLogger(zerolog.Nop())
	return out
}

// describe renders paragraph content as one short string per item.
func describe(content []xml.ParagraphContent) []string {
	out := make([]string, 0, len(content))
	for _, item := range content {
		switch v := item.(type) {
		case *xml.Run:
			out = append(out, "r:"+v.GetText())
		case *xml.TrackedChange:
			prefix := "ins"
			if v.Kind == xml.Deleted {
				prefix = "del"
			}
			out = append(out, fmt.Sprintf("%s#%d:%s", prefix, v.ID, v.GetText()))
		case *xml.CommentRangeStart:
			out = append(out, fmt.Sprintf("start#%d", v.ID))
		case *xml.CommentRangeEnd:
			out = append(out, fmt.Sprintf("end#%d", v.ID))
		case *xml.CommentReference:
			out = append(out, fmt.Sprintf("ref#%d", v.ID))
		case *xml.RawXMLElement:
			out = append(out, "raw:"+v.Name())
		case *xml.Container:
			out = append(out, fmt.Sprintf("%s[%s]", v.Name, strings.Join(describe(v.Content), " | ")))
		}
	}
	return out
}

func requireCode(t *testing.T, err error, code Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, ErrorCode(err), "error: %v", err)
}
