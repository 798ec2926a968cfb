package redline

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/benjaminschreck/go-redline/pkg/redline/xml"
)

// Fingerprint is the blake3 digest of a part's uncompressed content.
type Fingerprint [32]byte

// part is one ZIP entry. Parts read from the archive keep their *zip.File so
// an untouched part is copied without recompression.
type part struct {
	name string
	file *zip.File
	// data replaces the original content when set
	data        []byte
	fingerprint Fingerprint
}

func (p *part) modified() bool {
	return p.file == nil || p.data != nil
}

func (p *part) read() ([]byte, error) {
	if p.data != nil {
		return p.data, nil
	}
	rc, err := p.file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Package is a DOCX container loaded into memory. The main document and the
// comments part are decoded; every other part is kept as it was read.
type Package struct {
	parts []*part
	index map[string]*part

	// Document is the decoded word/document.xml
	Document *xml.Document
	// Comments is the decoded comments part, nil when the package has none
	Comments *xml.Comments

	commentsPart  string
	documentDirty bool
	commentsDirty bool

	ids *idAllocator
	log zerolog.Logger
}

// Open reads and decodes the package at path.
func Open(path string) (*Package, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DocumentError{Code: CodeNotAFile, Operation: "load", Path: path, Message: "no such file", Cause: err}
		}
		return nil, fileError(err, "load", path)
	}
	if !info.Mode().IsRegular() {
		return nil, &DocumentError{Code: CodeNotAFile, Operation: "load", Path: path, Message: "not a regular file"}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(err, "load", path)
	}

	pkg, err := OpenReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, withLocation(err, "load", path)
	}
	return pkg, nil
}

// OpenReader decodes a package from r.
func OpenReader(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &DocumentError{Code: CodeCorruptFile, Operation: "load", Message: "not a valid ZIP archive", Cause: err}
	}

	pkg := &Package{
		index: make(map[string]*part, len(zr.File)),
		log:   GetLogger(),
	}
	for _, f := range zr.File {
		p := &part{name: f.Name, file: f}
		content, err := p.read()
		if err != nil {
			return nil, &DocumentError{Code: CodeCorruptFile, Operation: "load", Message: fmt.Sprintf("failed to read part %s", f.Name), Cause: err}
		}
		p.fingerprint = blake3.Sum256(content)
		pkg.parts = append(pkg.parts, p)
		pkg.index[f.Name] = p
	}

	docPart, ok := pkg.index[documentPart]
	if !ok {
		return nil, &DocumentError{Code: CodeMissingPart, Operation: "load", Message: "not a valid DOCX file: missing " + documentPart}
	}
	content, _ := docPart.read()
	pkg.Document, err = xml.ParseDocument(bytes.NewReader(content))
	if err != nil {
		return nil, &DocumentError{Code: CodeParseError, Operation: "load", Message: documentPart, Cause: err}
	}

	if err := pkg.loadComments(); err != nil {
		return nil, err
	}

	maxID := pkg.Document.MaxID
	if pkg.Comments != nil && pkg.Comments.MaxID > maxID {
		maxID = pkg.Comments.MaxID
	}
	pkg.ids = newIDAllocator(maxID)

	pkg.log.Debug().
		Int("parts", len(pkg.parts)).
		Int("paragraphs", len(pkg.Document.Body.Paragraphs())).
		Bool("comments", pkg.Comments != nil).
		Msg("package loaded")
	return pkg, nil
}

// loadComments locates the comments part through the document relationships,
// falling back to its conventional name.
func (p *Package) loadComments() error {
	p.commentsPart = defaultCommentsPart
	if rels, ok := p.index[documentRelsPart]; ok {
		data, _ := rels.read()
		target, found, err := relationshipTarget(data, commentsRelationshipType)
		if err != nil {
			return err
		}
		if found {
			p.commentsPart = target
		}
	}

	cp, ok := p.index[p.commentsPart]
	if !ok {
		return nil
	}
	content, _ := cp.read()
	comments, err := xml.ParseComments(bytes.NewReader(content))
	if err != nil {
		return &DocumentError{Code: CodeParseError, Operation: "load", Message: p.commentsPart, Cause: err}
	}
	p.Comments = comments
	return nil
}

// SetLogger replaces the logger used for this package's operations.
func (p *Package) SetLogger(logger zerolog.Logger) {
	p.log = logger
}

// PartNames returns the names of all parts in archive order.
func (p *Package) PartNames() []string {
	names := make([]string, len(p.parts))
	for i, pt := range p.parts {
		names[i] = pt.name
	}
	return names
}

// Part returns the current content of a part.
func (p *Package) Part(name string) ([]byte, bool) {
	pt, ok := p.index[name]
	if !ok {
		return nil, false
	}
	data, err := pt.read()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Fingerprints returns the blake3 fingerprint of every part as it was read.
// Parts created in memory are not included.
func (p *Package) Fingerprints() map[string]Fingerprint {
	out := make(map[string]Fingerprint, len(p.parts))
	for _, pt := range p.parts {
		if pt.file != nil {
			out[pt.name] = pt.fingerprint
		}
	}
	return out
}

// setPart replaces or adds a part. New parts are appended, except the
// content-type manifest, which goes first.
func (p *Package) setPart(name string, data []byte) {
	if pt, ok := p.index[name]; ok {
		pt.data = data
		return
	}
	pt := &part{name: name, data: data}
	if name == contentTypesPart {
		p.parts = append([]*part{pt}, p.parts...)
	} else {
		p.parts = append(p.parts, pt)
	}
	p.index[name] = pt
}

// encodeDirty re-encodes the decoded parts that were mutated.
func (p *Package) encodeDirty() error {
	if p.documentDirty {
		data, err := xml.MarshalDocument(p.Document)
		if err != nil {
			return &DocumentError{Code: CodeParseError, Operation: "encode", Message: documentPart, Cause: err}
		}
		p.setPart(documentPart, data)
		p.documentDirty = false
	}
	if p.commentsDirty && p.Comments != nil {
		data, err := xml.MarshalComments(p.Comments)
		if err != nil {
			return &DocumentError{Code: CodeParseError, Operation: "encode", Message: p.commentsPart, Cause: err}
		}
		p.setPart(p.commentsPart, data)
		p.commentsDirty = false
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// WriteTo encodes the package as a ZIP archive. Untouched parts are copied
// with their original compressed bytes; modified and new parts are deflated.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	if err := p.encodeDirty(); err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, pt := range p.parts {
		if !pt.modified() {
			if err := zw.Copy(pt.file); err != nil {
				return cw.n, fmt.Errorf("failed to copy part %s: %w", pt.name, err)
			}
			continue
		}

		header := &zip.FileHeader{Name: pt.name, Method: zip.Deflate, Modified: time.Now()}
		if pt.file != nil {
			header.Modified = pt.file.Modified
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return cw.n, fmt.Errorf("failed to create part %s: %w", pt.name, err)
		}
		if _, err := fw.Write(pt.data); err != nil {
			return cw.n, fmt.Errorf("failed to write part %s: %w", pt.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return cw.n, nil
}

// SaveOptions controls Save.
type SaveOptions struct {
	// Verify re-reads the written archive and compares every part with what
	// was meant to be written before the target is replaced.
	Verify bool
}

// Save writes the package to path. The archive is written to a temporary
// file in the same directory and renamed over the target, so the previous
// content is either fully replaced or left untouched.
func (p *Package) Save(path string, opts SaveOptions) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".redline-*.tmp")
	if err != nil {
		return NewDocumentError(CodeFileNotWritable, "save", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if info, err := os.Stat(path); err == nil {
		if err := tmp.Chmod(info.Mode().Perm()); err != nil {
			p.log.Debug().Err(err).Str("path", path).Msg("could not copy file mode")
		}
	}

	n, err := p.WriteTo(tmp)
	if err != nil {
		tmp.Close()
		if IsDocumentError(err) {
			return withLocation(err, "save", path)
		}
		return NewDocumentError(CodeFileNotWritable, "save", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return NewDocumentError(CodeFileNotWritable, "save", path, err)
	}
	if err := tmp.Close(); err != nil {
		return NewDocumentError(CodeFileNotWritable, "save", path, err)
	}

	if opts.Verify {
		if err := p.verify(tmpName); err != nil {
			return withLocation(err, "save", path)
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return NewDocumentError(CodeFileNotWritable, "save", path, err)
	}
	tmpName = ""

	p.log.Info().Str("path", path).Int64("bytes", n).Msg("document saved")
	return nil
}

// verify checks that the archive at path holds exactly the package's parts.
func (p *Package) verify(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return &DocumentError{Code: CodeCorruptFile, Operation: "verify", Message: "written archive is unreadable", Cause: err}
	}
	defer zr.Close()

	if len(zr.File) != len(p.parts) {
		return &DocumentError{Code: CodeCorruptFile, Operation: "verify",
			Message: fmt.Sprintf("written archive has %d parts, want %d", len(zr.File), len(p.parts))}
	}
	for i, f := range zr.File {
		pt := p.parts[i]
		if f.Name != pt.name {
			return &DocumentError{Code: CodeCorruptFile, Operation: "verify",
				Message: fmt.Sprintf("part %d is %s, want %s", i, f.Name, pt.name)}
		}
		want := pt.fingerprint
		if pt.modified() {
			want = blake3.Sum256(pt.data)
		}
		written := &part{name: f.Name, file: f}
		content, err := written.read()
		if err != nil {
			return &DocumentError{Code: CodeCorruptFile, Operation: "verify", Message: f.Name, Cause: err}
		}
		if Fingerprint(blake3.Sum256(content)) != want {
			return &DocumentError{Code: CodeCorruptFile, Operation: "verify", Message: "content mismatch in " + f.Name}
		}
	}
	p.log.Debug().Str("path", path).Int("parts", len(zr.File)).Msg("saved archive verified")
	return nil
}
