package redline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benjaminschreck/go-redline/pkg/redline/diff"
)

// Editor provides the file-level API. Every call loads the document, applies
// one operation and, for mutations, saves it back before returning. Nothing
// is kept between calls.
type Editor struct {
	config *Config
	log    zerolog.Logger
	// Now supplies timestamps for new comments and revisions
	Now func() time.Time
}

// New creates an editor with default configuration.
func New() *Editor {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an editor with custom configuration.
func NewWithConfig(config *Config) *Editor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Editor{
		config: config,
		log:    GetLogger(),
		Now:    time.Now,
	}
}

// SetLogger replaces the editor's logger.
func (e *Editor) SetLogger(logger zerolog.Logger) {
	e.log = logger
}

// Config returns the editor's configuration.
func (e *Editor) Config() *Config {
	return e.config
}

// ParagraphInfo describes one addressable paragraph.
type ParagraphInfo struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

// DocumentInfo is the result of Read.
type DocumentInfo struct {
	Path            string          `json:"file_path"`
	Paragraphs      []ParagraphInfo `json:"paragraphs"`
	TotalParagraphs int             `json:"total_paragraphs"`
	HasComments     bool            `json:"has_comments"`
	CommentCount    int             `json:"comment_count"`
}

// AddCommentRequest holds the parameters of AddComment.
type AddCommentRequest struct {
	ParagraphIndex int
	Text           string
	Anchor         Anchor
	Author         string
	Initials       string
}

// DeleteResult is the result of DeleteComment.
type DeleteResult struct {
	Success   bool `json:"success"`
	CommentID int  `json:"comment_id"`
}

// InsertTextRequest holds the parameters of InsertText.
type InsertTextRequest struct {
	ParagraphIndex int
	Text           string
	// Position is a character offset; nil inserts at the end of the paragraph
	Position *int
	Author   string
	Date     string
}

// DeleteTextRequest holds the parameters of DeleteText.
type DeleteTextRequest struct {
	ParagraphIndex int
	Text           string
	Author         string
	Date           string
}

// ReplaceTextRequest holds the parameters of ReplaceText.
type ReplaceTextRequest struct {
	ParagraphIndex int
	OldText        string
	NewText        string
	// Strategy overrides the configured diff strategy when set
	Strategy diff.Strategy
	Author   string
	Date     string
}

// ModifyParagraphRequest holds the parameters of ModifyParagraph.
type ModifyParagraphRequest struct {
	ParagraphIndex int
	NewText        string
	Strategy       diff.Strategy
	Author         string
	Date           string
}

// SuggestRevisionRequest holds the parameters of SuggestRevision.
type SuggestRevisionRequest struct {
	ParagraphIndex   int
	OriginalText     string
	SuggestedText    string
	Reason           string
	ApplyImmediately bool
	Strategy         diff.Strategy
	Author           string
	Date             string
}

// Suggestion is the result of SuggestRevision.
type Suggestion struct {
	ID             string     `json:"suggestion_id"`
	ParagraphIndex int        `json:"paragraph_index"`
	OriginalText   string     `json:"original_text"`
	SuggestedText  string     `json:"suggested_text"`
	Reason         string     `json:"reason"`
	Author         string     `json:"author"`
	Applied        bool       `json:"applied"`
	Revisions      []Revision `json:"revisions,omitempty"`
}

// Read lists the document's paragraphs and comment count.
func (e *Editor) Read(path string) (info *DocumentInfo, err error) {
	defer e.recoverPanic("read", &err)

	pkg, err := e.open("read", path, false)
	if err != nil {
		return nil, err
	}

	info = &DocumentInfo{Path: path, Paragraphs: []ParagraphInfo{}}
	for i, para := range pkg.Paragraphs() {
		info.Paragraphs = append(info.Paragraphs, ParagraphInfo{Index: i, Text: para.GetText(), Style: para.Style()})
	}
	info.TotalParagraphs = len(info.Paragraphs)
	if pkg.Comments != nil {
		info.CommentCount = len(pkg.Comments.Entries)
		info.HasComments = info.CommentCount > 0
	}
	return info, nil
}

// AddComment anchors a comment to a paragraph range and saves the document.
func (e *Editor) AddComment(path string, req AddCommentRequest) (comment *Comment, err error) {
	defer e.recoverPanic("add comment", &err)

	if err := ValidateCommentText(req.Text); err != nil {
		return nil, err
	}
	if err := req.Anchor.validate(); err != nil {
		return nil, err
	}
	if err := ValidateParagraphIndex(req.ParagraphIndex); err != nil {
		return nil, err
	}

	pkg, err := e.open("add comment", path, true)
	if err != nil {
		return nil, err
	}
	c, err := pkg.AddComment(CommentOptions{
		ParagraphIndex: req.ParagraphIndex,
		Text:           req.Text,
		Anchor:         req.Anchor,
		Author:         e.author(req.Author),
		Initials:       e.initials(req.Initials),
		Date:           e.date(""),
	})
	if err != nil {
		return nil, withLocation(err, "add comment", path)
	}
	if err := e.save(pkg, path); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns every comment in the document.
func (e *Editor) ListComments(path string) (comments []Comment, err error) {
	defer e.recoverPanic("list comments", &err)

	pkg, err := e.open("list comments", path, false)
	if err != nil {
		return nil, err
	}
	comments = pkg.ListComments()
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// DeleteComment removes a comment and its anchor markers.
func (e *Editor) DeleteComment(path string, id int) (result *DeleteResult, err error) {
	defer e.recoverPanic("delete comment", &err)

	pkg, err := e.open("delete comment", path, true)
	if err != nil {
		return nil, err
	}
	if err := pkg.RemoveComment(id); err != nil {
		return nil, withLocation(err, "delete comment", path)
	}
	if err := e.save(pkg, path); err != nil {
		return nil, err
	}
	return &DeleteResult{Success: true, CommentID: id}, nil
}

// InsertText inserts text as a tracked insertion.
func (e *Editor) InsertText(path string, req InsertTextRequest) (rev *Revision, err error) {
	defer e.recoverPanic("insert text", &err)

	if req.Text == "" {
		return nil, NewValidationError(CodeInvalidArgument, "text", "text to insert cannot be empty")
	}
	if err := ValidateParagraphIndex(req.ParagraphIndex); err != nil {
		return nil, err
	}

	pkg, err := e.open("insert text", path, true)
	if err != nil {
		return nil, err
	}
	r, err := pkg.InsertText(req.ParagraphIndex, req.Text, req.Position, e.meta(req.Author, req.Date))
	if err != nil {
		return nil, withLocation(err, "insert text", path)
	}
	if err := e.save(pkg, path); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteText marks the first occurrence of text as a tracked deletion.
func (e *Editor) DeleteText(path string, req DeleteTextRequest) (rev *Revision, err error) {
	defer e.recoverPanic("delete text", &err)

	if req.Text == "" {
		return nil, NewValidationError(CodeInvalidArgument, "text", "text to delete cannot be empty")
	}
	if err := ValidateParagraphIndex(req.ParagraphIndex); err != nil {
		return nil, err
	}

	pkg, err := e.open("delete text", path, true)
	if err != nil {
		return nil, err
	}
	r, err := pkg.DeleteText(req.ParagraphIndex, req.Text, e.meta(req.Author, req.Date))
	if err != nil {
		return nil, withLocation(err, "delete text", path)
	}
	if err := e.save(pkg, path); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReplaceText replaces the first occurrence of OldText with tracked changes.
func (e *Editor) ReplaceText(path string, req ReplaceTextRequest) (revs []Revision, err error) {
	defer e.recoverPanic("replace text", &err)

	if req.OldText == "" {
		return nil, NewValidationError(CodeInvalidArgument, "old_text", "text to replace cannot be empty")
	}
	if err := ValidateParagraphIndex(req.ParagraphIndex); err != nil {
		return nil, err
	}

	pkg, err := e.open("replace text", path, true)
	if err != nil {
		return nil, err
	}
	revs, err = pkg.ReplaceText(req.ParagraphIndex, req.OldText, req.NewText, e.strategy(req.Strategy), e.meta(req.Author, req.Date))
	if err != nil {
		return nil, withLocation(err, "replace text", path)
	}
	if err := e.save(pkg, path); err != nil {
		return nil, err
	}
	return revs, nil
}

// ModifyParagraph replaces a paragraph's whole text with tracked changes.
func (e *Editor) ModifyParagraph(path string, req ModifyParagraphRequest) (revs []Revision, err error) {
	defer e.recoverPanic("modify paragraph", &err)

	if err := ValidateParagraphIndex(req.ParagraphIndex); err != nil {
		return nil, err
	}

	pkg, err := e.open("modify paragraph", path, true)
	if err != nil {
		return nil, err
	}
	revs, err = pkg.ModifyParagraph(req.ParagraphIndex, req.NewText, e.strategy(req.Strategy), e.meta(req.Author, req.Date))
	if err != nil {
		return nil, withLocation(err, "modify paragraph", path)
	}
	if err := e.save(pkg, path); err != nil {
		return nil, err
	}
	return revs, nil
}

// ListRevisions returns every tracked change in the document.
func (e *Editor) ListRevisions(path string) (revs []Revision, err error) {
	defer e.recoverPanic("list revisions", &err)

	pkg, err := e.open("list revisions", path, false)
	if err != nil {
		return nil, err
	}
	revs = pkg.Revisions()
	if revs == nil {
		revs = []Revision{}
	}
	return revs, nil
}

// SuggestRevision records a proposed replacement. The document is only
// changed when ApplyImmediately is set, in which case the suggestion is
// applied like ReplaceText.
func (e *Editor) SuggestRevision(path string, req SuggestRevisionRequest) (s *Suggestion, err error) {
	defer e.recoverPanic("suggest revision", &err)

	if req.OriginalText == "" {
		return nil, NewValidationError(CodeInvalidArgument, "original_text", "original text cannot be empty")
	}
	if err := ValidateParagraphIndex(req.ParagraphIndex); err != nil {
		return nil, err
	}

	pkg, err := e.open("suggest revision", path, req.ApplyImmediately)
	if err != nil {
		return nil, err
	}
	para, err := pkg.paragraph(req.ParagraphIndex)
	if err != nil {
		return nil, withLocation(err, "suggest revision", path)
	}
	if _, ok := findText(para.AcceptedText(), req.OriginalText); !ok {
		return nil, &DocumentError{Code: CodeTextNotFound, Operation: "suggest revision", Path: path,
			Message: fmt.Sprintf("text %q not found in paragraph %d", req.OriginalText, req.ParagraphIndex)}
	}

	meta := e.meta(req.Author, req.Date)
	s = &Suggestion{
		ID:             uuid.NewString(),
		ParagraphIndex: req.ParagraphIndex,
		OriginalText:   req.OriginalText,
		SuggestedText:  req.SuggestedText,
		Reason:         req.Reason,
		Author:         meta.Author,
	}
	if !req.ApplyImmediately {
		e.log.Debug().Str("suggestion", s.ID).Int("paragraph", req.ParagraphIndex).Msg("revision suggested")
		return s, nil
	}

	revs, err := pkg.ReplaceText(req.ParagraphIndex, req.OriginalText, req.SuggestedText, e.strategy(req.Strategy), meta)
	if err != nil {
		return nil, withLocation(err, "suggest revision", path)
	}
	if err := e.save(pkg, path); err != nil {
		return nil, err
	}
	s.Applied = true
	s.Revisions = revs
	return s, nil
}

// open validates path eagerly and loads the package.
func (e *Editor) open(operation, path string, writable bool) (*Package, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	if err := CheckFile(path, writable); err != nil {
		return nil, withLocation(err, operation, path)
	}

	e.log.Debug().Str("op", operation).Str("path", path).Msg("opening document")
	pkg, err := Open(path)
	if err != nil {
		return nil, withLocation(err, operation, path)
	}
	pkg.SetLogger(e.log)
	return pkg, nil
}

func (e *Editor) save(pkg *Package, path string) error {
	return pkg.Save(path, SaveOptions{Verify: e.config.VerifySave})
}

// recoverPanic turns a panic in an operation into an error.
func (e *Editor) recoverPanic(operation string, err *error) {
	if r := recover(); r != nil {
		*err = RecoverError(r)
		e.log.Error().Err(*err).Str("op", operation).Msg("operation panicked")
	}
}

func (e *Editor) author(author string) string {
	if author != "" {
		return author
	}
	return e.config.Author
}

func (e *Editor) initials(initials string) string {
	if initials != "" {
		return initials
	}
	return e.config.Initials
}

// date returns date, or the current time in RFC 3339 form.
func (e *Editor) date(date string) string {
	if date != "" {
		return date
	}
	return e.Now().UTC().Format(time.RFC3339)
}

func (e *Editor) meta(author, date string) ChangeMeta {
	return ChangeMeta{Author: e.author(author), Date: e.date(date)}
}

func (e *Editor) strategy(s diff.Strategy) diff.Strategy {
	if s != "" {
		return s
	}
	return e.config.Strategy()
}
