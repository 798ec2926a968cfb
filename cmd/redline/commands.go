package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/benjaminschreck/go-redline/pkg/redline"
	"github.com/benjaminschreck/go-redline/pkg/redline/diff"
)

func paragraphFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "paragraph",
		Aliases: []string{"p"},
		Usage:   "0-based paragraph index",
	}
}

func strategyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "strategy",
		Usage: "Diff strategy (word, char, position); defaults to the configured one",
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "List the paragraphs of a document",
		ArgsUsage: "FILE",
		Action:    runRead,
	}
}

func runRead(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	info, err := s.editor.Read(path)
	if err != nil {
		return err
	}
	if s.json {
		return s.printJSON(info)
	}

	rows := make([][]string, 0, len(info.Paragraphs))
	for _, p := range info.Paragraphs {
		rows = append(rows, []string{strconv.Itoa(p.Index), p.Style, cell(p.Text)})
	}
	s.printf("%s\n", renderTable([]string{"#", "Style", "Text"}, rows, []columnAlignment{alignRight}))
	s.printf("%d paragraphs, %d comments\n", info.TotalParagraphs, info.CommentCount)
	return nil
}

func addCommentCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-comment",
		Usage:     "Anchor a comment to text or a character range",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			paragraphFlag(),
			&cli.StringFlag{
				Name:     "text",
				Aliases:  []string{"t"},
				Usage:    "Comment body",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "anchor",
				Usage: "Attach the comment to the first occurrence of this text",
			},
			&cli.IntFlag{
				Name:  "start",
				Usage: "Start of the anchored character range",
			},
			&cli.IntFlag{
				Name:  "end",
				Usage: "End (exclusive) of the anchored character range",
			},
			&cli.StringFlag{
				Name:  "initials",
				Usage: "Initials recorded on the comment",
			},
		},
		Action: runAddComment,
	}
}

func runAddComment(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}

	anchor := redline.Anchor{Text: c.String("anchor")}
	if c.IsSet("start") {
		start := c.Int("start")
		anchor.Start = &start
	}
	if c.IsSet("end") {
		end := c.Int("end")
		anchor.End = &end
	}

	comment, err := s.editor.AddComment(path, redline.AddCommentRequest{
		ParagraphIndex: c.Int("paragraph"),
		Text:           c.String("text"),
		Anchor:         anchor,
		Initials:       c.String("initials"),
	})
	if err != nil {
		return err
	}
	if s.json {
		return s.printJSON(comment)
	}
	s.printf("Added comment %d to paragraph %d\n", comment.ID, *comment.ParagraphIndex)
	return nil
}

func listCommentsCommand() *cli.Command {
	return &cli.Command{
		Name:      "list-comments",
		Usage:     "List the comments of a document",
		ArgsUsage: "FILE",
		Action:    runListComments,
	}
}

func runListComments(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	comments, err := s.editor.ListComments(path)
	if err != nil {
		return err
	}
	if s.json {
		return s.printJSON(comments)
	}
	if len(comments) == 0 {
		s.printf("No comments\n")
		return nil
	}

	rows := make([][]string, 0, len(comments))
	for _, cm := range comments {
		para := "-"
		if cm.ParagraphIndex != nil {
			para = strconv.Itoa(*cm.ParagraphIndex)
		}
		rows = append(rows, []string{strconv.Itoa(cm.ID), para, cm.Author, relativeDate(cm.Date), cell(cm.Text)})
	}
	s.printf("%s\n", renderTable([]string{"ID", "Paragraph", "Author", "Created", "Text"}, rows,
		[]columnAlignment{alignRight, alignRight}))
	return nil
}

func deleteCommentCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete-comment",
		Usage:     "Remove a comment and its anchor",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "id",
				Usage:    "Comment id",
				Required: true,
			},
		},
		Action: runDeleteComment,
	}
}

func runDeleteComment(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	result, err := s.editor.DeleteComment(path, c.Int("id"))
	if err != nil {
		return err
	}
	if s.json {
		return s.printJSON(result)
	}
	s.printf("Deleted comment %d\n", result.CommentID)
	return nil
}

func insertTextCommand() *cli.Command {
	return &cli.Command{
		Name:      "insert-text",
		Usage:     "Insert text as a tracked insertion",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			paragraphFlag(),
			&cli.StringFlag{
				Name:     "text",
				Aliases:  []string{"t"},
				Usage:    "Text to insert",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "position",
				Usage: "Character offset; the end of the paragraph when omitted",
			},
		},
		Action: runInsertText,
	}
}

func runInsertText(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	req := redline.InsertTextRequest{
		ParagraphIndex: c.Int("paragraph"),
		Text:           c.String("text"),
	}
	if c.IsSet("position") {
		pos := c.Int("position")
		req.Position = &pos
	}
	rev, err := s.editor.InsertText(path, req)
	if err != nil {
		return err
	}
	return s.printRevisions([]redline.Revision{*rev})
}

func deleteTextCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete-text",
		Usage:     "Mark the first occurrence of text as a tracked deletion",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			paragraphFlag(),
			&cli.StringFlag{
				Name:     "text",
				Aliases:  []string{"t"},
				Usage:    "Text to delete",
				Required: true,
			},
		},
		Action: runDeleteText,
	}
}

func runDeleteText(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	rev, err := s.editor.DeleteText(path, redline.DeleteTextRequest{
		ParagraphIndex: c.Int("paragraph"),
		Text:           c.String("text"),
	})
	if err != nil {
		return err
	}
	return s.printRevisions([]redline.Revision{*rev})
}

func replaceTextCommand() *cli.Command {
	return &cli.Command{
		Name:      "replace-text",
		Usage:     "Replace text with tracked changes",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			paragraphFlag(),
			&cli.StringFlag{
				Name:     "old",
				Usage:    "Text to replace (first occurrence)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "new",
				Usage: "Replacement text",
			},
			strategyFlag(),
		},
		Action: runReplaceText,
	}
}

func runReplaceText(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	revs, err := s.editor.ReplaceText(path, redline.ReplaceTextRequest{
		ParagraphIndex: c.Int("paragraph"),
		OldText:        c.String("old"),
		NewText:        c.String("new"),
		Strategy:       diff.Strategy(c.String("strategy")),
	})
	if err != nil {
		return err
	}
	return s.printRevisions(revs)
}

func modifyParagraphCommand() *cli.Command {
	return &cli.Command{
		Name:      "modify-paragraph",
		Usage:     "Replace the whole text of a paragraph with tracked changes",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			paragraphFlag(),
			&cli.StringFlag{
				Name:     "text",
				Aliases:  []string{"t"},
				Usage:    "New paragraph text",
				Required: true,
			},
			strategyFlag(),
		},
		Action: runModifyParagraph,
	}
}

func runModifyParagraph(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	revs, err := s.editor.ModifyParagraph(path, redline.ModifyParagraphRequest{
		ParagraphIndex: c.Int("paragraph"),
		NewText:        c.String("text"),
		Strategy:       diff.Strategy(c.String("strategy")),
	})
	if err != nil {
		return err
	}
	return s.printRevisions(revs)
}

func listRevisionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "list-revisions",
		Usage:     "List the tracked changes of a document",
		ArgsUsage: "FILE",
		Action:    runListRevisions,
	}
}

func runListRevisions(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	revs, err := s.editor.ListRevisions(path)
	if err != nil {
		return err
	}
	if !s.json && len(revs) == 0 {
		s.printf("No tracked changes\n")
		return nil
	}
	return s.printRevisions(revs)
}

func suggestRevisionCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest-revision",
		Usage:     "Propose a replacement, optionally applying it as tracked changes",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			paragraphFlag(),
			&cli.StringFlag{
				Name:     "original",
				Usage:    "Text to revise",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "suggested",
				Usage: "Proposed text",
			},
			&cli.StringFlag{
				Name:  "reason",
				Usage: "Why the change is proposed",
			},
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Apply the suggestion to the document",
			},
			strategyFlag(),
		},
		Action: runSuggestRevision,
	}
}

func runSuggestRevision(c *cli.Context) error {
	s, path, err := prepare(c)
	if err != nil {
		return err
	}
	suggestion, err := s.editor.SuggestRevision(path, redline.SuggestRevisionRequest{
		ParagraphIndex:   c.Int("paragraph"),
		OriginalText:     c.String("original"),
		SuggestedText:    c.String("suggested"),
		Reason:           c.String("reason"),
		ApplyImmediately: c.Bool("apply"),
		Strategy:         diff.Strategy(c.String("strategy")),
	})
	if err != nil {
		return err
	}
	if s.json {
		return s.printJSON(suggestion)
	}
	if !suggestion.Applied {
		s.printf("Suggestion %s recorded for paragraph %d (not applied)\n", suggestion.ID, suggestion.ParagraphIndex)
		return nil
	}
	s.printf("Suggestion %s applied to paragraph %d\n", suggestion.ID, suggestion.ParagraphIndex)
	return s.printRevisions(suggestion.Revisions)
}

// prepare sets up the session and resolves the FILE argument.
func prepare(c *cli.Context) (*session, string, error) {
	path, err := documentPath(c)
	if err != nil {
		return nil, "", err
	}
	s, err := newSession(c)
	if err != nil {
		return nil, "", err
	}
	return s, path, nil
}

func (s *session) printRevisions(revs []redline.Revision) error {
	if s.json {
		if revs == nil {
			revs = []redline.Revision{}
		}
		return s.printJSON(revs)
	}
	rows := make([][]string, 0, len(revs))
	for _, r := range revs {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			strconv.Itoa(r.ParagraphIndex),
			r.Type,
			r.Author,
			relativeDate(r.Date),
			fmt.Sprintf("%q", r.Text),
		})
	}
	s.printf("%s\n", renderTable([]string{"ID", "Paragraph", "Type", "Author", "Date", "Text"}, rows,
		[]columnAlignment{alignRight, alignRight}))
	return nil
}
