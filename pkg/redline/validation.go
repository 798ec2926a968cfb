package redline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the only file extension accepted by the editor.
const Extension = ".docx"

// ValidatePath checks the shape of a document path: non-empty, absolute and
// ending in .docx. It does not touch the file system.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return NewValidationError(CodeInvalidPath, "path", "file path is required")
	}
	if !filepath.IsAbs(path) {
		return NewValidationError(CodeInvalidPath, "path", fmt.Sprintf("file path must be absolute: %s", path))
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != Extension {
		return NewValidationError(CodeInvalidExtension, "path", fmt.Sprintf("only %s files are supported, got %q", Extension, ext))
	}
	return nil
}

// CheckFile verifies that path names a readable regular file and, when
// writable is set, that it can be opened for writing.
func CheckFile(path string, writable bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fileError(err, "stat", path)
	}
	if !info.Mode().IsRegular() {
		return &DocumentError{Code: CodeNotAFile, Operation: "stat", Path: path, Message: "not a regular file"}
	}

	f, err := os.Open(path)
	if err != nil {
		return fileError(err, "open", path)
	}
	f.Close()

	if writable {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return &DocumentError{Code: CodeFileNotWritable, Operation: "open", Path: path,
				Message: "file is not writable; close it in other applications", Cause: err}
		}
		f.Close()
	}
	return nil
}

// fileError maps an os error to the document error taxonomy.
func fileError(err error, operation, path string) error {
	code := CodePermissionDenied
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = CodeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		code = CodePermissionDenied
	}
	return NewDocumentError(code, operation, path, err)
}

// ValidateParagraphIndex rejects negative paragraph indexes.
func ValidateParagraphIndex(index int) error {
	if index < 0 {
		return NewValidationError(CodeInvalidParagraphIndex, "paragraph_index",
			fmt.Sprintf("paragraph index must be non-negative, got %d", index))
	}
	return nil
}

// ValidateCommentText rejects empty or whitespace-only comment bodies.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError(CodeEmptyCommentText, "comment_text", "comment text cannot be empty or whitespace only")
	}
	return nil
}
