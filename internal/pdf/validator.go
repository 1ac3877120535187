package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdferrors "github.com/a3tai/draw-parser/internal/pdf/errors"
)

// pdfHeader is the magic every PDF file starts with
var pdfHeader = []byte("%PDF-")

// Validator checks input paths before any parser touches them
type Validator struct {
	maxFileSize int64
	rootDir     string
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// WithRoot returns a copy of v that also rejects paths outside dir. An
// empty dir disables the check.
func (v *Validator) WithRoot(dir string) *Validator {
	clone := *v
	clone.rootDir = dir
	return &clone
}

// MaxFileSize returns the configured size limit in bytes
func (v *Validator) MaxFileSize() int64 {
	return v.maxFileSize
}

// ValidateFile checks that path names a readable, non-empty PDF within the
// size limit. Path and size failures are INVALID_INPUT; a file that cannot be
// read or lacks the PDF header is UNREADABLE.
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return invalid(filePath, "path cannot be empty", nil)
	}

	if v.rootDir != "" {
		within, err := isPathWithinDirectory(filePath, v.rootDir)
		if err != nil {
			return invalid(filePath, "path validation failed", err)
		}
		if !within {
			return invalid(filePath, "path is outside configured directory", nil)
		}
	}

	// Check if file exists and get basic info
	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return invalid(filePath, "file does not exist", nil)
	}
	if err != nil {
		return invalid(filePath, "cannot access file", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return err
	}

	return checkHeader(filePath)
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return invalid(filePath, "path is a directory, not a file", nil)
	}

	if !fileInfo.Mode().IsRegular() {
		return invalid(filePath, "path is not a regular file", nil)
	}

	if !IsPDFName(filePath) {
		return invalid(filePath, "file is not a PDF", nil)
	}

	if fileInfo.Size() == 0 {
		return invalid(filePath, "file is empty", nil)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return invalid(filePath, fmt.Sprintf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize), nil)
	}

	return nil
}

// IsPDFName reports whether name carries a .pdf extension in any case
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func checkHeader(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeUnreadable, "cannot open file", err).WithFile(filePath)
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return pdferrors.WrapError(pdferrors.ErrorTypeUnreadable, "cannot read file", err).WithFile(filePath)
	}
	// the header may follow a little leading garbage
	if !bytes.Contains(head[:n], pdfHeader) {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeUnreadable, "missing %PDF header").WithFile(filePath)
	}
	return nil
}

func invalid(filePath, msg string, err error) error {
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, msg, err).WithFile(filePath)
	}
	return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, msg).WithFile(filePath)
}

// isPathWithinDirectory checks if path resolves to a location inside directory
func isPathWithinDirectory(path, directory string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve directory: %w", err)
	}

	// Evaluate any symlinks to get the real path
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to evaluate symlinks: %w", err)
		}
		realPath = absPath
	}
	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to evaluate directory symlinks: %w", err)
		}
		realDir = absDir
	}

	rel, err := filepath.Rel(filepath.Clean(realDir), filepath.Clean(realPath))
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}
