package common

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/utils"

	"github.com/ledongthuc/pdf"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile validates filename and returns its content.
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("File not found: %s", filename), err)
	}
	if err := utils.ValidateInputFile(filename); err != nil {
		return nil, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	return content, nil
}

// ReadText returns the content of a plain text file.
func (fp *FileProcessor) ReadText(filename string) (string, error) {
	content, err := fp.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ExtractText returns the plain text of a .txt/.md or .pdf resume.
// Other extensions are rejected with UNSUPPORTED_SOURCE.
func (fp *FileProcessor) ExtractText(filename string) (string, error) {
	switch {
	case utils.IsTextFile(filename):
		return fp.ReadText(filename)
	case utils.IsPDFFile(filename):
		content, err := fp.ReadFile(filename)
		if err != nil {
			return "", err
		}
		text, err := extractPDFText(content)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Failed to extract text from PDF: %s", filename), err)
		}
		fp.logger.Debug("Extracted PDF text", "filename", filename, "chars", len(text))
		return text, nil
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedSource,
			fmt.Sprintf("Unsupported resume source %q: use .json, .txt, .md or .pdf", filepath.Ext(filename)), nil)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text in %d pages", reader.NumPage())
	}
	return text, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED",
			fmt.Sprintf("Cannot create directory for: %s", filename), err)
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}
