package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/admission-tracker/internal/apperror"
)

// DocumentTextExtractor reads plain text out of a stored document.
type DocumentTextExtractor interface {
	ExtractText(path string) (string, error)
	ExtractTextWithMetaData(path string) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	FilePath  string
}

type pdfParserService struct{}

func NewPDFParserService() DocumentTextExtractor {
	return &pdfParserService{}
}

// ExtractText returns the cleaned text of every readable page.
func (p *pdfParserService) ExtractText(path string) (string, error) {
	content, err := p.ExtractTextWithMetaData(path)
	if err != nil {
		return "", err
	}
	return CleanText(content.Text), nil
}

func (p *pdfParserService) ExtractTextWithMetaData(path string) (content *PDFContent, err error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.NotFound("extract text", fmt.Sprintf("document %s does not exist", path))
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	// the reader panics on malformed objects
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable page, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content found in PDF")
	}

	return &PDFContent{
		Text:      text,
		PageCount: totalPage,
		FilePath:  path,
	}, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
