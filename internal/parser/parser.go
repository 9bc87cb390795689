package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"resume-folio/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for MIME types outside PDF, DOC and DOCX.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptDocument is returned when a supported reader cannot decode the bytes.
	ErrCorruptDocument = errors.New("corrupt document")
)

// Extractor turns raw uploads into plain text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractText(ctx context.Context, doc models.RawDocument) (models.ExtractedText, error) {
	return ExtractText(ctx, doc)
}

// ExtractText decodes doc according to its declared MIME type. Paragraph and
// line breaks are kept; PDF pages are separated by models.PageBreak lines.
// A zero-length buffer of a supported type yields empty text.
func ExtractText(ctx context.Context, doc models.RawDocument) (models.ExtractedText, error) {
	docType, ok := models.ParseDocType(doc.MimeType)
	if !ok {
		return models.ExtractedText{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.MimeType)
	}
	if len(doc.Data) == 0 {
		return models.ExtractedText{Lines: []string{}}, nil
	}
	if err := ctx.Err(); err != nil {
		return models.ExtractedText{}, err
	}

	var (
		lines []string
		pages = 1
		err   error
	)
	switch docType {
	case models.DocTypePDF:
		lines, pages, err = extractPDF(ctx, doc.Data)
	case models.DocTypeDOCX:
		lines, err = extractDOCX(doc.Data)
	case models.DocTypeDOC:
		lines, err = extractDOC(doc.Data)
	}
	if err != nil {
		return models.ExtractedText{}, err
	}

	text := models.ExtractedText{Lines: normalizeLines(lines), Pages: pages}
	log.Debug().
		Str("type", string(docType)).
		Int("bytes", len(doc.Data)).
		Int("lines", len(text.Lines)).
		Int("pages", pages).
		Msg("extracted document text")
	return text, nil
}

func corrupt(format string, err any) error {
	return fmt.Errorf("%w: %s: %v", ErrCorruptDocument, format, err)
}

// splitLines breaks a decoded text run into lines on any newline convention.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
