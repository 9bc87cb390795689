package models

import (
	"path/filepath"
	"strings"
	"unicode"
)

// DocType identifies one of the accepted resume formats.
type DocType string

const (
	DocTypePDF  DocType = "pdf"
	DocTypeDOC  DocType = "doc"
	DocTypeDOCX DocType = "docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var docTypes = map[string]DocType{
	"pdf":    DocTypePDF,
	"doc":    DocTypeDOC,
	"docx":   DocTypeDOCX,
	".pdf":   DocTypePDF,
	".doc":   DocTypeDOC,
	".docx":  DocTypeDOCX,
	"x-pdf":  DocTypePDF,
	MimePDF:  DocTypePDF,
	MimeDOC:  DocTypeDOC,
	MimeDOCX: DocTypeDOCX,
}

// ParseDocType maps a declared MIME type (or its short name) onto a supported
// document type. Parameters such as "; charset=binary" are ignored.
func ParseDocType(mimeType string) (DocType, bool) {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if t, ok := docTypes[m]; ok {
		return t, true
	}
	if strings.HasPrefix(m, "application/") {
		t, ok := docTypes[strings.TrimPrefix(m, "application/")]
		return t, ok
	}
	return "", false
}

// DocTypeFromFilename infers the document type from a file extension.
func DocTypeFromFilename(name string) (DocType, bool) {
	t, ok := docTypes[strings.ToLower(filepath.Ext(name))]
	return t, ok
}

// MimeType returns the canonical MIME type for t.
func (t DocType) MimeType() string {
	switch t {
	case DocTypePDF:
		return MimePDF
	case DocTypeDOC:
		return MimeDOC
	case DocTypeDOCX:
		return MimeDOCX
	}
	return ""
}

// RawDocument is an uploaded file as handed to the extractor.
type RawDocument struct {
	Data     []byte
	MimeType string
	Size     int64
	Filename string
}

func NewRawDocument(data []byte, mimeType, filename string) RawDocument {
	return RawDocument{
		Data:     data,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Filename: filename,
	}
}

// PageBreak is the marker line placed between PDF pages.
const PageBreak = "\f"

// ExtractedText is the plain text of a document, one entry per line.
type ExtractedText struct {
	Lines []string
	Pages int
}

func (t ExtractedText) String() string {
	return strings.Join(t.Lines, "\n")
}

// CharCount counts the non-whitespace runes in the text.
func (t ExtractedText) CharCount() int {
	n := 0
	for _, line := range t.Lines {
		for _, r := range line {
			if !unicode.IsSpace(r) {
				n++
			}
		}
	}
	return n
}

func (t ExtractedText) IsEmpty() bool {
	return t.CharCount() == 0
}

// SectionLabel tags a block of resume text with the section it belongs to.
type SectionLabel string

const (
	LabelContact    SectionLabel = "contact"
	LabelSummary    SectionLabel = "summary"
	LabelExperience SectionLabel = "experience"
	LabelEducation  SectionLabel = "education"
	LabelSkills     SectionLabel = "skills"
	LabelProjects   SectionLabel = "projects"
	LabelUnknown    SectionLabel = "unknown"
)

// SectionBlock is a labelled run of lines in document order.
type SectionBlock struct {
	Label   SectionLabel
	Heading string
	Lines   []string
}

func (b SectionBlock) Text() string {
	return strings.Join(b.Lines, "\n")
}
