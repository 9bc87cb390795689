// Package testutil builds small in-memory resume documents for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	pdfFontSize     = 12
	pdfLineStep     = 14
	pdfParagraphGap = 20
)

var pdfEscaper = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

// PDF renders each page's lines in 12pt Helvetica with WinAnsi encoding.
// An empty string leaves a paragraph gap; a page with no lines has an empty
// content stream, like a scanned page without a text layer.
func PDF(pages ...[]string) []byte {
	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding" +
			" /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
	}
	for i, lines := range pages {
		content := pageContent(lines)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]"+
				" /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func pageContent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "BT\n/F1 %d Tf\n72 720 Td\n", pdfFontSize)
	step, first := pdfLineStep, true
	for _, line := range lines {
		if line == "" {
			step += pdfParagraphGap
			continue
		}
		if !first {
			fmt.Fprintf(&b, "0 -%d Td\n", step)
		}
		fmt.Fprintf(&b, "(%s) Tj\n", pdfEscaper.Replace(line))
		step, first = pdfLineStep, false
	}
	b.WriteString("ET")
	return b.String()
}

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
)

// DOCX packages one w:p per paragraph. An empty string is an empty paragraph
// and a "\t" inside a paragraph becomes a w:tab.
func DOCX(paragraphs ...string) []byte {
	var body strings.Builder
	for _, p := range paragraphs {
		if p == "" {
			body.WriteString("<w:p/>")
			continue
		}
		body.WriteString("<w:p>")
		for i, run := range strings.Split(p, "\t") {
			body.WriteString("<w:r>")
			if i > 0 {
				body.WriteString("<w:tab/>")
			}
			body.WriteString(`<w:t xml:space="preserve">`)
			_ = xml.EscapeText(&body, []byte(run))
			body.WriteString("</w:t></w:r>")
		}
		body.WriteString("</w:p>")
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordNamespace + `"><w:body>` + body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range []struct{ name, data string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", packageRels},
		{"word/document.xml", document},
		{"word/_rels/document.xml.rels", documentRels},
	} {
		w, err := zw.Create(part.name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// SampleResume is a small single-column resume used across package tests.
var SampleResume = []string{
	"Jane Doe",
	"Senior Software Engineer",
	"jane.doe@example.com | +1 (555) 123-4567 | San Francisco, CA",
	"linkedin.com/in/janedoe | github.com/janedoe",
	"",
	"SUMMARY",
	"Backend engineer with eight years of experience building distributed systems.",
	"",
	"EXPERIENCE",
	"Senior Engineer",
	"Acme Corp",
	"Jan 2020 - Present",
	"- Led migration to Go microservices",
	"- Reduced p99 latency by 40%",
	"",
	"EDUCATION",
	"State University",
	"B.S. Computer Science",
	"2012 - 2016",
	"",
	"SKILLS",
	"Go, Python, go, Kubernetes",
}
