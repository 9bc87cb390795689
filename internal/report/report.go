package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"resume-folio/internal/models"
)

const notAvailable = "N/A"

// Summary renders the review overview shown after an upload as markdown.
func Summary(result *models.ParseResult) string {
	p := result.Profile
	var b strings.Builder

	b.WriteString("## Resume Overview\n\n")
	field(&b, "Name", p.BasicInfo.Name)
	field(&b, "Email", p.BasicInfo.Email)
	field(&b, "Phone", p.BasicInfo.Phone)
	field(&b, "Location", p.BasicInfo.Location)

	field(&b, "Experience", count(len(p.Experience), "%d entries found", "No work experience found"))
	field(&b, "Education", count(len(p.Education), "%d entries found", "No education history found"))
	field(&b, "Skills", count(len(p.Skills), "%d skills found", "No skills found"))

	if result.LowConfidence {
		b.WriteString("\n> Little text could be read from this document. Please review every field.\n")
	}
	if len(result.Warnings) > 0 {
		b.WriteString("\n### Warnings\n\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func field(b *strings.Builder, label, value string) {
	if value == "" {
		value = notAvailable
	}
	fmt.Fprintf(b, "- **%s:** %s\n", label, value)
}

func count(n int, found, none string) string {
	if n == 0 {
		return none
	}
	return fmt.Sprintf(found, n)
}

// RenderHTML converts markdown to HTML. Raw HTML in the input is dropped.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
