package parser

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"resume-folio/internal/models"
)

const (
	// vertical movement, in font sizes, that starts a new line
	lineStep = 0.5
	// vertical gap, in font sizes, rendered as a blank line
	paragraphStep = 1.8
	// horizontal gap, in font sizes, rendered as a space
	wordGap = 0.2
)

func extractPDF(ctx context.Context, data []byte) (lines []string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines, pages, err = nil, 0, corrupt("pdf", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, corrupt("pdf", err)
	}

	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if i > 1 {
			lines = append(lines, models.PageBreak)
		}
		pageLines, err := pageText(page)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("skipping unreadable pdf page")
			continue
		}
		lines = append(lines, pageLines...)
	}
	return lines, pages, nil
}

// pageText rebuilds the lines of a page from positioned glyphs: a vertical
// move starts a new line and a visible horizontal gap becomes a space.
func pageText(page pdf.Page) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf page content: %v", r)
		}
	}()

	var (
		b    strings.Builder
		prev *pdf.Text
	)
	glyphs := page.Content().Text
	for i := range glyphs {
		t := &glyphs[i]
		if t.S == "" || t.S == "\n" {
			continue
		}
		if prev != nil {
			size := math.Max(math.Max(prev.FontSize, t.FontSize), 1)
			dy := prev.Y - t.Y
			switch {
			case math.Abs(dy) > size*lineStep:
				lines = append(lines, b.String())
				b.Reset()
				if dy > size*paragraphStep {
					lines = append(lines, "")
				}
			case prev.W > 0 && t.X-(prev.X+prev.W) > size*wordGap &&
				prev.S != " " && t.S != " ":
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		prev = t
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines, nil
}
