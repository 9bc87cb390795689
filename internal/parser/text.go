package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"resume-folio/internal/models"
)

var invisible = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u00ad", "",
)

// normalizeLines applies NFKC (folding ligatures and non-breaking spaces),
// trims trailing space, collapses blank runs and drops blank edges.
func normalizeLines(raw []string) []string {
	out := make([]string, 0, len(raw))
	blank := true
	for _, line := range raw {
		if line == models.PageBreak {
			if len(out) > 0 && out[len(out)-1] != models.PageBreak {
				out = append(out, models.PageBreak)
			}
			blank = true
			continue
		}
		line = norm.NFKC.String(invisible.Replace(line))
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 {
		last := out[len(out)-1]
		if last != "" && last != models.PageBreak {
			break
		}
		out = out[:len(out)-1]
	}
	return out
}
