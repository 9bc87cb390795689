package extract

import (
	"regexp"
	"strings"

	"resume-folio/internal/helper"
)

const (
	maxSkillLen   = 50
	maxLabelLen   = 30
	maxSkillWords = 6
)

var skillSplitRe = regexp.MustCompile(`[,;|•·▪●◦\t]`)

// Skills splits a skills block on commas, bullets, pipes, semicolons and
// newlines. "Label: a, b" lines drop the label. Duplicates are removed
// case-insensitively, keeping the first spelling.
func Skills(lines []string) []string {
	var tokens []string
	for _, line := range nonEmpty(lines) {
		line = stripBullet(line)
		if i := strings.IndexByte(line, ':'); i > 0 && i <= maxLabelLen {
			line = line[i+1:]
		}
		for _, tok := range skillSplitRe.Split(line, -1) {
			tok = strings.TrimRight(strings.TrimSpace(tok), ".")
			if tok == "" || runeLen(tok) > maxSkillLen || wordCount(tok) > maxSkillWords {
				continue
			}
			tokens = append(tokens, tok)
		}
	}
	return helper.DedupeFold(tokens)
}
