package extract

import "strings"

const minProseWords = 6

// Summary joins the prose of a block. An explicit summary block keeps every
// line; the contact preamble contributes only sentence-like lines that are
// not contact details.
func Summary(lines []string, explicit bool) string {
	var parts []string
	for i, line := range nonEmpty(lines) {
		line = stripBullet(line)
		if line == "" {
			continue
		}
		if !explicit {
			if i == 0 || isContactLine(line) || wordCount(line) < minProseWords {
				continue
			}
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}
