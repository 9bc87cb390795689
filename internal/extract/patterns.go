// Package extract holds the per-section field extractors. Every extractor is
// a pure function over the lines of one section block; anything it cannot
// parse confidently is skipped rather than reported as an error.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-folio/internal/models"
)

var (
	emailRe       = regexp.MustCompile(models.EmailRegex)
	phoneRe       = regexp.MustCompile(models.PhoneRegex)
	urlRe         = regexp.MustCompile(models.URLRegex)
	dateRangeRe   = regexp.MustCompile(models.DateRangeRegex)
	singleDateRe  = regexp.MustCompile(models.SingleDateRegex)
	yearRangeRe   = regexp.MustCompile(models.YearRangeRegex)
	locationRe    = regexp.MustCompile(models.LocationRegex)
	degreeRe      = regexp.MustCompile(models.DegreeRegex)
	institutionRe = regexp.MustCompile(models.InstitutionRegex)
	bulletRe      = regexp.MustCompile(models.BulletRegex)

	// separators between fields that share one line of a contact header
	segmentRe = regexp.MustCompile(`\s*[|•·◦⋅✉☎]\s*|\t+|\s{3,}`)
)

func stripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
}

func isBullet(line string) bool {
	return bulletRe.MatchString(line)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// nonEmpty returns the trimmed, non-blank lines.
func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
