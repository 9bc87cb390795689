package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-folio/internal/models"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
	maxTitleLen    = 60
	maxTitleWords  = 8
	maxNameWords   = 5
)

// roleWords mark a comma line such as "Senior Engineer, Platform Team" as a
// headline rather than a "City, Region" location.
var roleWords = map[string]bool{
	"engineer": true, "developer": true, "designer": true, "manager": true,
	"analyst": true, "scientist": true, "consultant": true, "architect": true,
	"lead": true, "director": true, "specialist": true, "intern": true,
	"administrator": true, "coordinator": true, "officer": true, "programmer": true,
	"researcher": true, "founder": true, "head": true, "team": true,
	"senior": true, "junior": true, "principal": true, "staff": true,
	"freelance": true, "product": true, "software": true, "platform": true,
}

// Contact pulls the header fields out of the contact block. Summary is left
// empty; see Summary.
func Contact(lines []string) models.BasicInfo {
	var info models.BasicInfo
	lines = nonEmpty(lines)
	if len(lines) == 0 {
		return info
	}

	nameLine := -1
	if first := lines[0]; !isContactLine(first) && isPersonName(first) {
		info.Name = first
		nameLine = 0
	}

	titleLine := -1
	if nameLine == 0 && len(lines) > 1 && isJobTitle(lines[1]) {
		info.Title = lines[1]
		titleLine = 1
	}

	for i, line := range lines {
		if i == nameLine || i == titleLine {
			continue
		}
		for _, seg := range segmentRe.Split(line, -1) {
			scanSegment(seg, &info)
		}
	}
	return info
}

func scanSegment(seg string, info *models.BasicInfo) {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return
	}
	if info.Email == "" {
		info.Email = emailRe.FindString(seg)
	}
	rest := emailRe.ReplaceAllString(seg, " ")

	for _, u := range urlRe.FindAllString(rest, -1) {
		classifyURL(strings.TrimRight(u, ".,;:"), info)
	}
	rest = urlRe.ReplaceAllString(rest, " ")

	if info.Phone == "" {
		info.Phone = findPhone(rest)
	}
	if info.Location == "" && isLocation(seg) {
		info.Location = seg
	}
}

func classifyURL(u string, info *models.BasicInfo) {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, "linkedin.com"):
		if info.LinkedIn == "" {
			info.LinkedIn = u
		}
	case strings.Contains(lower, "github.com"):
		if info.Github == "" {
			info.Github = u
		}
	default:
		if info.Portfolio == "" {
			info.Portfolio = u
		}
	}
}

// findPhone returns the first 7-15 digit run, formatting untouched.
func findPhone(s string) string {
	for _, m := range phoneRe.FindAllString(s, -1) {
		m = strings.TrimSpace(m)
		if yearRangeRe.MatchString(m) || dateRangeRe.MatchString(m) {
			continue
		}
		digits := 0
		for _, r := range m {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits >= minPhoneDigits && digits <= maxPhoneDigits {
			return m
		}
	}
	return ""
}

func isLocation(s string) bool {
	return runeLen(s) <= 60 && wordCount(s) <= 6 && locationRe.MatchString(s)
}

func isContactLine(line string) bool {
	return emailRe.MatchString(line) || urlRe.MatchString(line) ||
		findPhone(line) != "" || isLocation(line)
}

// isPersonName accepts one to five title-case words made of letters and
// name punctuation.
func isPersonName(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > maxNameWords {
		return false
	}
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
		for _, c := range w {
			if !unicode.IsLetter(c) && !strings.ContainsRune(".'’-", c) {
				return false
			}
		}
	}
	return true
}

func isJobTitle(line string) bool {
	if emailRe.MatchString(line) || urlRe.MatchString(line) || findPhone(line) != "" {
		return false
	}
	if hasDigit(line) || isBullet(line) || (isLocation(line) && !hasRoleWord(line)) {
		return false
	}
	if runeLen(line) > maxTitleLen || wordCount(line) > maxTitleWords {
		return false
	}
	return !strings.HasSuffix(line, ".")
}

func hasRoleWord(line string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if roleWords[w] {
			return true
		}
	}
	return false
}
