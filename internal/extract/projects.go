package extract

import (
	"regexp"
	"strings"

	"resume-folio/internal/helper"
	"resume-folio/internal/models"
)

const maxTechTokenWords = 3

var (
	techLabelRe = regexp.MustCompile(`(?i)^(?:technologies|tech stack|tech|stack|built with|tools|tools used)\s*:\s*`)
	techSplitRe = regexp.MustCompile(`\s*[,|;]\s*`)
	linkLineRe  = regexp.MustCompile(`(?i)^(?:https?://|www\.)\S+$`)
)

// Projects reads one project per paragraph. Paragraphs end at blank lines and
// after a labelled technologies line.
func Projects(lines []string) []models.Project {
	out := []models.Project{}
	for _, para := range paragraphs(lines) {
		if p, ok := project(para); ok {
			out = append(out, p)
		}
	}
	return out
}

func paragraphs(lines []string) [][]string {
	var (
		out [][]string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
		if techLabelRe.MatchString(stripBullet(line)) {
			flush()
		}
	}
	flush()
	return out
}

func project(para []string) (models.Project, bool) {
	p := models.Project{Technologies: []string{}}
	p.Name = stripBullet(para[0])
	if u := urlRe.FindString(p.Name); u != "" {
		p.Link = strings.TrimRight(u, ".,;:")
		p.Name = strings.Trim(strings.Replace(p.Name, u, "", 1), " -–—|()")
	}
	if p.Name == "" || linkLineRe.MatchString(p.Name) {
		return p, false
	}

	var desc []string
	for i, line := range para[1:] {
		line = stripBullet(line)
		last := i == len(para)-2
		switch {
		case linkLineRe.MatchString(line):
			if p.Link == "" {
				p.Link = strings.TrimRight(line, ".,;:")
			}
		case techLabelRe.MatchString(line):
			p.Technologies = techList(techLabelRe.ReplaceAllString(line, ""))
		case last && isTechList(line):
			p.Technologies = techList(line)
		default:
			desc = append(desc, line)
		}
	}
	p.Description = strings.Join(desc, "\n")
	return p, true
}

// isTechList spots an unlabelled trailing "Go, React, Postgres" line.
func isTechList(line string) bool {
	if strings.HasSuffix(line, ".") {
		return false
	}
	tokens := techSplitRe.Split(line, -1)
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if tok == "" || wordCount(tok) > maxTechTokenWords {
			return false
		}
	}
	return true
}

func techList(line string) []string {
	return helper.DedupeFold(techSplitRe.Split(strings.TrimSpace(line), -1))
}
