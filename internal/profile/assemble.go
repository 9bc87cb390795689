package profile

import (
	"strings"

	"resume-folio/internal/helper"
	"resume-folio/internal/models"
)

// Assemble merges extractor outputs into a fully shaped profile: strings are
// trimmed, lists are never nil, empty records are dropped and skills are
// deduplicated case-insensitively. A non-empty summary overrides
// contact.Summary. Assemble is idempotent on its own output.
func Assemble(
	contact models.BasicInfo,
	summary string,
	experience []models.Experience,
	education []models.Education,
	skills []string,
	projects []models.Project,
) models.ParsedProfile {
	p := models.NewParsedProfile()

	p.BasicInfo = models.BasicInfo{
		Name:      clean(contact.Name),
		Title:     clean(contact.Title),
		Email:     clean(contact.Email),
		Phone:     clean(contact.Phone),
		Location:  clean(contact.Location),
		LinkedIn:  clean(contact.LinkedIn),
		Github:    clean(contact.Github),
		Portfolio: clean(contact.Portfolio),
		Summary:   clean(contact.Summary),
	}
	if s := clean(summary); s != "" {
		p.BasicInfo.Summary = s
	}

	for _, e := range experience {
		e = models.Experience{
			Title:       clean(e.Title),
			Company:     clean(e.Company),
			Date:        clean(e.Date),
			Description: cleanBlock(e.Description),
		}
		if e != (models.Experience{}) {
			p.Experience = append(p.Experience, e)
		}
	}
	for _, e := range education {
		e = models.Education{
			Institution: clean(e.Institution),
			Degree:      clean(e.Degree),
			Date:        clean(e.Date),
		}
		if e != (models.Education{}) {
			p.Education = append(p.Education, e)
		}
	}
	p.Skills = helper.DedupeFold(skills)
	for _, pr := range projects {
		pr = models.Project{
			Name:         clean(pr.Name),
			Description:  cleanBlock(pr.Description),
			Link:         clean(pr.Link),
			Technologies: helper.DedupeFold(pr.Technologies),
		}
		if pr.Name != "" || pr.Description != "" || pr.Link != "" || len(pr.Technologies) > 0 {
			p.Projects = append(p.Projects, pr)
		}
	}
	return p
}

// Normalize re-runs Assemble over an existing profile, e.g. one edited by hand.
func Normalize(p models.ParsedProfile) models.ParsedProfile {
	return Assemble(p.BasicInfo, p.BasicInfo.Summary, p.Experience, p.Education, p.Skills, p.Projects)
}

// clean collapses internal whitespace on a single-line field.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanBlock trims each line of a multi-line field and drops blank ones.
func cleanBlock(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = clean(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
