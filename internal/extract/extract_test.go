package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-folio/internal/models"
)

func TestContact(t *testing.T) {
	lines := []string{
		"Jane Doe",
		"Senior Software Engineer",
		"jane.doe@example.com | +1 (555) 123-4567 | San Francisco, CA",
		"linkedin.com/in/janedoe | github.com/janedoe",
		"https://janedoe.dev",
	}
	assert.Equal(t, models.BasicInfo{
		Name:      "Jane Doe",
		Title:     "Senior Software Engineer",
		Email:     "jane.doe@example.com",
		Phone:     "+1 (555) 123-4567",
		Location:  "San Francisco, CA",
		LinkedIn:  "linkedin.com/in/janedoe",
		Github:    "github.com/janedoe",
		Portfolio: "https://janedoe.dev",
	}, Contact(lines))
}

func TestContactMultiline(t *testing.T) {
	lines := []string{"Jane Doe", "jane.doe@example.com", "(415) 555-0100", "San Francisco, CA"}
	assert.Equal(t, models.BasicInfo{
		Name:     "Jane Doe",
		Email:    "jane.doe@example.com",
		Phone:    "(415) 555-0100",
		Location: "San Francisco, CA",
	}, Contact(lines))
}

func TestContactHeadlineWithComma(t *testing.T) {
	info := Contact([]string{"Jane Doe", "Senior Engineer, Platform Team", "Austin, TX", "jane@example.com"})
	assert.Equal(t, "Senior Engineer, Platform Team", info.Title)
	assert.Equal(t, "Austin, TX", info.Location)

	info = Contact([]string{"Jane Doe", "Austin, TX", "jane@example.com"})
	assert.Empty(t, info.Title)
	assert.Equal(t, "Austin, TX", info.Location)
}

func TestContactWithoutName(t *testing.T) {
	info := Contact([]string{"jane@example.com", "Berlin, Germany"})
	assert.Empty(t, info.Name)
	assert.Empty(t, info.Title)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.Equal(t, "Berlin, Germany", info.Location)
}

func TestContactIgnoresDateRangesAsPhones(t *testing.T) {
	info := Contact([]string{"Jane Doe", "2019 - 2021"})
	assert.Empty(t, info.Phone)
	assert.Empty(t, Contact(nil))
}

func TestSummary(t *testing.T) {
	block := []string{"Backend engineer with eight years of experience.", "", "- Loves Go and distributed systems"}
	assert.Equal(t,
		"Backend engineer with eight years of experience. Loves Go and distributed systems",
		Summary(block, true))

	preamble := []string{
		"Jane Doe",
		"Engineer",
		"jane@example.com | +1 555 123 4567",
		"Pragmatic engineer who enjoys building reliable backend services.",
	}
	assert.Equal(t, "Pragmatic engineer who enjoys building reliable backend services.", Summary(preamble, false))
	assert.Empty(t, Summary(preamble[:3], false))
}

func TestSkills(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"comma list", []string{"Go, Python, go, Kubernetes"}, []string{"Go", "Python", "Kubernetes"}},
		{"labelled lines", []string{"Languages: Go, Rust", "Tools: Docker | Terraform"}, []string{"Go", "Rust", "Docker", "Terraform"}},
		{"bullets", []string{"• C++", "• .NET", "• Node.js."}, []string{"C++", ".NET", "Node.js"}},
		{"too long", []string{"I have worked on a great many different things over the years"}, []string{}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Skills(tt.lines))
		})
	}
}

func TestExperience(t *testing.T) {
	lines := []string{
		"Senior Engineer",
		"Acme Corp",
		"Jan 2020 - Present",
		"- Led migration to Go microservices",
		"- Reduced p99 latency by 40%",
		"",
		"Software Engineer at Initech",
		"Jun 2016 - Dec 2019",
		"Built billing pipelines.",
	}
	assert.Equal(t, []models.Experience{
		{
			Title:       "Senior Engineer",
			Company:     "Acme Corp",
			Date:        "Jan 2020 - Present",
			Description: "Led migration to Go microservices\nReduced p99 latency by 40%",
		},
		{
			Title:       "Software Engineer",
			Company:     "Initech",
			Date:        "Jun 2016 - Dec 2019",
			Description: "Built billing pipelines.",
		},
	}, Experience(lines))
}

func TestExperienceJoinedHeaderKeepsPreviousBody(t *testing.T) {
	lines := []string{
		"Senior Engineer",
		"Acme Corp",
		"Jan 2020 - Present",
		"- Led migration to Go microservices",
		"Kubernetes",
		"Software Engineer at Initech",
		"Jun 2016 - Dec 2019",
	}
	got := Experience(lines)
	require.Len(t, got, 2)
	assert.Equal(t, "Led migration to Go microservices\nKubernetes", got[0].Description)
	assert.Equal(t, "Software Engineer", got[1].Title)
	assert.Equal(t, "Initech", got[1].Company)
}

func TestExperienceSingleEntry(t *testing.T) {
	lines := []string{"Senior Engineer", "Acme Corp", "Jan 2020 - Present", "Built things."}
	assert.Equal(t, []models.Experience{{
		Title:       "Senior Engineer",
		Company:     "Acme Corp",
		Date:        "Jan 2020 - Present",
		Description: "Built things.",
	}}, Experience(lines))
}

func TestExperienceDateOnSameLine(t *testing.T) {
	lines := []string{
		"Staff Engineer",
		"Globex | 2021 - 2023",
		"Owned the platform team roadmap.",
	}
	got := Experience(lines)
	require.Len(t, got, 1)
	assert.Equal(t, "Staff Engineer", got[0].Title)
	assert.Equal(t, "Globex", got[0].Company)
	assert.Equal(t, "Owned the platform team roadmap.", got[0].Description)
	assert.Equal(t, "2021 - 2023", got[0].Date)
}

func TestExperienceWithoutDates(t *testing.T) {
	got := Experience([]string{"Did many things", "for many people"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEducation(t *testing.T) {
	lines := []string{
		"State University",
		"B.S. Computer Science",
		"2012 - 2016",
		"",
		"Master of Science in Data Science",
		"Tech Institute",
		"Sep 2017 - Jun 2019",
		"",
		"Coding Bootcamp",
		"2020",
		"Certificate in Web Development",
	}
	assert.Equal(t, []models.Education{
		{Institution: "State University", Degree: "B.S. Computer Science", Date: "2012 - 2016"},
		{Institution: "Tech Institute", Degree: "Master of Science in Data Science", Date: "Sep 2017 - Jun 2019"},
		{Institution: "Coding Bootcamp", Degree: "Certificate in Web Development", Date: "2020"},
	}, Education(lines))
}

func TestProjects(t *testing.T) {
	lines := []string{
		"Folio Builder - https://github.com/jane/folio",
		"Portfolio generator for resumes.",
		"Tech Stack: Go, React, go",
		"",
		"CLI Tool",
		"Command line helper",
		"Go, Cobra",
		"",
		"https://example.com/orphan",
	}
	assert.Equal(t, []models.Project{
		{
			Name:         "Folio Builder",
			Description:  "Portfolio generator for resumes.",
			Link:         "https://github.com/jane/folio",
			Technologies: []string{"Go", "React"},
		},
		{
			Name:         "CLI Tool",
			Description:  "Command line helper",
			Technologies: []string{"Go", "Cobra"},
		},
	}, Projects(lines))
}

func TestProjectsLinkLine(t *testing.T) {
	got := Projects([]string{"Weather Bot", "https://bot.example.com", "Slack bot that posts forecasts."})
	require.Len(t, got, 1)
	assert.Equal(t, "https://bot.example.com", got[0].Link)
	assert.Equal(t, "Slack bot that posts forecasts.", got[0].Description)
	assert.Equal(t, []string{}, got[0].Technologies)
}
