package models

const (
	monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
	yearPattern  = `(?:19|20)\d{2}`
	pointPattern = `(?:` + monthPattern + `\s+` + yearPattern + `|\d{1,2}/` + yearPattern + `|` + yearPattern + `)`

	EmailRegex       = `[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`
	PhoneRegex       = `\+?\(?\d[\d\s().\-]{5,}\d`
	URLRegex         = `(?i)(?:https?://|www\.)[^\s|,;<>()"']+|(?:[a-z0-9\-]+\.)*(?:linkedin\.com|github\.com)/[^\s|,;<>()"']*`
	DateRangeRegex   = `(?i)\b` + pointPattern + `\s*(?:-|–|—|to|until)\s*(?:` + pointPattern + `|present|current|now|today)\b`
	SingleDateRegex  = `(?i)^\s*(?:expected\s+|graduated\s+|since\s+)?` + pointPattern + `\s*$`
	YearRangeRegex   = `^` + yearPattern + `\s*[-–—]\s*` + yearPattern + `$`
	LocationRegex    = `^\p{Lu}[\p{L}.'\- ]*,\s*\p{Lu}[\p{L}.'\- ]*(?:,\s*\p{Lu}[\p{L}.'\- ]*)?$`
	DegreeRegex      = `(?i)\b(?:bachelor|master|doctor|associate|diploma|certificate|mba|ph\.?\s?d|b\.?\s?sc|m\.?\s?sc|b\.?\s?eng|m\.?\s?eng|b\.?\s?tech|m\.?\s?tech|[bm]\.[sae]\.)` + `|\b(?:BS|BA|MS|MA)\s+(?:in|of)\b`
	InstitutionRegex = `(?i)\b(?:university|college|institute|school|academy|polytechnic|universidad|universit[äé])\b`
	BulletRegex      = `^[\s•●○◦▪▫■□·‣⁃∙\-*–—>]+`
)

// SectionKeywords is the curated heading vocabulary per section. Keywords are
// lower case with "&" spelled "and"; matching is whole-word.
var SectionKeywords = map[SectionLabel][]string{
	LabelContact: {
		"contact", "contact information", "contact info", "contact details",
		"personal information", "personal details",
	},
	LabelSummary: {
		"summary", "professional summary", "career summary", "executive summary",
		"profile", "professional profile", "about", "about me", "objective",
		"career objective", "overview", "professional overview",
	},
	LabelExperience: {
		"experience", "work experience", "professional experience", "relevant experience",
		"employment", "employment history", "work history", "career history",
		"internships", "internship experience", "professional background",
	},
	LabelEducation: {
		"education", "academic background", "academics", "education and training",
		"qualifications", "academic qualifications", "education and certifications",
	},
	LabelSkills: {
		"skills", "technical skills", "core skills", "key skills", "skill set", "skillset",
		"competencies", "core competencies", "technologies", "tech stack", "tools",
		"expertise", "areas of expertise", "proficiencies", "technical proficiencies",
		"programming languages",
	},
	LabelProjects: {
		"projects", "personal projects", "side projects", "selected projects",
		"key projects", "academic projects", "project experience", "open source",
		"open source contributions",
	},
	// Headings that are recognised so their content does not bleed into the
	// previous section, but which have no extractor.
	LabelUnknown: {
		"awards", "honors", "honours", "achievements", "certifications", "certificates",
		"licenses", "publications", "languages", "interests", "hobbies", "activities",
		"volunteer", "volunteering", "volunteer experience", "references", "leadership",
		"memberships", "affiliations", "courses", "coursework", "training",
	},
}

// HeadingModifiers may accompany a keyword in a heading without disqualifying it.
var HeadingModifiers = map[string]bool{
	"professional": true, "work": true, "technical": true, "core": true, "key": true,
	"relevant": true, "selected": true, "select": true, "personal": true, "academic": true,
	"additional": true, "other": true, "and": true, "of": true, "my": true, "the": true,
	"recent": true, "notable": true, "career": true, "history": true, "summary": true,
}
