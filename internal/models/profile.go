package models

// BasicInfo holds the contact header of a resume.
type BasicInfo struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedIn"`
	Github    string `json:"github"`
	Portfolio string `json:"portfolio"`
	Summary   string `json:"summary"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Date        string `json:"date"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Link         string   `json:"link"`
	Technologies []string `json:"technologies"`
}

// ParsedProfile is the structured result of resume ingestion. Every field is
// always present: strings default to "" and lists to empty arrays.
type ParsedProfile struct {
	BasicInfo  BasicInfo    `json:"basicInfo"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
	Projects   []Project    `json:"projects"`
}

// NewParsedProfile returns an all-default profile.
func NewParsedProfile() ParsedProfile {
	return ParsedProfile{
		Experience: []Experience{},
		Education:  []Education{},
		Skills:     []string{},
		Projects:   []Project{},
	}
}

// IsEmpty reports whether nothing at all was extracted.
func (p ParsedProfile) IsEmpty() bool {
	return p.BasicInfo == (BasicInfo{}) &&
		len(p.Experience) == 0 &&
		len(p.Education) == 0 &&
		len(p.Skills) == 0 &&
		len(p.Projects) == 0
}

// ParseResult is what one pipeline run hands back to its caller.
type ParseResult struct {
	Profile       ParsedProfile `json:"profile"`
	LowConfidence bool          `json:"lowConfidence"`
	Warnings      []string      `json:"warnings"`
	Pages         int           `json:"pages"`
}
