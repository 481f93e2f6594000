package model

// PersonalInfo is the header block of the portfolio: identity and contact
// details shown on the landing page.
type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Linkedin string `json:"linkedin"`
	Image    string `json:"image"`
}

type Education struct {
	ID          int64  `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Cgpa        string `json:"cgpa,omitempty"`
	Percentage  string `json:"percentage,omitempty"`
	Location    string `json:"location"`
	Period      string `json:"period"`
}

// SetCgpa records a CGPA grade. CGPA and percentage are mutually exclusive,
// so setting one clears the other.
func (e *Education) SetCgpa(v string) {
	e.Cgpa = v
	e.Percentage = ""
}

func (e *Education) SetPercentage(v string) {
	e.Percentage = v
	e.Cgpa = ""
}

type Project struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	LiveLink     string   `json:"liveLink,omitempty"`
	GithubLink   string   `json:"githubLink,omitempty"`
	Featured     bool     `json:"featured"`
}

// Skills maps a category name (frontend, backend, ...) to an ordered skill
// list. The category set is open-ended; keys come from the admin panel.
type Skills map[string][]string

type AchievementType string

const (
	TypeAchievement AchievementType = "achievement"
	TypeCertificate AchievementType = "certificate"
)

type Achievement struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Date         string          `json:"date"` // YYYY-MM-DD
	Organization string          `json:"organization,omitempty"`
	Type         AchievementType `json:"type,omitempty"`
	CredentialID string          `json:"credentialId,omitempty"`
	// Certificate-only fields.
	CredentialURL string `json:"credentialUrl,omitempty"`
	ExpiryDate    string `json:"expiryDate,omitempty"`
}

// PortfolioDocument is the single root aggregate: the whole site content,
// replaced atomically on every admin save.
type PortfolioDocument struct {
	Personal          PersonalInfo  `json:"personal"`
	PersonalStatement string        `json:"personalStatement"`
	Education         []Education   `json:"education"`
	Projects          []Project     `json:"projects"`
	Skills            Skills        `json:"skills"`
	SoftSkills        []string      `json:"softSkills"`
	Hobbies           []string      `json:"hobbies"`
	Achievements      []Achievement `json:"achievements"`
}
