// Package validation checks and cleans candidate portfolio documents before
// they reach any storage sink. Validation accumulates every error (no
// fail-fast) so the admin panel can show all problems at once; sanitization
// runs as a separate pass and only when validation found nothing.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

// Length caps, enforced per field and counted in characters, not bytes.
const (
	MaxNameLen        = 100
	MaxTitleLen       = 200
	MaxPhoneLen       = 20
	MaxLocationLen    = 100
	MaxInstitutionLen = 200
	MaxDegreeLen      = 200
	MaxProjectNameLen = 100
	MaxDescriptionLen = 1000
	MaxTechnologies   = 20
	MaxProjects       = 20
	MaxEducation      = 10
	MaxAchievements   = 50
	MaxSkillsPerCat   = 50
	MaxSkillLen       = 50
	MaxURLLen         = 2000
	MaxStringLen      = 10000
)

var (
	scriptTagRe  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	jsSchemeRe   = regexp.MustCompile(`(?i)javascript:`)
	eventAttrRe  = regexp.MustCompile(`(?i)on\w+\s*=`)
	httpRe       = regexp.MustCompile(`(?i)^https?://`)
	dangerousRe  = regexp.MustCompile(`(?i)(javascript|vbscript|file):`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dateRe       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// SanitizeString trims and strips script tags, javascript: URLs and inline
// event handlers from a free-text field. Length is capped to prevent DoS.
func SanitizeString(input string) string {
	s := strings.TrimSpace(input)
	s = scriptTagRe.ReplaceAllString(s, "")
	s = jsSchemeRe.ReplaceAllString(s, "")
	s = eventAttrRe.ReplaceAllString(s, "")
	return truncateRunes(s, MaxStringLen)
}

// truncateRunes caps s at max characters, cutting on a rune boundary so the
// result is always valid UTF-8.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// runeLen counts characters, not bytes; multi-byte names must not trip the
// caps early.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// SanitizeURL normalizes a URL field. Empty stays empty, root-relative paths
// pass through untouched, bare hosts get an https:// prefix, and anything
// carrying a javascript:/vbscript:/file: scheme is emptied out entirely.
// Idempotent: sanitizing an already-sanitized URL is a no-op.
func SanitizeURL(input string) string {
	cleaned := strings.TrimSpace(input)
	if cleaned == "" {
		return ""
	}
	// Local paths like /profile.jpg are preserved as-is.
	if strings.HasPrefix(cleaned, "/") {
		return cleaned
	}
	if !httpRe.MatchString(cleaned) {
		cleaned = "https://" + cleaned
	}
	if dangerousRe.MatchString(cleaned) {
		return ""
	}
	return truncateRunes(cleaned, MaxURLLen)
}

// SanitizeEmail lowercases and trims an email address. Anything that does not
// look like local@domain.tld resolves to the empty string.
func SanitizeEmail(input string) string {
	email := strings.ToLower(strings.TrimSpace(input))
	if !emailRe.MatchString(email) {
		return ""
	}
	return email
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating a candidate document. Sanitized is a
// deep, independently sanitized copy and is populated only when Errors is
// empty; it is never the caller's input object.
type Result struct {
	Valid     bool                     `json:"isValid"`
	Errors    []FieldError             `json:"errors"`
	Sanitized *model.PortfolioDocument `json:"sanitizedData,omitempty"`
}

// ValidatePortfolioJSON validates an untrusted JSON payload. Malformed input
// never panics; structural problems are reported as a "root" field error.
func ValidatePortfolioJSON(raw []byte) Result {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Result{Errors: []FieldError{{Field: "root", Message: "Invalid data structure"}}}
	}

	var doc model.PortfolioDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
			return Result{Errors: []FieldError{{Field: typeErr.Field, Message: "Unexpected value type"}}}
		}
		return Result{Errors: []FieldError{{Field: "root", Message: "Invalid data structure"}}}
	}

	var errs []FieldError
	if _, ok := probe["personal"]; ok {
		errs = append(errs, validatePersonal(doc.Personal)...)
	} else {
		errs = append(errs, FieldError{Field: "personal", Message: "Personal information is required"})
	}
	errs = append(errs, validateEducation(doc.Education)...)
	errs = append(errs, validateProjects(doc.Projects)...)
	errs = append(errs, validateSkills(doc.Skills)...)
	errs = append(errs, validateAchievements(doc.Achievements)...)

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Valid: true, Errors: []FieldError{}, Sanitized: SanitizePortfolio(&doc)}
}

// ValidatePortfolio validates an already-decoded candidate value.
func ValidatePortfolio(candidate any) Result {
	raw, err := json.Marshal(candidate)
	if err != nil || candidate == nil {
		return Result{Errors: []FieldError{{Field: "root", Message: "Invalid data structure"}}}
	}
	return ValidatePortfolioJSON(raw)
}

func validatePersonal(p model.PersonalInfo) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, FieldError{"personal.name", "Name is required"})
	} else if runeLen(p.Name) > MaxNameLen {
		errs = append(errs, FieldError{"personal.name", "Name must be less than 100 characters"})
	}
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, FieldError{"personal.title", "Title is required"})
	} else if runeLen(p.Title) > MaxTitleLen {
		errs = append(errs, FieldError{"personal.title", "Title must be less than 200 characters"})
	}
	if p.Email != "" && SanitizeEmail(p.Email) == "" {
		errs = append(errs, FieldError{"personal.email", "Invalid email format"})
	}
	if runeLen(p.Phone) > MaxPhoneLen {
		errs = append(errs, FieldError{"personal.phone", "Phone number must be less than 20 characters"})
	}
	if runeLen(p.Location) > MaxLocationLen {
		errs = append(errs, FieldError{"personal.location", "Location must be less than 100 characters"})
	}
	return errs
}

func validateEducation(education []model.Education) []FieldError {
	var errs []FieldError
	if len(education) > MaxEducation {
		errs = append(errs, FieldError{"education", "Maximum 10 education entries allowed"})
	}
	for i, edu := range education {
		if strings.TrimSpace(edu.Institution) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("education[%d].institution", i), "Institution is required"})
		} else if runeLen(edu.Institution) > MaxInstitutionLen {
			errs = append(errs, FieldError{fmt.Sprintf("education[%d].institution", i), "Institution name too long"})
		}
		if strings.TrimSpace(edu.Degree) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("education[%d].degree", i), "Degree is required"})
		} else if runeLen(edu.Degree) > MaxDegreeLen {
			errs = append(errs, FieldError{fmt.Sprintf("education[%d].degree", i), "Degree name too long"})
		}
	}
	return errs
}

func validateProjects(projects []model.Project) []FieldError {
	var errs []FieldError
	if len(projects) > MaxProjects {
		errs = append(errs, FieldError{"projects", "Maximum 20 projects allowed"})
	}
	for i, project := range projects {
		if strings.TrimSpace(project.Name) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("projects[%d].name", i), "Project name is required"})
		} else if runeLen(project.Name) > MaxProjectNameLen {
			errs = append(errs, FieldError{fmt.Sprintf("projects[%d].name", i), "Project name too long"})
		}
		if strings.TrimSpace(project.Description) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("projects[%d].description", i), "Project description is required"})
		} else if runeLen(project.Description) > MaxDescriptionLen {
			errs = append(errs, FieldError{fmt.Sprintf("projects[%d].description", i), "Project description too long"})
		}
		if len(project.Technologies) > MaxTechnologies {
			errs = append(errs, FieldError{fmt.Sprintf("projects[%d].technologies", i), "Maximum 20 technologies per project"})
		}
		if project.LiveLink != "" && SanitizeURL(project.LiveLink) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("projects[%d].liveLink", i), "Invalid live link URL"})
		}
		if project.GithubLink != "" && SanitizeURL(project.GithubLink) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("projects[%d].githubLink", i), "Invalid GitHub link URL"})
		}
	}
	return errs
}

func validateSkills(skills model.Skills) []FieldError {
	var errs []FieldError
	for category, categorySkills := range skills {
		if len(categorySkills) > MaxSkillsPerCat {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("skills.%s", category),
				Message: fmt.Sprintf("Maximum 50 skills allowed in %s", category),
			})
		}
		for i, skill := range categorySkills {
			if runeLen(skill) > MaxSkillLen {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("skills.%s[%d]", category, i),
					Message: "Skill name must be a string under 50 characters",
				})
			}
		}
	}
	return errs
}

func validateAchievements(achievements []model.Achievement) []FieldError {
	var errs []FieldError
	if len(achievements) > MaxAchievements {
		errs = append(errs, FieldError{"achievements", "Maximum 50 achievements allowed"})
	}
	for i, a := range achievements {
		if strings.TrimSpace(a.Title) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("achievements[%d].title", i), "Achievement title is required"})
		}
		if strings.TrimSpace(a.Description) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("achievements[%d].description", i), "Achievement description is required"})
		}
		if a.Date == "" {
			errs = append(errs, FieldError{fmt.Sprintf("achievements[%d].date", i), "Achievement date is required"})
		} else if !dateRe.MatchString(a.Date) {
			errs = append(errs, FieldError{fmt.Sprintf("achievements[%d].date", i), "Invalid date format (YYYY-MM-DD required)"})
		}
		if a.CredentialURL != "" && SanitizeURL(a.CredentialURL) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("achievements[%d].credentialUrl", i), "Invalid credential URL"})
		}
	}
	return errs
}

// SanitizePortfolio produces a cleaned deep copy of the document. Every leaf
// string of every sub-section passes through the matching sanitizer.
func SanitizePortfolio(doc *model.PortfolioDocument) *model.PortfolioDocument {
	out := &model.PortfolioDocument{
		Personal: model.PersonalInfo{
			Name:     SanitizeString(doc.Personal.Name),
			Title:    SanitizeString(doc.Personal.Title),
			Location: SanitizeString(doc.Personal.Location),
			Phone:    SanitizeString(doc.Personal.Phone),
			Email:    SanitizeEmail(doc.Personal.Email),
			Linkedin: SanitizeString(doc.Personal.Linkedin),
			Image:    SanitizeURL(doc.Personal.Image),
		},
		PersonalStatement: SanitizeString(doc.PersonalStatement),
	}

	for _, edu := range doc.Education {
		clean := model.Education{
			ID:          edu.ID,
			Institution: SanitizeString(edu.Institution),
			Degree:      SanitizeString(edu.Degree),
			Location:    SanitizeString(edu.Location),
			Period:      SanitizeString(edu.Period),
		}
		// CGPA and percentage are mutually exclusive; percentage wins when
		// both arrive, mirroring the panel's update behavior.
		if edu.Percentage != "" {
			clean.SetPercentage(SanitizeString(edu.Percentage))
		} else if edu.Cgpa != "" {
			clean.SetCgpa(SanitizeString(edu.Cgpa))
		}
		out.Education = append(out.Education, clean)
	}

	for _, project := range doc.Projects {
		clean := model.Project{
			ID:          project.ID,
			Name:        SanitizeString(project.Name),
			Description: SanitizeString(project.Description),
			LiveLink:    SanitizeURL(project.LiveLink),
			GithubLink:  SanitizeURL(project.GithubLink),
			Featured:    project.Featured,
		}
		clean.Technologies = make([]string, 0, len(project.Technologies))
		for _, tech := range project.Technologies {
			clean.Technologies = append(clean.Technologies, SanitizeString(tech))
		}
		out.Projects = append(out.Projects, clean)
	}

	if doc.Skills != nil {
		out.Skills = make(model.Skills, len(doc.Skills))
		for category, skills := range doc.Skills {
			cleaned := make([]string, 0, len(skills))
			for _, skill := range skills {
				cleaned = append(cleaned, SanitizeString(skill))
			}
			out.Skills[category] = cleaned
		}
	}

	for _, s := range doc.SoftSkills {
		out.SoftSkills = append(out.SoftSkills, SanitizeString(s))
	}
	for _, h := range doc.Hobbies {
		out.Hobbies = append(out.Hobbies, SanitizeString(h))
	}

	for _, a := range doc.Achievements {
		out.Achievements = append(out.Achievements, model.Achievement{
			ID:            a.ID,
			Title:         SanitizeString(a.Title),
			Description:   SanitizeString(a.Description),
			Date:          a.Date,
			Organization:  SanitizeString(a.Organization),
			Type:          a.Type,
			CredentialID:  SanitizeString(a.CredentialID),
			CredentialURL: SanitizeURL(a.CredentialURL),
			ExpiryDate:    a.ExpiryDate,
		})
	}

	return out
}

// ValidateTestimonial covers the adjacent content store's submissions.
// Boundary ratings 1 and 5 are valid.
func ValidateTestimonial(t *model.Testimonial) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, FieldError{"name", "Name is required"})
	}
	if strings.TrimSpace(t.Content) == "" {
		errs = append(errs, FieldError{"content", "Content is required"})
	}
	if t.Rating < 1 || t.Rating > 5 {
		errs = append(errs, FieldError{"rating", "Rating must be between 1 and 5"})
	}
	return errs
}
