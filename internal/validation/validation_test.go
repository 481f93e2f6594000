package validation

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

func validDocument() map[string]any {
	return map[string]any{
		"personal": map[string]any{
			"name":  "Hanzala Khan",
			"title": "Full Stack Developer",
			"email": "hanzalakhan0913@gmail.com",
			"image": "/profile.jpg",
		},
		"personalStatement": "Building things.",
		"projects": []map[string]any{
			{
				"id":           1700000000101,
				"name":         "Portfolio",
				"description":  "Personal site",
				"technologies": []string{"Go"},
				"liveLink":     "hanzalakhan.dev",
				"featured":     true,
			},
		},
		"achievements": []map[string]any{
			{
				"id":          1700000000201,
				"title":       "Hackathon Winner",
				"description": "First place",
				"date":        "2023-09-15",
			},
		},
	}
}

func TestSanitizeURL(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"  ":                      "",
		"/me.png":                 "/me.png",
		"https://x.com":           "https://x.com",
		"http://x.com":            "http://x.com",
		"example.com":             "https://example.com",
		"javascript:alert(1)":     "",
		"JaVaScRiPt:alert(1)":     "",
		"vbscript:msgbox":         "",
		"file:///etc/passwd":      "",
		"  https://padded.com  ":  "https://padded.com",
	}
	for input, want := range cases {
		assert.Equal(t, want, SanitizeURL(input), "input %q", input)
	}
}

func TestSanitizeURLIdempotent(t *testing.T) {
	inputs := []string{
		"", "/me.png", "https://x.com", "example.com", "javascript:alert(1)",
		"file:///x", "  spaced.com ", strings.Repeat("a", 3000) + ".com",
	}
	for _, u := range inputs {
		once := SanitizeURL(u)
		assert.Equal(t, once, SanitizeURL(once), "input %q", u)
	}
}

func TestSanitizeURLCapsLength(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 3000)
	got := SanitizeURL(long)
	assert.Len(t, got, MaxURLLen)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "before after", SanitizeString("before<script>alert(1)</script> after"))
	assert.NotContains(t, SanitizeString("<script>alert(1)</script>safe"), "script")
	assert.NotContains(t, SanitizeString("click javascript:alert(1)"), "javascript:")
	assert.NotContains(t, SanitizeString(`<img onerror=alert(1)>`), "onerror=")
	assert.Len(t, SanitizeString(strings.Repeat("x", MaxStringLen+5)), MaxStringLen)
}

func TestLengthCapsCountCharactersNotBytes(t *testing.T) {
	// 34 Devanagari characters are 102 bytes but well under the 100-char cap.
	doc := validDocument()
	doc["personal"].(map[string]any)["name"] = strings.Repeat("ख", 34)
	raw, _ := json.Marshal(doc)

	result := ValidatePortfolioJSON(raw)
	require.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Equal(t, strings.Repeat("ख", 34), result.Sanitized.Personal.Name)

	// 101 characters is over the cap regardless of byte width.
	doc["personal"].(map[string]any)["name"] = strings.Repeat("ख", MaxNameLen+1)
	raw, _ = json.Marshal(doc)
	result = ValidatePortfolioJSON(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "personal.name", result.Errors[0].Field)
}

func TestTruncationKeepsValidUTF8(t *testing.T) {
	long := SanitizeString(strings.Repeat("é", MaxStringLen+5))
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, MaxStringLen, utf8.RuneCountInString(long))

	url := SanitizeURL("https://example.com/" + strings.Repeat("ü", 3000))
	assert.True(t, utf8.ValidString(url))
	assert.Equal(t, MaxURLLen, utf8.RuneCountInString(url))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", SanitizeEmail("  User@Example.COM "))
	assert.Equal(t, "", SanitizeEmail("not-an-email"))
	assert.Equal(t, "", SanitizeEmail("a b@c.com"))
	assert.Equal(t, "", SanitizeEmail("missing@tld"))
}

func TestValidateRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `[1,2,3]`, `not json`} {
		result := ValidatePortfolioJSON([]byte(raw))
		require.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "root", result.Errors[0].Field)
		assert.Nil(t, result.Sanitized)
	}
}

func TestValidateOversizedFieldPath(t *testing.T) {
	doc := validDocument()
	doc["personal"].(map[string]any)["name"] = strings.Repeat("a", 101)
	raw, _ := json.Marshal(doc)

	result := ValidatePortfolioJSON(raw)
	require.False(t, result.Valid)
	assert.Nil(t, result.Sanitized)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "personal.name")
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	doc := validDocument()
	doc["personal"].(map[string]any)["name"] = ""
	doc["personal"].(map[string]any)["title"] = ""
	doc["projects"].([]map[string]any)[0]["name"] = ""
	raw, _ := json.Marshal(doc)

	result := ValidatePortfolioJSON(raw)
	require.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 3)
}

func TestValidateMissingPersonal(t *testing.T) {
	doc := validDocument()
	delete(doc, "personal")
	raw, _ := json.Marshal(doc)

	result := ValidatePortfolioJSON(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "personal", result.Errors[0].Field)
}

func TestValidateAchievementDate(t *testing.T) {
	doc := validDocument()
	doc["achievements"].([]map[string]any)[0]["date"] = "2025-13-40"
	raw, _ := json.Marshal(doc)

	// Only the shape is checked, so an impossible calendar date still
	// passes as long as it matches YYYY-MM-DD.
	result := ValidatePortfolioJSON(raw)
	assert.True(t, result.Valid)

	doc["achievements"].([]map[string]any)[0]["date"] = "15-09-2023"
	raw, _ = json.Marshal(doc)
	result = ValidatePortfolioJSON(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "achievements[0].date", result.Errors[0].Field)

	doc["achievements"].([]map[string]any)[0]["date"] = "2025-03-10"
	raw, _ = json.Marshal(doc)
	assert.True(t, ValidatePortfolioJSON(raw).Valid)
}

func TestSanitizedDataIsIndependentCopy(t *testing.T) {
	raw, _ := json.Marshal(validDocument())
	result := ValidatePortfolioJSON(raw)
	require.True(t, result.Valid)
	require.NotNil(t, result.Sanitized)

	// Bare host gets a scheme, script content is stripped.
	assert.Equal(t, "https://hanzalakhan.dev", result.Sanitized.Projects[0].LiveLink)
	assert.Equal(t, "hanzalakhan0913@gmail.com", result.Sanitized.Personal.Email)

	// Mutating the sanitized copy must not feed back into a re-validation
	// of the same payload.
	result.Sanitized.Personal.Name = "changed"
	again := ValidatePortfolioJSON(raw)
	require.True(t, again.Valid)
	assert.Equal(t, "Hanzala Khan", again.Sanitized.Personal.Name)
}

func TestSanitizeStripsStoredXSS(t *testing.T) {
	doc := validDocument()
	doc["personal"].(map[string]any)["name"] = `Khan<script>document.cookie</script>`
	doc["personalStatement"] = `hello <img onclick=steal()> javascript:void(0)`
	raw, _ := json.Marshal(doc)

	result := ValidatePortfolioJSON(raw)
	require.True(t, result.Valid)
	assert.Equal(t, "Khan", result.Sanitized.Personal.Name)
	assert.NotContains(t, result.Sanitized.PersonalStatement, "onclick=")
	assert.NotContains(t, result.Sanitized.PersonalStatement, "javascript:")
}

func TestEducationGradeExclusivity(t *testing.T) {
	edu := model.Education{Cgpa: "8.7"}
	edu.SetPercentage("87")
	assert.Empty(t, edu.Cgpa)
	assert.Equal(t, "87", edu.Percentage)

	edu.SetCgpa("9.1")
	assert.Empty(t, edu.Percentage)
	assert.Equal(t, "9.1", edu.Cgpa)
}

func TestSanitizePortfolioGradePreference(t *testing.T) {
	doc := validDocument()
	doc["education"] = []map[string]any{
		{
			"id":          1,
			"institution": "University of Mumbai",
			"degree":      "B.E.",
			"cgpa":        "8.7",
			"percentage":  "87",
		},
	}
	raw, _ := json.Marshal(doc)

	result := ValidatePortfolioJSON(raw)
	require.True(t, result.Valid)
	require.Len(t, result.Sanitized.Education, 1)
	// When both grades arrive, percentage wins and cgpa is cleared.
	assert.Equal(t, "87", result.Sanitized.Education[0].Percentage)
	assert.Empty(t, result.Sanitized.Education[0].Cgpa)
}

func TestValidateListCaps(t *testing.T) {
	doc := validDocument()
	projects := make([]map[string]any, MaxProjects+1)
	for i := range projects {
		projects[i] = map[string]any{"id": i, "name": "p", "description": "d"}
	}
	doc["projects"] = projects
	raw, _ := json.Marshal(doc)

	result := ValidatePortfolioJSON(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "projects", result.Errors[0].Field)
}

func TestValidateTestimonialRating(t *testing.T) {
	base := model.Testimonial{Name: "A", Content: "Great work"}

	for _, rating := range []int{1, 3, 5} {
		tm := base
		tm.Rating = rating
		assert.Empty(t, ValidateTestimonial(&tm), "rating %d", rating)
	}
	for _, rating := range []int{0, 6, -1} {
		tm := base
		tm.Rating = rating
		errs := ValidateTestimonial(&tm)
		assert.NotEmpty(t, errs, "rating %d", rating)
		assert.Equal(t, "rating", errs[0].Field)
	}
}
