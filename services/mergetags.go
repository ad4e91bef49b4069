package services

import (
	"strings"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

// DefaultLoginURL backs {{login_url}} when no site URL is configured.
const DefaultLoginURL = "https://neuroprogenyuniversity.netlify.app/login"

// MergeData fills the {{tag}} placeholders in administrator templates.
type MergeData struct {
	Name            string
	Email           string
	CourseName      string
	CohortName      string
	StartDate       string
	FacilitatorName string
	LoginURL        string
	LessonTitle     string
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// ApplyMergeTags substitutes the recognized tags in one pass, so values that
// themselves contain a tag are not expanded again. Unknown tags are kept.
func ApplyMergeTags(template string, data MergeData) string {
	r := strings.NewReplacer(
		"{{name}}", orDefault(data.Name, "there"),
		"{{email}}", data.Email,
		"{{course_name}}", orDefault(data.CourseName, "the program"),
		"{{cohort_name}}", orDefault(data.CohortName, "your cohort"),
		"{{start_date}}", orDefault(data.StartDate, "TBD"),
		"{{facilitator_name}}", orDefault(data.FacilitatorName, "your facilitator"),
		"{{login_url}}", orDefault(data.LoginURL, DefaultLoginURL),
		"{{lesson_title}}", orDefault(data.LessonTitle, "your next lesson"),
	)
	return r.Replace(template)
}

const startDateLayout = "January 2, 2006"

// withCohort copies the cohort fields used by templates.
func (d MergeData) withCohort(c *models.Cohort) MergeData {
	if c == nil {
		return d
	}
	d.CohortName = c.Name
	if start, ok := c.StartTime(); ok {
		d.StartDate = start.Format(startDateLayout)
	}
	if c.FacilitatorName != nil {
		d.FacilitatorName = *c.FacilitatorName
	}
	return d
}
