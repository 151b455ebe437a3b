package export

import (
	"strconv"

	"github.com/honeycarbs/tenuretrack/internal/domain"
)

// Columns is the fixed export header, grouped identity, classification,
// compensation, content, status.
var Columns = []string{
	"position_title", "institution", "job_id", "institution_type", "update_date", "application_deadline",
	"location", "research_field", "position_type", "employment_type", "tenure_status", "trial_period",
	"salary", "salary_description", "working_hours_description",
	"job_description", "department", "qualifications", "teaching_requirements", "application_method",
	"notes", "is_active", "original_url",
}

// Row flattens a record in Columns order
func Row(r domain.JobRecord) []string {
	return []string{
		r.Identity.Title,
		r.Identity.Institution,
		r.Identity.JobID,
		r.Identity.InstitutionType,
		r.Identity.UpdateDate,
		r.Identity.ApplicationDeadline,
		r.Classification.Location,
		r.Classification.ResearchField,
		r.Classification.PositionType,
		r.Classification.EmploymentType,
		r.Classification.TenureStatus,
		r.Classification.TrialPeriod,
		r.Compensation.Salary,
		r.Compensation.SalaryDescription,
		r.Compensation.WorkingHoursDescription,
		r.Content.JobDescription,
		r.Content.Department,
		r.Content.Qualifications,
		r.Content.TeachingRequirements,
		r.Content.ApplicationMethod,
		r.Status.Notes,
		strconv.FormatBool(r.Status.IsActive),
		r.Status.OriginalURL,
	}
}
