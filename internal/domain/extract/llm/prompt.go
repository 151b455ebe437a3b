package llm

const promptHeader = `You are an HTML document analyzer for job postings from the JREC-IN Portal
(Japan's research career portal). Read the posting below and extract the
requested fields. Keep values in their original language. When a field is
absent, use an empty string.

Pay special attention to tenure_status: report テニュアトラック when the post is a
tenure-track position, otherwise 任期あり or 任期なし as stated. For
teaching_requirements, quote the courses to be taught and whether teaching
in Japanese is required.

HTML:
`

const promptFooter = `

Answer with exactly one JSON object of this shape and nothing else:
{
  "identity": {
    "position_title": "",
    "institution": "",
    "institution_type": "",
    "update_date": "",
    "application_deadline": ""
  },
  "classification": {
    "location": "",
    "research_field": "",
    "position_type": "",
    "employment_type": "",
    "tenure_status": "",
    "trial_period": ""
  },
  "compensation": {
    "salary": "",
    "salary_description": "",
    "working_hours_description": ""
  },
  "content": {
    "job_description": "",
    "department": "",
    "qualifications": "",
    "teaching_requirements": "",
    "application_method": ""
  },
  "status": {
    "notes": ""
  }
}`

func buildPrompt(markup string) string {
	return promptHeader + markup + promptFooter
}
