package models

// PostingRef is a search-result card that has not been opened yet.
type PostingRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url"`
}

// JobPosting is one opened listing. It lives for a single iteration and is never persisted.
type JobPosting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description"`
	QuickApply  bool   `json:"quick_apply"`
}

// ApplicantProfile holds the facts used to answer screening questions.
// It is read-only during a run.
type ApplicantProfile struct {
	SalaryExpectation string `yaml:"salary_expectation" json:"salary_expectation"`
	NoticePeriodDays  int    `yaml:"notice_period_days" json:"notice_period_days"`
	Location          string `yaml:"location" json:"location"`
	Relocation        string `yaml:"relocation" json:"relocation"`
	WorkAuthorization string `yaml:"work_authorization" json:"work_authorization"`
	EducationSummary  string `yaml:"education_summary" json:"education_summary"`

	// ResumePath is the untailored resume file, used when tailoring fails.
	ResumePath string `yaml:"-" json:"resume_path"`
	ResumeText string `yaml:"-" json:"-"`
}
