package dto

// CreateStudentRequest is the payload for adding a student to the caseload.
type CreateStudentRequest struct {
	FullName         string  `json:"full_name" validate:"required"`
	Grade            string  `json:"grade"`
	School           string  `json:"school"`
	FrequencyPerWeek *int    `json:"frequency_per_week" validate:"omitempty,min=1,max=10"`
	FrequencyType    *string `json:"frequency_type" validate:"omitempty,oneof=per-week per-month"`
	AnnualReviewDate *string `json:"annual_review_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStudentRequest is the payload for editing a student. Nil fields are
// left unchanged.
type UpdateStudentRequest struct {
	FullName         *string `json:"full_name" validate:"omitempty,min=1"`
	Grade            *string `json:"grade"`
	School           *string `json:"school"`
	Status           *string `json:"status" validate:"omitempty,oneof=active discharged"`
	FrequencyPerWeek *int    `json:"frequency_per_week" validate:"omitempty,min=1,max=10"`
	FrequencyType    *string `json:"frequency_type" validate:"omitempty,oneof=per-week per-month"`
	AnnualReviewDate *string `json:"annual_review_date" validate:"omitempty,datetime=2006-01-02"`
}

// ListStudentsQuery captures list filters from the query string.
type ListStudentsQuery struct {
	School    string `form:"school"`
	Status    string `form:"status" validate:"omitempty,oneof=active discharged"`
	Archived  *bool  `form:"archived"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=full_name grade date_added"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}
