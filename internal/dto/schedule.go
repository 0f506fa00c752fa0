package dto

// Placeholder substitutes for absent optional fields at render time.
// The substitution is presentation-only; source records are never
// touched.
const Placeholder = "-"

// ExamRow is one display-ready schedule table row. ExamID maps the row
// back to its source record across re-sorts and re-filters.
type ExamRow struct {
	ExamID       int    `json:"exam_id"`
	CourseCode   string `json:"course_code"`
	ExamDate     string `json:"exam_date"`
	StartTime    string `json:"start_time"`
	Duration     string `json:"duration"`
	Room         string `json:"room"`
	StudentSplit string `json:"student_split"`
}

// SearchStatus is the status line rendered under the search box.
type SearchStatus struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// ScheduleView is the projection handed to the rendering collaborator.
type ScheduleView struct {
	Rows         []ExamRow     `json:"rows"`
	IsEmpty      bool          `json:"is_empty"`
	CountLabel   string        `json:"count_label"`
	SearchStatus *SearchStatus `json:"search_status,omitempty"`
}
