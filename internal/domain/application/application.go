package application

import (
	"time"

	"labmatch/internal/common"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further transition may leave the status.
// Pending is the only non-terminal state; re-review is never allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

const MinCoverLetterLength = 50

// Application is the authoritative record of one (student, project)
// relationship. At most one pending application may exist per pair; a
// rejected or approved record does not block a new submission.
type Application struct {
	ID          common.UUID  `json:"id"`
	StudentID   common.UUID  `json:"student_id"`
	ProjectID   common.UUID  `json:"project_id"`
	CoverLetter string       `json:"cover_letter"`
	Documents   []string     `json:"documents"`
	Status      Status       `json:"status"`
	Feedback    string       `json:"feedback,omitempty"`
	AppliedAt   time.Time    `json:"applied_at"`
	ReviewedBy  *common.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
}

func ValidateSubmission(coverLetter string) error {
	if coverLetter == "" {
		return common.NewValidationError("invalid application", map[string]string{"cover_letter": "cover letter is required"})
	}
	if len(coverLetter) < MinCoverLetterLength {
		return common.NewValidationError("invalid application", map[string]string{"cover_letter": "cover letter must be at least 50 characters"})
	}
	return nil
}
