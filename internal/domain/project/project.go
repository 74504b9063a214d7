package project

import (
	"fmt"
	"time"

	"labmatch/internal/common"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusClosed     Status = "closed"
)

const DefaultMaxInterns = 3

// Project is owned by exactly one professor (the supervisor). Applicants and
// CurrentInterns are disjoint at all times; membership in both sets is
// maintained only by the application lifecycle, never mutated elsewhere.
type Project struct {
	ID             common.UUID   `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	SupervisorID   common.UUID   `json:"supervisor_id"`
	Department     string        `json:"department"`
	Category       string        `json:"category"`
	Technologies   []string      `json:"technologies"`
	RequiredSkills []string      `json:"required_skills"`
	Status         Status        `json:"status"`
	MaxInterns     int           `json:"max_interns"`
	CurrentInterns []common.UUID `json:"current_interns"`
	Applicants     []common.UUID `json:"applicants"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (p Project) HasApplicant(studentID common.UUID) bool {
	for _, id := range p.Applicants {
		if id == studentID {
			return true
		}
	}
	return false
}

func (p Project) HasIntern(studentID common.UUID) bool {
	for _, id := range p.CurrentInterns {
		if id == studentID {
			return true
		}
	}
	return false
}

func (p Project) InternSlotsLeft() bool {
	return p.MaxInterns <= 0 || len(p.CurrentInterns) < p.MaxInterns
}

func ValidStatus(status Status) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	default:
		return false
	}
}

// Validate applies the construction-time field rules. Technologies and
// RequiredSkills may be empty; a project without required skills matches
// every candidate at 100%.
func Validate(p Project) error {
	fields := map[string]string{}
	if len(p.Title) < 5 || len(p.Title) > 200 {
		fields["title"] = "title must be between 5 and 200 characters"
	}
	if len(p.Description) < 20 {
		fields["description"] = "description must be at least 20 characters"
	}
	if p.Department == "" {
		fields["department"] = "department is required"
	}
	if len(p.Category) < 2 || len(p.Category) > 100 {
		fields["category"] = "category must be between 2 and 100 characters"
	}
	if p.SupervisorID.IsZero() {
		fields["supervisor_id"] = "supervisor is required"
	}
	if p.MaxInterns < 0 {
		fields["max_interns"] = "max interns must not be negative"
	}
	if !ValidStatus(p.Status) {
		fields["status"] = fmt.Sprintf("status must be %s, %s, or %s", StatusOpen, StatusInProgress, StatusClosed)
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid project", fields)
	}
	return nil
}
