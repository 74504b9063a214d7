package project

import (
	"context"

	"labmatch/internal/common"
)

type Filter struct {
	Department string
	Category   string
	Status     Status
	Skills     []string
	Search     string
	Page       int
	Limit      int
}

// SetUpdate describes additive/subtractive changes to the applicant and
// intern sets. Implementations must apply each change atomically with set
// semantics, never by rewriting a fetched copy of the arrays.
type SetUpdate struct {
	AddApplicants    []common.UUID
	RemoveApplicants []common.UUID
	AddInterns       []common.UUID
	RemoveInterns    []common.UUID
}

func (u SetUpdate) Empty() bool {
	return len(u.AddApplicants) == 0 && len(u.RemoveApplicants) == 0 &&
		len(u.AddInterns) == 0 && len(u.RemoveInterns) == 0
}

type Stats struct {
	Total        int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
	ByCategory   map[string]int `json:"by_category"`
	ByDepartment map[string]int `json:"by_department"`
	TopSkills    []SkillCount   `json:"top_skills"`
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type Repository interface {
	Create(ctx context.Context, p Project) (*Project, error)
	Update(ctx context.Context, p Project) (*Project, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Project, error)
	List(ctx context.Context, filter Filter) ([]Project, int, error)
	ListBySupervisor(ctx context.Context, supervisorID common.UUID) ([]Project, error)
	ListOpen(ctx context.Context) ([]Project, error)
	UpdateSets(ctx context.Context, id common.UUID, update SetUpdate) (*Project, error)
	Stats(ctx context.Context) (*Stats, error)
}
