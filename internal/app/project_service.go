package app

import (
	"context"

	"github.com/rs/zerolog"

	"labmatch/internal/common"
	"labmatch/internal/domain/application"
	"labmatch/internal/domain/project"
)

type ProjectService struct {
	repo         project.Repository
	applications *ApplicationService
	logger       zerolog.Logger
}

func NewProjectService(repo project.Repository, applications *ApplicationService, logger zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, applications: applications, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, p project.Project) (*project.Project, error) {
	if p.Status == "" {
		p.Status = project.StatusOpen
	}
	if p.MaxInterns == 0 {
		p.MaxInterns = project.DefaultMaxInterns
	}
	// membership sets are owned by the application lifecycle
	p.CurrentInterns = nil
	p.Applicants = nil
	if err := project.Validate(p); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("project_id", created.ID.String()).Str("supervisor_id", p.SupervisorID.String()).Msg("project created")
	return created, nil
}

// ProjectPatch carries optional field updates; nil means keep the current
// value.
type ProjectPatch struct {
	Title          *string
	Description    *string
	Department     *string
	Category       *string
	Technologies   []string
	RequiredSkills []string
	MaxInterns     *int
	Status         *project.Status
}

func (s *ProjectService) Update(ctx context.Context, supervisorID, projectID common.UUID, patch ProjectPatch) (*project.Project, error) {
	current, err := s.getOwned(ctx, supervisorID, projectID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		current.Title = *patch.Title
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if patch.Department != nil {
		current.Department = *patch.Department
	}
	if patch.Category != nil {
		current.Category = *patch.Category
	}
	if patch.Technologies != nil {
		current.Technologies = patch.Technologies
	}
	if patch.RequiredSkills != nil {
		current.RequiredSkills = patch.RequiredSkills
	}
	if patch.MaxInterns != nil {
		current.MaxInterns = *patch.MaxInterns
	}
	if patch.Status != nil {
		current.Status = *patch.Status
	}
	if err := project.Validate(*current); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, *current)
}

func (s *ProjectService) Delete(ctx context.Context, supervisorID, projectID common.UUID) error {
	if _, err := s.getOwned(ctx, supervisorID, projectID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, projectID); err != nil {
		return err
	}
	s.logger.Info().Str("project_id", projectID.String()).Msg("project deleted")
	return nil
}

func (s *ProjectService) getOwned(ctx context.Context, supervisorID, projectID common.UUID) (*project.Project, error) {
	current, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if current.SupervisorID != supervisorID {
		return nil, common.NewError(common.CodeForbidden, "you are not the supervisor of this project", nil)
	}
	return current, nil
}

func (s *ProjectService) Get(ctx context.Context, id common.UUID) (*project.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, filter project.Filter) ([]project.Project, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *ProjectService) ListMine(ctx context.Context, supervisorID common.UUID) ([]project.Project, error) {
	return s.repo.ListBySupervisor(ctx, supervisorID)
}

// Apply is the project-level application path. It delegates to the
// application lifecycle so the applicant set and the application records
// cannot drift apart; there is no second bookkeeping path.
func (s *ProjectService) Apply(ctx context.Context, studentID, projectID common.UUID, coverLetter string, documents []string) (*application.Application, error) {
	return s.applications.Submit(ctx, studentID, projectID, coverLetter, documents)
}

func (s *ProjectService) Stats(ctx context.Context) (*project.Stats, error) {
	return s.repo.Stats(ctx)
}
