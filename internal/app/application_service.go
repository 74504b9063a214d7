package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"labmatch/internal/common"
	"labmatch/internal/dbx"
	"labmatch/internal/domain/application"
	"labmatch/internal/domain/project"
	"labmatch/internal/domain/user"
)

// ApplicationService owns the application state machine. Every transition
// that touches both an application and its project runs inside one
// transaction: the compare-and-set on the application status is the
// exactly-once gate, and the project membership updates ride in the same
// transaction so a failure leaves both entities untouched.
type ApplicationService struct {
	repo     application.Repository
	projects project.Repository
	users    user.Repository
	tx       dbx.Runner
	logger   zerolog.Logger
}

func NewApplicationService(repo application.Repository, projects project.Repository, users user.Repository, tx dbx.Runner, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, projects: projects, users: users, tx: tx, logger: logger}
}

// Submit creates a pending application and adds the student to the project's
// applicant set. A prior rejected or approved record for the same pair does
// not block re-application; only a pending one does.
func (s *ApplicationService) Submit(ctx context.Context, studentID, projectID common.UUID, coverLetter string, documents []string) (*application.Application, error) {
	if err := application.ValidateSubmission(coverLetter); err != nil {
		return nil, err
	}
	proj, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if proj.Status != project.StatusOpen {
		return nil, common.NewError(common.CodeValidation, "project is not accepting applications", nil)
	}
	if proj.HasIntern(studentID) {
		return nil, common.NewError(common.CodeConflict, "you are already an intern on this project", nil)
	}
	if _, err := s.repo.FindPending(ctx, projectID, studentID); err == nil {
		return nil, common.NewError(common.CodeConflict, "you have already applied to this project", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}

	var created *application.Application
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = s.repo.Create(ctx, application.Application{
			StudentID:   studentID,
			ProjectID:   projectID,
			CoverLetter: coverLetter,
			Documents:   documents,
		})
		if err != nil {
			return err
		}
		_, err = s.projects.UpdateSets(ctx, projectID, project.SetUpdate{AddApplicants: []common.UUID{studentID}})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", created.ID.String()).Str("project_id", projectID.String()).Str("student_id", studentID.String()).Msg("application submitted")
	return created, nil
}

// Approve moves a pending application to approved: the student leaves the
// applicant set and joins the intern roster. The actor must supervise the
// project, and the roster must have a slot left.
func (s *ApplicationService) Approve(ctx context.Context, professorID, applicationID common.UUID) (*application.Application, error) {
	app, proj, err := s.loadForReview(ctx, professorID, applicationID)
	if err != nil {
		return nil, err
	}
	if !proj.InternSlotsLeft() {
		return nil, common.NewError(common.CodeConflict, "project intern roster is full", nil)
	}

	var updated *application.Application
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err = s.repo.UpdateIfStatus(ctx, applicationID, application.StatusPending, application.Review{
			Status:     application.StatusApproved,
			ReviewedBy: professorID,
			ReviewedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		_, err = s.projects.UpdateSets(ctx, proj.ID, project.SetUpdate{
			AddInterns:       []common.UUID{app.StudentID},
			RemoveApplicants: []common.UUID{app.StudentID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", applicationID.String()).Str("project_id", proj.ID.String()).Msg("application approved")
	return updated, nil
}

// Reject moves a pending application to rejected and removes the student
// from the applicant set. The intern roster is untouched.
func (s *ApplicationService) Reject(ctx context.Context, professorID, applicationID common.UUID, reason string) (*application.Application, error) {
	app, proj, err := s.loadForReview(ctx, professorID, applicationID)
	if err != nil {
		return nil, err
	}

	var updated *application.Application
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err = s.repo.UpdateIfStatus(ctx, applicationID, application.StatusPending, application.Review{
			Status:     application.StatusRejected,
			ReviewedBy: professorID,
			ReviewedAt: time.Now().UTC(),
			Feedback:   reason,
		})
		if err != nil {
			return err
		}
		_, err = s.projects.UpdateSets(ctx, proj.ID, project.SetUpdate{
			RemoveApplicants: []common.UUID{app.StudentID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", applicationID.String()).Str("project_id", proj.ID.String()).Msg("application rejected")
	return updated, nil
}

// Withdraw deletes a still-pending application on behalf of its owner.
// Reviewed applications are immutable history and cannot be withdrawn.
func (s *ApplicationService) Withdraw(ctx context.Context, studentID, applicationID common.UUID) error {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.StudentID != studentID {
		return common.NewError(common.CodeForbidden, "not authorized to withdraw this application", nil)
	}
	if app.Status != application.StatusPending {
		return common.NewError(common.CodeConflict, "only pending applications can be withdrawn", nil)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteIfStatus(ctx, applicationID, application.StatusPending); err != nil {
			return err
		}
		_, err := s.projects.UpdateSets(ctx, app.ProjectID, project.SetUpdate{
			RemoveApplicants: []common.UUID{studentID},
		})
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("application_id", applicationID.String()).Str("project_id", app.ProjectID.String()).Msg("application withdrawn")
	return nil
}

func (s *ApplicationService) loadForReview(ctx context.Context, professorID, applicationID common.UUID) (*application.Application, *project.Project, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	proj, err := s.projects.GetByID(ctx, app.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if proj.SupervisorID != professorID {
		return nil, nil, common.NewError(common.CodeForbidden, "not authorized to review this application", nil)
	}
	return app, proj, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, studentID common.UUID) ([]application.Application, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// ListForSupervisor returns all applications across the professor's projects.
func (s *ApplicationService) ListForSupervisor(ctx context.Context, professorID common.UUID) ([]application.Application, error) {
	projects, err := s.projects.ListBySupervisor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	ids := make([]common.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return s.repo.ListByProjects(ctx, ids)
}

// Get returns one application, visible only to the owning student or the
// supervising professor.
func (s *ApplicationService) Get(ctx context.Context, actorID common.UUID, applicationID common.UUID) (*application.Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID == actorID {
		return app, nil
	}
	proj, err := s.projects.GetByID(ctx, app.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj.SupervisorID != actorID {
		return nil, common.NewError(common.CodeForbidden, "not authorized to view this application", nil)
	}
	return app, nil
}

type StudentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func (s *ApplicationService) StudentStats(ctx context.Context, studentID common.UUID) (*StudentStats, error) {
	apps, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	stats := &StudentStats{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case application.StatusPending:
			stats.Pending++
		case application.StatusApproved:
			stats.Approved++
		case application.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

type SupervisorStats struct {
	TotalProjects     int `json:"total_projects"`
	TotalApplications int `json:"total_applications"`
	Pending           int `json:"pending"`
	Approved          int `json:"approved"`
	Rejected          int `json:"rejected"`
	TotalInterns      int `json:"total_interns"`
}

func (s *ApplicationService) SupervisorStats(ctx context.Context, professorID common.UUID) (*SupervisorStats, error) {
	projects, err := s.projects.ListBySupervisor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	stats := &SupervisorStats{TotalProjects: len(projects)}
	ids := make([]common.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		stats.TotalInterns += len(p.CurrentInterns)
	}
	apps, err := s.repo.ListByProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats.TotalApplications = len(apps)
	for _, app := range apps {
		switch app.Status {
		case application.StatusPending:
			stats.Pending++
		case application.StatusApproved:
			stats.Approved++
		case application.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}
