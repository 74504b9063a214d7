package app

import (
	"context"

	"labmatch/internal/common"
	"labmatch/internal/domain/application"
	"labmatch/internal/domain/project"
	"labmatch/internal/domain/user"
	"labmatch/internal/matching"
)

type RecommendationService struct {
	projects     project.Repository
	applications application.Repository
	users        user.Repository
}

func NewRecommendationService(projects project.Repository, applications application.Repository, users user.Repository) *RecommendationService {
	return &RecommendationService{projects: projects, applications: applications, users: users}
}

// RecommendProjects ranks open projects for the student. A student without
// profile skills gets an empty result, not an error.
func (s *RecommendationService) RecommendProjects(ctx context.Context, studentID common.UUID) ([]matching.RankedProject, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(student.Skills) == 0 {
		return []matching.RankedProject{}, nil
	}
	open, err := s.projects.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	return matching.RecommendProjects(student.Skills, open), nil
}

func (s *RecommendationService) TopRecommendations(ctx context.Context, studentID common.UUID, limit int) ([]matching.RankedProject, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(student.Skills) == 0 {
		return []matching.RankedProject{}, nil
	}
	open, err := s.projects.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	return matching.TopRecommendations(student.Skills, open, limit), nil
}

// RankCandidates orders the pending applicants of a project best-match
// first. Pending applications arrive applied-date ascending, and ranking is
// stable, so ties keep submission order.
func (s *RecommendationService) RankCandidates(ctx context.Context, professorID, projectID common.UUID) ([]matching.RankedCandidate, error) {
	proj, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if proj.SupervisorID != professorID {
		return nil, common.NewError(common.CodeForbidden, "not authorized to view candidates for this project", nil)
	}
	pending, err := s.applications.ListPendingByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return []matching.RankedCandidate{}, nil
	}

	studentIDs := make([]common.UUID, 0, len(pending))
	for _, app := range pending {
		studentIDs = append(studentIDs, app.StudentID)
	}
	students, err := s.users.ListByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	skillsByStudent := make(map[common.UUID][]string, len(students))
	for _, student := range students {
		skillsByStudent[student.ID] = student.Skills
	}

	candidates := make([]matching.Candidate, 0, len(pending))
	for _, app := range pending {
		candidates = append(candidates, matching.Candidate{
			Application: app,
			Skills:      skillsByStudent[app.StudentID],
		})
	}
	return matching.RankCandidates(candidates, proj.RequiredSkills), nil
}

// MatchDetails reports how one application's student measures against the
// project's requirements. Visible to the owning student and the supervisor.
func (s *RecommendationService) MatchDetails(ctx context.Context, actorID, applicationID common.UUID) (*matching.Details, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	proj, err := s.projects.GetByID(ctx, app.ProjectID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != actorID && proj.SupervisorID != actorID {
		return nil, common.NewError(common.CodeForbidden, "not authorized to view this match", nil)
	}
	student, err := s.users.GetByID(ctx, app.StudentID)
	if err != nil {
		return nil, err
	}
	details := matching.MatchDetails(student.Skills, proj.RequiredSkills)
	return &details, nil
}

type SkillGapReport struct {
	ProjectTitle   string               `json:"project"`
	RequiredSkills []string             `json:"required_skills"`
	StudentSkills  []string             `json:"student_skills"`
	Analysis       matching.GapAnalysis `json:"analysis"`
}

func (s *RecommendationService) SkillGap(ctx context.Context, studentID, projectID common.UUID) (*SkillGapReport, error) {
	proj, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &SkillGapReport{
		ProjectTitle:   proj.Title,
		RequiredSkills: proj.RequiredSkills,
		StudentSkills:  student.Skills,
		Analysis:       matching.SkillGap(student.Skills, proj.RequiredSkills),
	}, nil
}
