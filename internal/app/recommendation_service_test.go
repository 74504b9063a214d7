package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labmatch/internal/common"
	"labmatch/internal/domain/project"
	"labmatch/internal/domain/user"
)

type recommendationFixture struct {
	service  *RecommendationService
	apps     *fakeApplicationRepo
	projects *fakeProjectRepo
	users    *fakeUserRepo

	lifecycle *ApplicationService
	professor user.User
}

func newRecommendationFixture(t *testing.T) *recommendationFixture {
	t.Helper()
	apps := newFakeApplicationRepo()
	projects := newFakeProjectRepo()
	users := newFakeUserRepo()
	professor := users.put(user.User{Name: "Dr. Reyes", Email: "reyes@uni.edu", Role: user.RoleProfessor})
	return &recommendationFixture{
		service:   NewRecommendationService(projects, apps, users),
		apps:      apps,
		projects:  projects,
		users:     users,
		lifecycle: NewApplicationService(apps, projects, users, passRunner{}, zerolog.Nop()),
		professor: professor,
	}
}

func (f *recommendationFixture) openProject(title string, skills ...string) project.Project {
	return f.projects.put(project.Project{
		Title:          title,
		Description:    "A project long enough to satisfy description validation.",
		SupervisorID:   f.professor.ID,
		Department:     "CS",
		Category:       "Systems",
		RequiredSkills: skills,
		Status:         project.StatusOpen,
		MaxInterns:     3,
	})
}

func TestRecommendProjectsRanksBestFirst(t *testing.T) {
	f := newRecommendationFixture(t)
	f.openProject("full match", "Go", "SQL")
	f.openProject("half match", "Go", "Rust")
	f.openProject("no match", "Haskell")
	student := f.users.put(user.User{Name: "Avery", Role: user.RoleStudent, Skills: []string{"go", "sql"}})

	ranked, err := f.service.RecommendProjects(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "full match", ranked[0].Project.Title)
	assert.Equal(t, 100, ranked[0].Score)
	assert.Equal(t, "half match", ranked[1].Project.Title)
	assert.Equal(t, 50, ranked[1].Score)
}

func TestRecommendProjectsEmptyProfile(t *testing.T) {
	f := newRecommendationFixture(t)
	f.openProject("anything", "Go")
	student := f.users.put(user.User{Name: "Avery", Role: user.RoleStudent})

	ranked, err := f.service.RecommendProjects(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRecommendProjectsSkipsClosed(t *testing.T) {
	f := newRecommendationFixture(t)
	closed := f.openProject("closed one", "Go")
	closed.Status = project.StatusClosed
	f.projects.put(closed)
	student := f.users.put(user.User{Name: "Avery", Role: user.RoleStudent, Skills: []string{"Go"}})

	ranked, err := f.service.RecommendProjects(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestTopRecommendationsHonorsLimit(t *testing.T) {
	f := newRecommendationFixture(t)
	for i := 0; i < 8; i++ {
		f.openProject("project", "Go")
	}
	student := f.users.put(user.User{Name: "Avery", Role: user.RoleStudent, Skills: []string{"Go"}})

	top, err := f.service.TopRecommendations(context.Background(), student.ID, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	top, err = f.service.TopRecommendations(context.Background(), student.ID, 0)
	require.NoError(t, err)
	assert.Len(t, top, 5)
}

func TestRankCandidatesOrdersAndFilters(t *testing.T) {
	f := newRecommendationFixture(t)
	proj := f.openProject("ranked", "Go", "SQL", "Docker")

	strong := f.users.put(user.User{Name: "Strong", Role: user.RoleStudent, Skills: []string{"go", "sql", "docker"}})
	weak := f.users.put(user.User{Name: "Weak", Role: user.RoleStudent, Skills: []string{"go"}})
	reviewed := f.users.put(user.User{Name: "Reviewed", Role: user.RoleStudent, Skills: []string{"go", "sql", "docker"}})

	ctx := context.Background()
	// weak applies first; descending score must still win over submission order
	_, err := f.lifecycle.Submit(ctx, weak.ID, proj.ID, validCoverLetter, nil)
	require.NoError(t, err)
	_, err = f.lifecycle.Submit(ctx, strong.ID, proj.ID, validCoverLetter, nil)
	require.NoError(t, err)
	reviewedApp, err := f.lifecycle.Submit(ctx, reviewed.ID, proj.ID, validCoverLetter, nil)
	require.NoError(t, err)
	_, err = f.lifecycle.Reject(ctx, f.professor.ID, reviewedApp.ID, "")
	require.NoError(t, err)

	ranked, err := f.service.RankCandidates(ctx, f.professor.ID, proj.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, strong.ID, ranked[0].Application.StudentID)
	assert.Equal(t, 100, ranked[0].Score)
	assert.Equal(t, weak.ID, ranked[1].Application.StudentID)
	assert.Equal(t, 33, ranked[1].Score)
}

func TestRankCandidatesForbiddenForNonSupervisor(t *testing.T) {
	f := newRecommendationFixture(t)
	proj := f.openProject("ranked", "Go")
	other := f.users.put(user.User{Name: "Dr. Stone", Role: user.RoleProfessor})

	_, err := f.service.RankCandidates(context.Background(), other.ID, proj.ID)
	assert.True(t, common.Is(err, common.CodeForbidden))
}

func TestMatchDetailsVisibility(t *testing.T) {
	f := newRecommendationFixture(t)
	proj := f.openProject("details", "Python", "SQL", "Docker")
	student := f.users.put(user.User{Name: "Avery", Role: user.RoleStudent, Skills: []string{"python ", "JavaScript", "sql"}})
	stranger := f.users.put(user.User{Name: "Zed", Role: user.RoleStudent})

	app, err := f.lifecycle.Submit(context.Background(), student.ID, proj.ID, validCoverLetter, nil)
	require.NoError(t, err)

	details, err := f.service.MatchDetails(context.Background(), student.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, details.MatchingSkills)
	assert.Equal(t, []string{"Docker"}, details.MissingSkills)
	assert.Equal(t, 67, details.MatchPercentage)

	_, err = f.service.MatchDetails(context.Background(), stranger.ID, app.ID)
	assert.True(t, common.Is(err, common.CodeForbidden))
}

func TestSkillGapReport(t *testing.T) {
	f := newRecommendationFixture(t)
	proj := f.openProject("gap", "Go", "Kubernetes")
	student := f.users.put(user.User{Name: "Avery", Role: user.RoleStudent, Skills: []string{"Go"}})

	report, err := f.service.SkillGap(context.Background(), student.ID, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "gap", report.ProjectTitle)
	assert.Equal(t, []string{"Kubernetes"}, report.Analysis.MissingSkills)
	assert.Equal(t, 50, report.Analysis.MatchPercentage)
	assert.Empty(t, report.Analysis.Recommendation)
}

func TestSkillGapEmptyProfileAdvises(t *testing.T) {
	f := newRecommendationFixture(t)
	proj := f.openProject("gap", "Go", "Kubernetes")
	student := f.users.put(user.User{Name: "Avery", Role: user.RoleStudent})

	report, err := f.service.SkillGap(context.Background(), student.ID, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, report.Analysis.MissingSkills)
	assert.Equal(t, 0, report.Analysis.MatchPercentage)
	assert.NotEmpty(t, report.Analysis.Recommendation)
}
