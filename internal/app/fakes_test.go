package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"labmatch/internal/common"
	"labmatch/internal/domain/application"
	"labmatch/internal/domain/project"
	"labmatch/internal/domain/user"
)

// passRunner stands in for dbx.Runner; the fakes are already atomic under
// their own locks.
type passRunner struct{}

func (passRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeApplicationRepo struct {
	mu    sync.Mutex
	items map[common.UUID]*application.Application
	clock time.Time
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{items: make(map[common.UUID]*application.Application), clock: time.Now().UTC()}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app.ID = common.NewUUID()
	app.Status = application.StatusPending
	r.clock = r.clock.Add(time.Second)
	app.AppliedAt = r.clock
	for _, existing := range r.items {
		if existing.StudentID == app.StudentID && existing.ProjectID == app.ProjectID && existing.Status == application.StatusPending {
			return nil, common.NewError(common.CodeConflict, "application already pending for this project", nil)
		}
	}
	stored := app
	r.items[app.ID] = &stored
	result := app
	return &result, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	result := *app
	return &result, nil
}

func (r *fakeApplicationRepo) FindPending(ctx context.Context, projectID, studentID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.items {
		if app.ProjectID == projectID && app.StudentID == studentID && app.Status == application.StatusPending {
			result := *app
			return &result, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, app := range r.items {
		if app.StudentID == studentID {
			items = append(items, *app)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AppliedAt.After(items[j].AppliedAt) })
	return items, nil
}

func (r *fakeApplicationRepo) ListByProjects(ctx context.Context, projectIDs []common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[common.UUID]bool, len(projectIDs))
	for _, id := range projectIDs {
		wanted[id] = true
	}
	var items []application.Application
	for _, app := range r.items {
		if wanted[app.ProjectID] {
			items = append(items, *app)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AppliedAt.After(items[j].AppliedAt) })
	return items, nil
}

func (r *fakeApplicationRepo) ListPendingByProject(ctx context.Context, projectID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, app := range r.items {
		if app.ProjectID == projectID && app.Status == application.StatusPending {
			items = append(items, *app)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AppliedAt.Before(items[j].AppliedAt) })
	return items, nil
}

func (r *fakeApplicationRepo) UpdateIfStatus(ctx context.Context, id common.UUID, expected application.Status, review application.Review) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if app.Status != expected {
		return nil, common.NewError(common.CodeConflict, "application is no longer "+string(expected), nil)
	}
	app.Status = review.Status
	reviewedBy := review.ReviewedBy
	app.ReviewedBy = &reviewedBy
	reviewedAt := review.ReviewedAt
	app.ReviewedAt = &reviewedAt
	app.Feedback = review.Feedback
	result := *app
	return &result, nil
}

func (r *fakeApplicationRepo) DeleteIfStatus(ctx context.Context, id common.UUID, expected application.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if app.Status != expected {
		return common.NewError(common.CodeConflict, "application is no longer "+string(expected), nil)
	}
	delete(r.items, id)
	return nil
}

type fakeProjectRepo struct {
	mu    sync.Mutex
	items map[common.UUID]*project.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{items: make(map[common.UUID]*project.Project)}
}

func (r *fakeProjectRepo) put(p project.Project) project.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = common.NewUUID()
	}
	stored := p
	r.items[p.ID] = &stored
	return p
}

func (r *fakeProjectRepo) Create(ctx context.Context, p project.Project) (*project.Project, error) {
	created := r.put(p)
	return &created, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, p project.Project) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[p.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	p.CurrentInterns = current.CurrentInterns
	p.Applicants = current.Applicants
	stored := p
	r.items[p.ID] = &stored
	result := p
	return &result, nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return common.NewError(common.CodeNotFound, "project not found", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id common.UUID) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	result := *p
	return &result, nil
}

func (r *fakeProjectRepo) List(ctx context.Context, filter project.Filter) ([]project.Project, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []project.Project
	for _, p := range r.items {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		items = append(items, *p)
	}
	return items, len(items), nil
}

func (r *fakeProjectRepo) ListBySupervisor(ctx context.Context, supervisorID common.UUID) ([]project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []project.Project
	for _, p := range r.items {
		if p.SupervisorID == supervisorID {
			items = append(items, *p)
		}
	}
	return items, nil
}

func (r *fakeProjectRepo) ListOpen(ctx context.Context) ([]project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []project.Project
	for _, p := range r.items {
		if p.Status == project.StatusOpen {
			items = append(items, *p)
		}
	}
	return items, nil
}

func (r *fakeProjectRepo) UpdateSets(ctx context.Context, id common.UUID, update project.SetUpdate) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	p.Applicants = addAll(p.Applicants, update.AddApplicants)
	p.Applicants = removeAll(p.Applicants, update.RemoveApplicants)
	p.CurrentInterns = addAll(p.CurrentInterns, update.AddInterns)
	p.CurrentInterns = removeAll(p.CurrentInterns, update.RemoveInterns)
	result := *p
	return &result, nil
}

func (r *fakeProjectRepo) Stats(ctx context.Context) (*project.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &project.Stats{ByStatus: map[project.Status]int{}, ByCategory: map[string]int{}, ByDepartment: map[string]int{}}
	for _, p := range r.items {
		stats.Total++
		stats.ByStatus[p.Status]++
		stats.ByCategory[p.Category]++
		stats.ByDepartment[p.Department]++
	}
	return stats, nil
}

func addAll(set []common.UUID, add []common.UUID) []common.UUID {
	for _, id := range add {
		present := false
		for _, existing := range set {
			if existing == id {
				present = true
				break
			}
		}
		if !present {
			set = append(set, id)
		}
	}
	return set
}

func removeAll(set []common.UUID, remove []common.UUID) []common.UUID {
	out := set[:0]
	for _, existing := range set {
		drop := false
		for _, id := range remove {
			if existing == id {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, existing)
		}
	}
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[common.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[common.UUID]*user.User)}
}

func (r *fakeUserRepo) put(u user.User) user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = common.NewUUID()
	}
	stored := u
	r.items[u.ID] = &stored
	return u
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	result := *u
	return &result, nil
}

func (r *fakeUserRepo) ListByIDs(ctx context.Context, ids []common.UUID) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []user.User
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			items = append(items, *u)
		}
	}
	return items, nil
}

func (r *fakeUserRepo) UpdateSkills(ctx context.Context, id common.UUID, skills []string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	u.Skills = skills
	result := *u
	return &result, nil
}
