package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"labmatch/internal/common"
	"labmatch/internal/dbx"
	"labmatch/internal/domain/project"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, description, supervisor_id, department, category, technologies,
	required_skills, status, max_interns, current_interns, applicants, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*project.Project, error) {
	var p project.Project
	var technologies, requiredSkills, interns, applicants []string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.SupervisorID, &p.Department, &p.Category,
		pq.Array(&technologies), pq.Array(&requiredSkills), &p.Status, &p.MaxInterns,
		pq.Array(&interns), pq.Array(&applicants), &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Technologies = technologies
	p.RequiredSkills = requiredSkills
	p.CurrentInterns = toUUIDs(interns)
	p.Applicants = toUUIDs(applicants)
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p project.Project) (*project.Project, error) {
	p.ID = common.NewUUID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, `INSERT INTO projects
		(id, title, description, supervisor_id, department, category, technologies, required_skills, status, max_interns, current_interns, applicants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Title, p.Description, p.SupervisorID, p.Department, p.Category,
		pq.Array(p.Technologies), pq.Array(p.RequiredSkills), p.Status, p.MaxInterns,
		pq.Array(uuidStrings(p.CurrentInterns)), pq.Array(uuidStrings(p.Applicants)), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create project", err)
	}
	return &p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p project.Project) (*project.Project, error) {
	row := dbx.FromContext(ctx, r.db).QueryRowContext(ctx, `UPDATE projects SET
		title = $1, description = $2, department = $3, category = $4, technologies = $5,
		required_skills = $6, status = $7, max_interns = $8, updated_at = $9
		WHERE id = $10 RETURNING `+projectColumns,
		p.Title, p.Description, p.Department, p.Category, pq.Array(p.Technologies),
		pq.Array(p.RequiredSkills), p.Status, p.MaxInterns, time.Now().UTC(), p.ID)
	updated, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "project not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update project", err)
	}
	return updated, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete project", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return common.NewError(common.CodeNotFound, "project not found", nil)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id common.UUID) (*project.Project, error) {
	row := dbx.FromContext(ctx, r.db).QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "project not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load project", err)
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context, filter project.Filter) ([]project.Project, int, error) {
	var clauses []string
	var args []any
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Department != "" {
		clauses = append(clauses, "department ILIKE "+arg(filter.Department))
	}
	if filter.Category != "" {
		clauses = append(clauses, "category ILIKE "+arg(filter.Category))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = "+arg(filter.Status))
	}
	if len(filter.Skills) > 0 {
		clauses = append(clauses, "required_skills && "+arg(pq.Array(filter.Skills)))
	}
	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		clauses = append(clauses, "(title ILIKE "+pattern+" OR description ILIKE "+pattern+" OR category ILIKE "+pattern+")")
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := dbx.FromContext(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&total); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to count projects", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query := `SELECT ` + projectColumns + ` FROM projects` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg((page-1)*limit)

	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list projects", err)
	}
	defer rows.Close()
	items, err := collectProjects(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProjectRepository) ListBySupervisor(ctx context.Context, supervisorID common.UUID) ([]project.Project, error) {
	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE supervisor_id = $1 ORDER BY created_at DESC`, supervisorID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list supervisor projects", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (r *ProjectRepository) ListOpen(ctx context.Context) ([]project.Project, error) {
	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE status = $1 ORDER BY created_at DESC`, project.StatusOpen)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list open projects", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

// UpdateSets applies each membership change as its own guarded statement so
// two concurrent transitions on the same project never lose each other's
// update. Adds are skipped when the id is already present; removes rely on
// array_remove being a no-op for absent ids.
func (r *ProjectRepository) UpdateSets(ctx context.Context, id common.UUID, update project.SetUpdate) (*project.Project, error) {
	db := dbx.FromContext(ctx, r.db)
	now := time.Now().UTC()

	apply := func(query string, ids []common.UUID) error {
		for _, studentID := range ids {
			if _, err := db.ExecContext(ctx, query, id, studentID, now); err != nil {
				return common.NewError(common.CodeInternal, "failed to update project membership", err)
			}
		}
		return nil
	}

	if err := apply(`UPDATE projects SET applicants = array_append(applicants, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(applicants))`, update.AddApplicants); err != nil {
		return nil, err
	}
	if err := apply(`UPDATE projects SET applicants = array_remove(applicants, $2), updated_at = $3
		WHERE id = $1`, update.RemoveApplicants); err != nil {
		return nil, err
	}
	if err := apply(`UPDATE projects SET current_interns = array_append(current_interns, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(current_interns))`, update.AddInterns); err != nil {
		return nil, err
	}
	if err := apply(`UPDATE projects SET current_interns = array_remove(current_interns, $2), updated_at = $3
		WHERE id = $1`, update.RemoveInterns); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *ProjectRepository) Stats(ctx context.Context) (*project.Stats, error) {
	db := dbx.FromContext(ctx, r.db)
	stats := &project.Stats{
		ByStatus:     map[project.Status]int{},
		ByCategory:   map[string]int{},
		ByDepartment: map[string]int{},
	}

	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load project stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status project.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan project stats", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load project stats", err)
	}

	if err := r.groupCount(ctx, `SELECT category, COUNT(*) FROM projects GROUP BY category ORDER BY COUNT(*) DESC`, stats.ByCategory); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, `SELECT department, COUNT(*) FROM projects GROUP BY department ORDER BY COUNT(*) DESC`, stats.ByDepartment); err != nil {
		return nil, err
	}

	skillRows, err := db.QueryContext(ctx, `SELECT skill, COUNT(*) FROM projects, unnest(required_skills) AS skill
		GROUP BY skill ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load skill stats", err)
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var sc project.SkillCount
		if err := skillRows.Scan(&sc.Skill, &sc.Count); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan skill stats", err)
		}
		stats.TopSkills = append(stats.TopSkills, sc)
	}
	if err := skillRows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load skill stats", err)
	}
	return stats, nil
}

func (r *ProjectRepository) groupCount(ctx context.Context, query string, into map[string]int) error {
	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to load project stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return common.NewError(common.CodeInternal, "failed to scan project stats", err)
		}
		into[key] = count
	}
	return rows.Err()
}

func collectProjects(rows *sql.Rows) ([]project.Project, error) {
	var items []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan project", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list projects", err)
	}
	return items, nil
}
