package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"labmatch/internal/common"
	"labmatch/internal/dbx"
	"labmatch/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, student_id, project_id, cover_letter, documents, status, feedback, applied_at, reviewed_by, reviewed_at`

const uniqueViolation = "23505"

func scanApplication(row interface{ Scan(...any) error }) (*application.Application, error) {
	var app application.Application
	var documents []string
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	err := row.Scan(&app.ID, &app.StudentID, &app.ProjectID, &app.CoverLetter, pq.Array(&documents),
		&app.Status, &app.Feedback, &app.AppliedAt, &reviewedBy, &reviewedAt)
	if err != nil {
		return nil, err
	}
	app.Documents = documents
	if reviewedBy.Valid {
		id := common.UUID(reviewedBy.String)
		app.ReviewedBy = &id
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		app.ReviewedAt = &t
	}
	return &app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	app.Status = application.StatusPending
	app.AppliedAt = time.Now().UTC()
	_, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, `INSERT INTO applications
		(id, student_id, project_id, cover_letter, documents, status, feedback, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		app.ID, app.StudentID, app.ProjectID, app.CoverLetter, pq.Array(app.Documents), app.Status, app.Feedback, app.AppliedAt)
	if err != nil {
		// the partial unique index on (student_id, project_id) WHERE
		// status = 'pending' is the last line of defense against a
		// duplicate pending pair racing past the precondition check
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.NewError(common.CodeConflict, "application already pending for this project", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := dbx.FromContext(ctx, r.db).QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) FindPending(ctx context.Context, projectID, studentID common.UUID) (*application.Application, error) {
	row := dbx.FromContext(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE project_id = $1 AND student_id = $2 AND status = $3`,
		projectID, studentID, application.StatusPending)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.Application, error) {
	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE student_id = $1 ORDER BY applied_at DESC`, studentID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list student applications", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) ListByProjects(ctx context.Context, projectIDs []common.UUID) ([]application.Application, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE project_id = ANY($1) ORDER BY applied_at DESC`,
		pq.Array(uuidStrings(projectIDs)))
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) ListPendingByProject(ctx context.Context, projectID common.UUID) ([]application.Application, error) {
	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE project_id = $1 AND status = $2 ORDER BY applied_at ASC`,
		projectID, application.StatusPending)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list pending applications", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

// UpdateIfStatus is a compare-and-set: the write only lands if the row still
// has the expected status. A lost race surfaces as a conflict, never as a
// silent second approval.
func (r *ApplicationRepository) UpdateIfStatus(ctx context.Context, id common.UUID, expected application.Status, review application.Review) (*application.Application, error) {
	row := dbx.FromContext(ctx, r.db).QueryRowContext(ctx, `UPDATE applications
		SET status = $1, reviewed_by = $2, reviewed_at = $3, feedback = $4
		WHERE id = $5 AND status = $6
		RETURNING `+applicationColumns,
		review.Status, review.ReviewedBy, review.ReviewedAt, review.Feedback, id, expected)
	app, err := scanApplication(row)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewError(common.CodeInternal, "failed to update application", err)
	}
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, common.NewError(common.CodeConflict,
		"application is no longer "+string(expected)+" (current status: "+string(current.Status)+")", nil)
}

func (r *ApplicationRepository) DeleteIfStatus(ctx context.Context, id common.UUID, expected application.Status) error {
	result, err := dbx.FromContext(ctx, r.db).ExecContext(ctx,
		`DELETE FROM applications WHERE id = $1 AND status = $2`, id, expected)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete application", err)
	}
	affected, err := result.RowsAffected()
	if err != nil || affected > 0 {
		return nil
	}
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return getErr
	}
	return common.NewError(common.CodeConflict,
		"application is no longer "+string(expected)+" (current status: "+string(current.Status)+")", nil)
}

func collectApplications(rows *sql.Rows) ([]application.Application, error) {
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, nil
}
