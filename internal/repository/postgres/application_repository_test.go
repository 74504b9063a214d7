package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labmatch/internal/common"
	"labmatch/internal/domain/application"
)

func newApplicationRepoMock(t *testing.T) (*ApplicationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewApplicationRepository(db), mock
}

func applicationRows(id, studentID, projectID common.UUID, status application.Status) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "project_id", "cover_letter", "documents",
		"status", "feedback", "applied_at", "reviewed_by", "reviewed_at",
	}).AddRow(id.String(), studentID.String(), projectID.String(),
		"A cover letter comfortably over the minimum length requirement.", "{cv.pdf}",
		string(status), "", time.Now().UTC(), nil, nil)
}

func TestApplicationRepositoryCreate(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), application.Application{
		StudentID:   common.NewUUID(),
		ProjectID:   common.NewUUID(),
		CoverLetter: "A cover letter comfortably over the minimum length requirement.",
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, application.StatusPending, created.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreateDuplicatePending(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), application.Application{
		StudentID: common.NewUUID(),
		ProjectID: common.NewUUID(),
	})
	assert.True(t, common.Is(err, common.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	id := common.NewUUID()
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE id").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.True(t, common.Is(err, common.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateIfStatus(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	id := common.NewUUID()
	studentID := common.NewUUID()
	projectID := common.NewUUID()
	mock.ExpectQuery("UPDATE applications").
		WillReturnRows(applicationRows(id, studentID, projectID, application.StatusApproved))

	updated, err := repo.UpdateIfStatus(context.Background(), id, application.StatusPending, application.Review{
		Status:     application.StatusApproved,
		ReviewedBy: common.NewUUID(),
		ReviewedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusApproved, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateIfStatusLostRace(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	id := common.NewUUID()
	mock.ExpectQuery("UPDATE applications").
		WillReturnError(sql.ErrNoRows)
	// the row still exists, just not pending anymore
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE id").
		WithArgs(id).
		WillReturnRows(applicationRows(id, common.NewUUID(), common.NewUUID(), application.StatusApproved))

	_, err := repo.UpdateIfStatus(context.Background(), id, application.StatusPending, application.Review{
		Status:     application.StatusRejected,
		ReviewedBy: common.NewUUID(),
		ReviewedAt: time.Now().UTC(),
	})
	assert.True(t, common.Is(err, common.CodeConflict))
	assert.Contains(t, err.Error(), "approved")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryDeleteIfStatus(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	id := common.NewUUID()
	mock.ExpectExec("DELETE FROM applications").
		WithArgs(id, application.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteIfStatus(context.Background(), id, application.StatusPending))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryDeleteIfStatusLostRace(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	id := common.NewUUID()
	mock.ExpectExec("DELETE FROM applications").
		WithArgs(id, application.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE id").
		WithArgs(id).
		WillReturnRows(applicationRows(id, common.NewUUID(), common.NewUUID(), application.StatusApproved))

	err := repo.DeleteIfStatus(context.Background(), id, application.StatusPending)
	assert.True(t, common.Is(err, common.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListPendingByProject(t *testing.T) {
	repo, mock := newApplicationRepoMock(t)
	projectID := common.NewUUID()
	first := common.NewUUID()
	second := common.NewUUID()
	rows := applicationRows(first, common.NewUUID(), projectID, application.StatusPending).
		AddRow(second.String(), common.NewUUID().String(), projectID.String(),
			"Another cover letter comfortably over the minimum length requirement.", "{}",
			string(application.StatusPending), "", time.Now().UTC(), nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE project_id").
		WithArgs(projectID, application.StatusPending).
		WillReturnRows(rows)

	items, err := repo.ListPendingByProject(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first, items[0].ID)
	assert.Equal(t, second, items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
