package application

import (
	"context"
	"time"

	"labmatch/internal/common"
)

// Review carries the fields written by a terminal transition.
type Review struct {
	Status     Status
	ReviewedBy common.UUID
	ReviewedAt time.Time
	Feedback   string
}

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	// FindPending returns the pending application for the pair, or a
	// not_found error. Terminal records for the same pair are ignored.
	FindPending(ctx context.Context, projectID, studentID common.UUID) (*Application, error)
	ListByStudent(ctx context.Context, studentID common.UUID) ([]Application, error)
	ListByProjects(ctx context.Context, projectIDs []common.UUID) ([]Application, error)
	ListPendingByProject(ctx context.Context, projectID common.UUID) ([]Application, error)
	// UpdateIfStatus applies the review only if the application still has
	// the expected status at write time; otherwise it returns a conflict
	// error. This is the compare-and-set that makes terminal transitions
	// exactly-once under concurrent reviewers.
	UpdateIfStatus(ctx context.Context, id common.UUID, expected Status, review Review) (*Application, error)
	// DeleteIfStatus removes the record only while it still has the
	// expected status, so a withdraw cannot race a concurrent approval.
	DeleteIfStatus(ctx context.Context, id common.UUID, expected Status) error
}
