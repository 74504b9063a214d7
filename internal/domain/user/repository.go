package user

import (
	"context"

	"labmatch/internal/common"
)

type Repository interface {
	GetByID(ctx context.Context, id common.UUID) (*User, error)
	ListByIDs(ctx context.Context, ids []common.UUID) ([]User, error)
	UpdateSkills(ctx context.Context, id common.UUID, skills []string) (*User, error)
}
