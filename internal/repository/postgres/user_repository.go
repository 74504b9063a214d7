package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"labmatch/internal/common"
	"labmatch/internal/dbx"
	"labmatch/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, role, department, skills, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	var u user.User
	var skills []string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, pq.Array(&skills), &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Skills = skills
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	row := dbx.FromContext(ctx, r.db).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	return u, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []common.UUID) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := dbx.FromContext(ctx, r.db).QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	defer rows.Close()
	var items []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan user", err)
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	return items, nil
}

func (r *UserRepository) UpdateSkills(ctx context.Context, id common.UUID, skills []string) (*user.User, error) {
	row := dbx.FromContext(ctx, r.db).QueryRowContext(ctx,
		`UPDATE users SET skills = $1, updated_at = $2 WHERE id = $3 RETURNING `+userColumns,
		pq.Array(skills), time.Now().UTC(), id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update skills", err)
	}
	return u, nil
}

func uuidStrings(ids []common.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func toUUIDs(values []string) []common.UUID {
	out := make([]common.UUID, 0, len(values))
	for _, value := range values {
		out = append(out, common.UUID(value))
	}
	return out
}
