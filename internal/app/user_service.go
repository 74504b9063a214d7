package app

import (
	"context"

	"labmatch/internal/common"
	"labmatch/internal/domain/user"
	"labmatch/internal/matching"
)

type UserService struct {
	users user.Repository
}

func NewUserService(users user.Repository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, id common.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateSkills replaces the student's skill profile. Duplicates (after
// canonicalization) are collapsed; original casing of the first occurrence
// is kept for display.
func (s *UserService) UpdateSkills(ctx context.Context, studentID common.UUID, skills []string) (*user.User, error) {
	current, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if current.Role != user.RoleStudent {
		return nil, common.NewError(common.CodeForbidden, "only students have a skill profile", nil)
	}

	seen := make(map[string]struct{}, len(skills))
	deduped := make([]string, 0, len(skills))
	for _, skill := range skills {
		canonical := matching.Canonical(skill)
		if canonical == "" {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		deduped = append(deduped, skill)
	}
	return s.users.UpdateSkills(ctx, studentID, deduped)
}
