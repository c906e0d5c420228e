// Package admin holds the user management endpoints of the back office.
package admin

import (
	"context"
	"errors"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/repository"

	"github.com/rs/zerolog/log"
)

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// ListUsers supports a role filter, a name/email search and pagination.
func (s *Service) ListUsers(ctx context.Context, f UserListFilter) (*UserListResponse, error) {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	role := domain.UserRole(strings.TrimSpace(f.Role))
	if role != "" && !role.Valid() {
		return nil, ErrInvalidRole
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{Role: role, Query: f.Query}, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	out := &UserListResponse{Users: make([]UserView, 0, len(users)), Total: total, Page: page, Limit: limit}
	for i := range users {
		out.Users = append(out.Users, toView(&users[i]))
	}
	return out, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*UserView, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	v := toView(u)
	return &v, nil
}

// DeleteUser removes an account with everything it owns.
func (s *Service) DeleteUser(ctx context.Context, id, adminID int64) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	log.Info().Int64("user_id", id).Int64("admin_id", adminID).Msg("admin deleted user")
	return nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
