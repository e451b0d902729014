package service

import (
	"database/sql"
	"errors"
	"fmasite/internal/user/model"
	"fmasite/internal/user/repository"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrSelf guards admins from locking themselves out.
	ErrSelf = errors.New("admins cannot demote or delete themselves")
)

// DefaultRole is given to an authenticated user without a profile row.
const DefaultRole = "editor"

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *UserService) List() ([]model.User, error) {
	return s.Repo.List()
}

func (s *UserService) Get(id string) (*model.User, error) {
	u, err := s.Repo.Get(id)
	return u, notFound(err)
}

// Profile returns the caller's profile. Without a row the caller still gets
// an identity built from the token.
func (s *UserService) Profile(id, role string) (*model.User, error) {
	u, err := s.Repo.Get(id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if role == "" {
		role = DefaultRole
	}
	return &model.User{ID: id, Role: role}, nil
}

// Update changes id's profile on behalf of actor.
func (s *UserService) Update(actor, id string, req model.UpdateRequest) (*model.User, error) {
	if actor == id && req.Role != nil && *req.Role != "admin" {
		return nil, ErrSelf
	}
	u, err := s.Repo.Update(id, req)
	return u, notFound(err)
}

func (s *UserService) Delete(actor, id string) error {
	if actor == id {
		return ErrSelf
	}
	n, err := s.Repo.Delete(id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
