package repository

import (
	"database/sql"
	"fmasite/internal/user/model"
	"fmasite/pkg/logger"
)

const userColumns = "id, email, role, full_name, created_at, updated_at"

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	var fullName sql.NullString
	var updatedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.Role, &fullName, &u.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	u.FullName = fullName.String
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return &u, nil
}

// List returns every CMS user, newest first.
func (r *UserRepository) List() ([]model.User, error) {
	rows, err := r.DB.Query("SELECT " + userColumns + " FROM users ORDER BY created_at DESC")
	if err != nil {
		logger.Sugar.Errorf("Failed to list users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan user row: %v", err)
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Get(id string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get user %s: %v", id, err)
	}
	return u, err
}

// Update applies the non-nil fields of req and returns the updated row.
func (r *UserRepository) Update(id string, req model.UpdateRequest) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRow(`UPDATE users SET role = COALESCE($1, role), full_name = COALESCE($2, full_name), email = COALESCE($3, email), updated_at = NOW()
		WHERE id = $4 RETURNING `+userColumns,
		req.Role, req.FullName, req.Email, id))
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to update user %s: %v", id, err)
	}
	return u, err
}

func (r *UserRepository) Delete(id string) (int64, error) {
	result, err := r.DB.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete user %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}
