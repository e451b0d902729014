package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"fmasite/internal/user/model"
	"fmasite/internal/user/repository"
	"fmasite/internal/user/service"
	"fmasite/middleware"
	"fmasite/pkg/validate"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "role", "full_name", "created_at", "updated_at"}

func newHandler(t *testing.T) (*UserHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserHandler(service.NewUserService(repository.NewUserRepository(db)), validate.New()), mock
}

func as(r *http.Request, userID, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.RoleKey, role)
	return r.WithContext(ctx)
}

func TestListUsers(t *testing.T) {
	h, mock := newHandler(t)
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, role, full_name, created_at, updated_at FROM users ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u2", "editor@fma.mg", "editor", nil, created, nil).
			AddRow("u1", "admin@fma.mg", "admin", "Admin", created.Add(-time.Hour), created))

	rr := httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodGet, "/api/users", nil), "u1", "admin"))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []model.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].ID)
	assert.Equal(t, "", got[0].FullName)
	assert.Nil(t, got[0].UpdatedAt)
	assert.Equal(t, "Admin", got[1].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserRole(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET role = COALESCE($1, role)")).
		WithArgs("admin", nil, nil, "u2").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u2", "editor@fma.mg", "admin", "Rado", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodPut, "/api/users?id=u2", strings.NewReader(`{"role":"admin"}`))
	rr := httptest.NewRecorder()
	h.Users(rr, as(req, "u1", "admin"))

	require.Equal(t, http.StatusOK, rr.Code)
	var got model.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "admin", got.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserRejections(t *testing.T) {
	h, mock := newHandler(t)

	rr := httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodPut, "/api/users?id=u2", strings.NewReader(`{"role":"owner"}`)), "u1", "admin"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodPut, "/api/users?id=u2", strings.NewReader(`{"email":"nope"}`)), "u1", "admin"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodPut, "/api/users?id=u1", strings.NewReader(`{"role":"editor"}`)), "u1", "admin"))
	assert.Equal(t, http.StatusConflict, rr.Code)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs(nil, "Nobody", nil, "ghost").
		WillReturnRows(sqlmock.NewRows(userCols))
	rr = httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodPut, "/api/users?id=ghost", strings.NewReader(`{"full_name":"Nobody"}`)), "u1", "admin"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rr := httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodDelete, "/api/users?id=u2", nil), "u1", "admin"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodDelete, "/api/users?id=u1", nil), "u1", "admin"))
	assert.Equal(t, http.StatusConflict, rr.Code, "admins cannot delete themselves")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	rr = httptest.NewRecorder()
	h.Users(rr, as(httptest.NewRequest(http.MethodDelete, "/api/users?id=ghost", nil), "u1", "admin"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeFallsBackToToken(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("u9").
		WillReturnRows(sqlmock.NewRows(userCols))

	rr := httptest.NewRecorder()
	h.Me(rr, as(httptest.NewRequest(http.MethodGet, "/api/me", nil), "u9", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	var got model.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "u9", got.ID)
	assert.Equal(t, service.DefaultRole, got.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
