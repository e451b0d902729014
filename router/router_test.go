package router

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"fmasite/config"
	"fmasite/internal/assistant"
	"fmasite/internal/content/repository"
	"fmasite/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := Setup(Deps{
		DB:        db,
		Hub:       socket.NewHub(repository.NewContentRepository(db)),
		Assistant: assistant.New(nil),
		Config:    config.Config{JWTSecret: "secret", SiteName: "FMA", CORSOrigin: "https://admin.example"},
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
		return rr
	}

	rr := serve(http.MethodGet, "/api/articles")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "https://admin.example", rr.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusNoContent, serve(http.MethodOptions, "/api/articles").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/ws/edit?entity=news&id=1").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/media").Code, "media is off without a store")

	rr = serve(http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fmasite_boot_time")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content, date, image, category FROM news ORDER BY date DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "date", "image", "category"}).
			AddRow("n1", "Fête", "<p>Bonjour</p>", "2024-05-01", "", "vie"))
	rr = serve(http.MethodGet, "/news")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/news/n1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func bearer(t *testing.T, sub, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       sub,
		"user_role": role,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestUsersAreAdminOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := Setup(Deps{
		DB:        db,
		Hub:       socket.NewHub(repository.NewContentRepository(db)),
		Assistant: assistant.New(nil),
		Config:    config.Config{JWTSecret: "secret", SiteName: "FMA", CORSOrigin: "*"},
	})

	serve := func(path, role string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearer(t, "u1", role))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusForbidden, serve("/api/users", "editor"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "full_name", "created_at", "updated_at"}))
	assert.Equal(t, http.StatusOK, serve("/api/users", "admin"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "full_name", "created_at", "updated_at"}))
	assert.Equal(t, http.StatusOK, serve("/api/me", "editor"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
