package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"fmasite/internal/content/model"
	"fmasite/internal/content/repository"
	"fmasite/internal/content/service"
	"fmasite/middleware"
	"fmasite/pkg/validate"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) (*ContentHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewContentService(repository.NewContentRepository(db), nil, "FMA")
	return NewContentHandler(svc, validate.New()), mock
}

func as(r *http.Request, userID, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.RoleKey, role)
	return r.WithContext(ctx)
}

func TestArticlesList(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM news ORDER BY date DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "date", "image", "category"}).
			AddRow("n1", "Title", "<p>x</p>", "2024-05-01", "", "General"))

	rr := httptest.NewRecorder()
	h.Articles(rr, as(httptest.NewRequest(http.MethodGet, "/api/articles", nil), "u1", "editor"))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []model.NewsArticle
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "<p>x</p>", got[0].Content)
}

func TestArticlesGetMissing(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM news WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "date", "image", "category"}))

	rr := httptest.NewRecorder()
	h.Articles(rr, as(httptest.NewRequest(http.MethodGet, "/api/articles?id=nope", nil), "u1", "editor"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestArticlesCreate(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO news")).
		WithArgs(sqlmock.AnyArg(), "Hello", "<p><em>hi</em></p>", "2024-03-01", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"title":"Hello","content":"<i>hi</i>","date":"2024-03-01"}`
	rr := httptest.NewRecorder()
	h.Articles(rr, as(httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body)), "u1", "editor"))

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp model.CreatedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticlesCreateRejectsBadInput(t *testing.T) {
	h, mock := newHandler(t)

	for _, body := range []string{
		`not json`,
		`{"content":"<p>no title</p>"}`,
		`{"title":"x","date":"yesterday"}`,
		`{"title":"x","image":"not a url"}`,
	} {
		rr := httptest.NewRecorder()
		h.Articles(rr, as(httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body)), "u1", "editor"))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagesUpdateNeedsID(t *testing.T) {
	h, _ := newHandler(t)

	rr := httptest.NewRecorder()
	h.Pages(rr, as(httptest.NewRequest(http.MethodPut, "/api/pages", strings.NewReader(`{"slug":"about","title":"About"}`)), "u1", "admin"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPagesCreateValidatesSlug(t *testing.T) {
	h, _ := newHandler(t)

	rr := httptest.NewRecorder()
	h.Pages(rr, as(httptest.NewRequest(http.MethodPost, "/api/pages", strings.NewReader(`{"slug":"About Us","title":"About"}`)), "u1", "admin"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBlocksDelete(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM content_blocks WHERE id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := httptest.NewRecorder()
	h.Blocks(rr, as(httptest.NewRequest(http.MethodDelete, "/api/blocks?id=b1", nil), "u1", "admin"))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newHandler(t)

	rr := httptest.NewRecorder()
	h.Settings(rr, as(httptest.NewRequest(http.MethodDelete, "/api/settings", nil), "u1", "admin"))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestBackupIsAdminOnly(t *testing.T) {
	h, mock := newHandler(t)

	rr := httptest.NewRecorder()
	h.Backup(rr, as(httptest.NewRequest(http.MethodGet, "/api/backup", nil), "u1", "editor"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	mock.ExpectQuery(regexp.QuoteMeta("FROM news")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "date", "image", "category"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM content_blocks")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "page", "section", "title", "content", "image", "metadata", "order_index"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM pages")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title", "content", "meta_description", "is_published"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM site_settings")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "value", "type"}))

	rr = httptest.NewRecorder()
	h.Backup(rr, as(httptest.NewRequest(http.MethodGet, "/api/backup", nil), "u1", "admin"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	var backup model.Backup
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &backup))
	assert.Equal(t, "1.0", backup.Version)
	assert.Equal(t, "FMA", backup.Site)
	assert.NotNil(t, backup.Data.News)
}
