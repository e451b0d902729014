package repository

import (
	"regexp"
	"testing"

	"fmasite/internal/content/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*ContentRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContentRepository(db), mock
}

func TestGetContent(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT content FROM pages WHERE id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow("<p>About</p>"))

	content, err := repo.GetContent(model.EntityPages, "p1")
	require.NoError(t, err)
	assert.Equal(t, "<p>About</p>", content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetContentNull(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT content FROM content_blocks WHERE id = $1")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow(nil))

	content, err := repo.GetContent(model.EntityContentBlocks, "b1")
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestUnknownEntityNeverReachesSQL(t *testing.T) {
	repo, mock := newRepo(t)

	_, err := repo.GetContent("users; DROP TABLE news", "1")
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.ErrorIs(t, repo.UpdateContent("site_settings", "1", "x"), ErrUnknownEntity)
	_, err = repo.Delete("auth.users", "1")
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContent(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE news SET content = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("<p>x</p>", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateContent(model.EntityNews, "n1", "<p>x</p>"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNewsNewestFirst(t *testing.T) {
	repo, mock := newRepo(t)

	rows := sqlmock.NewRows([]string{"id", "title", "content", "date", "image", "category"}).
		AddRow("n2", "Second", "<p>b</p>", "2024-05-02", nil, "Events").
		AddRow("n1", "First", nil, "2024-05-01", "https://cdn.example/a.jpg", nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content, date, image, category FROM news ORDER BY date DESC")).
		WillReturnRows(rows)

	news, err := repo.ListNews()
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "n2", news[0].ID)
	assert.Equal(t, "", news[0].Image)
	assert.Equal(t, "", news[1].Content)
	assert.Equal(t, "https://cdn.example/a.jpg", news[1].Image)
}

func TestListNewsFailsOnUnreadableRow(t *testing.T) {
	repo, mock := newRepo(t)

	rows := sqlmock.NewRows([]string{"id", "title", "content", "date", "image", "category"}).
		AddRow("n2", "Second", "<p>b</p>", "2024-05-02", nil, "Events").
		AddRow("n1", nil, nil, "2024-05-01", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content, date, image, category FROM news ORDER BY date DESC")).
		WillReturnRows(rows)

	news, err := repo.ListNews()
	assert.Error(t, err, "a NULL title cannot be read into a string")
	assert.Nil(t, news)
}

func TestListBlocksForPage(t *testing.T) {
	repo, mock := newRepo(t)

	rows := sqlmock.NewRows([]string{"id", "key", "page", "section", "title", "content", "image", "metadata", "order_index"}).
		AddRow("b1", "hero", "home", "top", "Welcome", "<p>Hi</p>", nil, []byte(`{"color":"red"}`), 0).
		AddRow("b2", "intro", "home", "body", nil, nil, nil, nil, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, key, page, section, title, content, image, metadata, order_index FROM content_blocks WHERE page = $1 ORDER BY page, order_index")).
		WithArgs("home").
		WillReturnRows(rows)

	blocks, err := repo.ListBlocks("home")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.JSONEq(t, `{"color":"red"}`, string(blocks[0].Metadata))
	assert.Nil(t, blocks[1].Metadata)
	assert.Equal(t, 1, blocks[1].OrderIndex)
}

func TestUpdateNewsReportsAffectedRows(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE news SET title = $1")).
		WithArgs("T", "<p></p>", "2024-01-01", "", "", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.UpdateNews(model.NewsArticle{ID: "missing", Title: "T", Content: "<p></p>", Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpsertSetting(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO site_settings (id, key, value, type, updated_at)")).
		WithArgs("new-id", "site_title", "FMA", "text").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	id, err := repo.UpsertSetting(model.SiteSetting{ID: "new-id", Key: "site_title", Value: "FMA", Type: "text"})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
