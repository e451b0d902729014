package repository

import (
	"database/sql"
	"errors"
	"fmasite/internal/content/model"
	"fmasite/pkg/logger"
)

var ErrUnknownEntity = errors.New("unknown content entity")

type ContentRepository struct {
	DB *sql.DB
}

func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

// table maps an editable entity to its table. Only whitelisted names ever
// reach a query string.
func table(entity string) (string, error) {
	switch entity {
	case model.EntityNews:
		return "news", nil
	case model.EntityPages:
		return "pages", nil
	case model.EntityContentBlocks:
		return "content_blocks", nil
	}
	return "", ErrUnknownEntity
}

// GetContent loads the rich-text field of one row.
func (r *ContentRepository) GetContent(entity, id string) (string, error) {
	t, err := table(entity)
	if err != nil {
		return "", err
	}
	var content sql.NullString
	err = r.DB.QueryRow("SELECT content FROM "+t+" WHERE id = $1", id).Scan(&content)
	if err != nil {
		logger.Sugar.Errorf("Failed to load content for %s %s: %v", entity, id, err)
	}
	return content.String, err
}

func (r *ContentRepository) UpdateContent(entity, id, content string) error {
	t, err := table(entity)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec("UPDATE "+t+" SET content = $1, updated_at = NOW() WHERE id = $2", content, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to update content for %s %s: %v", entity, id, err)
	}
	return err
}

func (r *ContentRepository) ListNews() ([]model.NewsArticle, error) {
	rows, err := r.DB.Query("SELECT id, title, content, date, image, category FROM news ORDER BY date DESC")
	if err != nil {
		logger.Sugar.Errorf("Failed to list news: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []model.NewsArticle
	for rows.Next() {
		var a model.NewsArticle
		var content, image, category sql.NullString
		if err := rows.Scan(&a.ID, &a.Title, &content, &a.Date, &image, &category); err != nil {
			logger.Sugar.Errorf("Failed to scan news row: %v", err)
			return nil, err
		}
		a.Content, a.Image, a.Category = content.String, image.String, category.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ContentRepository) GetNews(id string) (*model.NewsArticle, error) {
	var a model.NewsArticle
	var content, image, category sql.NullString
	err := r.DB.QueryRow("SELECT id, title, content, date, image, category FROM news WHERE id = $1", id).
		Scan(&a.ID, &a.Title, &content, &a.Date, &image, &category)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Sugar.Errorf("Failed to get news %s: %v", id, err)
		}
		return nil, err
	}
	a.Content, a.Image, a.Category = content.String, image.String, category.String
	return &a, nil
}

func (r *ContentRepository) CreateNews(a model.NewsArticle) error {
	_, err := r.DB.Exec(`INSERT INTO news (id, title, content, date, image, category, updated_at) VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		a.ID, a.Title, a.Content, a.Date, a.Image, a.Category)
	if err != nil {
		logger.Sugar.Errorf("Failed to create news: %v", err)
	}
	return err
}

func (r *ContentRepository) UpdateNews(a model.NewsArticle) (int64, error) {
	result, err := r.DB.Exec(`UPDATE news SET title = $1, content = $2, date = $3, image = $4, category = $5, updated_at = NOW() WHERE id = $6`,
		a.Title, a.Content, a.Date, a.Image, a.Category, a.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update news %s: %v", a.ID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ContentRepository) ListPages() ([]model.Page, error) {
	rows, err := r.DB.Query("SELECT id, slug, title, content, meta_description, is_published FROM pages ORDER BY slug")
	if err != nil {
		logger.Sugar.Errorf("Failed to list pages: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan page row: %v", err)
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*model.Page, error) {
	var p model.Page
	var content, meta sql.NullString
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &content, &meta, &p.IsPublished); err != nil {
		return nil, err
	}
	p.Content, p.MetaDescription = content.String, meta.String
	return &p, nil
}

func (r *ContentRepository) GetPage(id string) (*model.Page, error) {
	p, err := scanPage(r.DB.QueryRow("SELECT id, slug, title, content, meta_description, is_published FROM pages WHERE id = $1", id))
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get page %s: %v", id, err)
	}
	return p, err
}

func (r *ContentRepository) GetPageBySlug(slug string) (*model.Page, error) {
	p, err := scanPage(r.DB.QueryRow("SELECT id, slug, title, content, meta_description, is_published FROM pages WHERE slug = $1", slug))
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get page by slug %s: %v", slug, err)
	}
	return p, err
}

func (r *ContentRepository) CreatePage(p model.Page) error {
	_, err := r.DB.Exec(`INSERT INTO pages (id, slug, title, content, meta_description, is_published, updated_at) VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		p.ID, p.Slug, p.Title, p.Content, p.MetaDescription, p.IsPublished)
	if err != nil {
		logger.Sugar.Errorf("Failed to create page %s: %v", p.Slug, err)
	}
	return err
}

func (r *ContentRepository) UpdatePage(p model.Page) (int64, error) {
	result, err := r.DB.Exec(`UPDATE pages SET slug = $1, title = $2, content = $3, meta_description = $4, is_published = $5, updated_at = NOW() WHERE id = $6`,
		p.Slug, p.Title, p.Content, p.MetaDescription, p.IsPublished, p.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update page %s: %v", p.ID, err)
		return 0, err
	}
	return result.RowsAffected()
}

// ListBlocks returns the content blocks of page in display order, or every
// block when page is empty.
func (r *ContentRepository) ListBlocks(page string) ([]model.ContentBlock, error) {
	query := "SELECT id, key, page, section, title, content, image, metadata, order_index FROM content_blocks"
	var args []any
	if page != "" {
		query += " WHERE page = $1"
		args = append(args, page)
	}
	query += " ORDER BY page, order_index"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to list content blocks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []model.ContentBlock
	for rows.Next() {
		var b model.ContentBlock
		var title, content, image sql.NullString
		var metadata []byte
		if err := rows.Scan(&b.ID, &b.Key, &b.Page, &b.Section, &title, &content, &image, &metadata, &b.OrderIndex); err != nil {
			logger.Sugar.Errorf("Failed to scan content block row: %v", err)
			return nil, err
		}
		b.Title, b.Content, b.Image = title.String, content.String, image.String
		if len(metadata) > 0 {
			b.Metadata = metadata
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *ContentRepository) CreateBlock(b model.ContentBlock) error {
	_, err := r.DB.Exec(`INSERT INTO content_blocks (id, key, page, section, title, content, image, metadata, order_index, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		b.ID, b.Key, b.Page, b.Section, b.Title, b.Content, b.Image, nullJSON(b.Metadata), b.OrderIndex)
	if err != nil {
		logger.Sugar.Errorf("Failed to create content block %s: %v", b.Key, err)
	}
	return err
}

func (r *ContentRepository) UpdateBlock(b model.ContentBlock) (int64, error) {
	result, err := r.DB.Exec(`UPDATE content_blocks SET key = $1, page = $2, section = $3, title = $4, content = $5, image = $6, metadata = $7, order_index = $8, updated_at = NOW()
		WHERE id = $9`,
		b.Key, b.Page, b.Section, b.Title, b.Content, b.Image, nullJSON(b.Metadata), b.OrderIndex, b.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update content block %s: %v", b.ID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// Delete removes one row of an editable entity.
func (r *ContentRepository) Delete(entity, id string) (int64, error) {
	t, err := table(entity)
	if err != nil {
		return 0, err
	}
	result, err := r.DB.Exec("DELETE FROM "+t+" WHERE id = $1", id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete %s %s: %v", entity, id, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ContentRepository) ListSettings() ([]model.SiteSetting, error) {
	rows, err := r.DB.Query("SELECT id, key, value, type FROM site_settings ORDER BY key")
	if err != nil {
		logger.Sugar.Errorf("Failed to list site settings: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []model.SiteSetting
	for rows.Next() {
		var s model.SiteSetting
		var value, typ sql.NullString
		if err := rows.Scan(&s.ID, &s.Key, &value, &typ); err != nil {
			logger.Sugar.Errorf("Failed to scan setting row: %v", err)
			return nil, err
		}
		s.Value, s.Type = value.String, typ.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertSetting writes a setting by key and returns the id of the row.
func (r *ContentRepository) UpsertSetting(s model.SiteSetting) (string, error) {
	var id string
	err := r.DB.QueryRow(`INSERT INTO site_settings (id, key, value, type, updated_at) VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $3, type = $4, updated_at = NOW()
		RETURNING id`, s.ID, s.Key, s.Value, s.Type).Scan(&id)
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert setting %s: %v", s.Key, err)
	}
	return id, err
}
