package service

import (
	"database/sql"
	"errors"
	"fmasite/internal/content/model"
	"fmasite/internal/content/repository"
	"fmasite/internal/richtext"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

const (
	SnippetLength = 150
	BackupVersion = "1.0"
)

// Notifier is told about REST writes so open editing sessions can follow.
// socket.Hub implements it.
type Notifier interface {
	ContentReplaced(entity, id, content string)
	EntityRemoved(entity, id string)
}

type ContentService struct {
	Repo     *repository.ContentRepository
	Notifier Notifier
	SiteName string
	now      func() time.Time
}

func NewContentService(repo *repository.ContentRepository, notifier Notifier, siteName string) *ContentService {
	return &ContentService{Repo: repo, Notifier: notifier, SiteName: siteName, now: time.Now}
}

// Canonical rewrites submitted HTML into the stored form: the closed tag
// vocabulary, merged runs, escaped text.
func Canonical(content string) string {
	return richtext.Serialize(richtext.Deserialize(content))
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ContentService) replaced(entity, id, content string) {
	if s.Notifier != nil {
		s.Notifier.ContentReplaced(entity, id, content)
	}
}

func (s *ContentService) ListArticles() ([]model.NewsArticle, error) {
	return s.Repo.ListNews()
}

// ListSummaries returns every article newest first with a plain-text
// snippet instead of its content.
func (s *ContentService) ListSummaries() ([]model.ArticleSummary, error) {
	articles, err := s.Repo.ListNews()
	if err != nil {
		return nil, err
	}
	out := make([]model.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		out = append(out, model.ArticleSummary{
			ID:       a.ID,
			Title:    a.Title,
			Date:     a.Date,
			Image:    a.Image,
			Category: a.Category,
			Snippet:  richtext.Snippet(a.Content, SnippetLength),
		})
	}
	return out, nil
}

func (s *ContentService) GetArticle(id string) (*model.NewsArticle, error) {
	a, err := s.Repo.GetNews(id)
	return a, notFound(err)
}

func (s *ContentService) CreateArticle(req model.ArticleRequest) (string, error) {
	a := model.NewsArticle{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Content:  Canonical(req.Content),
		Date:     req.Date,
		Image:    req.Image,
		Category: req.Category,
	}
	if a.Date == "" {
		a.Date = s.now().Format("2006-01-02")
	}
	return a.ID, s.Repo.CreateNews(a)
}

func (s *ContentService) UpdateArticle(id string, req model.ArticleRequest) error {
	a := model.NewsArticle{
		ID:       id,
		Title:    req.Title,
		Content:  Canonical(req.Content),
		Date:     req.Date,
		Image:    req.Image,
		Category: req.Category,
	}
	if a.Date == "" {
		a.Date = s.now().Format("2006-01-02")
	}
	if err := affected(s.Repo.UpdateNews(a)); err != nil {
		return err
	}
	s.replaced(model.EntityNews, id, a.Content)
	return nil
}

func (s *ContentService) ListPages() ([]model.Page, error) {
	return s.Repo.ListPages()
}

func (s *ContentService) GetPage(id string) (*model.Page, error) {
	p, err := s.Repo.GetPage(id)
	return p, notFound(err)
}

// GetPublishedPage returns a page for public display together with its
// content blocks. Unpublished pages are reported as missing.
func (s *ContentService) GetPublishedPage(slug string) (*model.Page, []model.ContentBlock, error) {
	p, err := s.Repo.GetPageBySlug(slug)
	if err != nil {
		return nil, nil, notFound(err)
	}
	if !p.IsPublished {
		return nil, nil, ErrNotFound
	}
	blocks, err := s.Repo.ListBlocks(slug)
	if err != nil {
		return nil, nil, err
	}
	return p, blocks, nil
}

func (s *ContentService) CreatePage(req model.PageRequest) (string, error) {
	p := model.Page{
		ID:              uuid.NewString(),
		Slug:            req.Slug,
		Title:           req.Title,
		Content:         Canonical(req.Content),
		MetaDescription: req.MetaDescription,
		IsPublished:     req.IsPublished,
	}
	return p.ID, s.Repo.CreatePage(p)
}

func (s *ContentService) UpdatePage(id string, req model.PageRequest) error {
	p := model.Page{
		ID:              id,
		Slug:            req.Slug,
		Title:           req.Title,
		Content:         Canonical(req.Content),
		MetaDescription: req.MetaDescription,
		IsPublished:     req.IsPublished,
	}
	if err := affected(s.Repo.UpdatePage(p)); err != nil {
		return err
	}
	s.replaced(model.EntityPages, id, p.Content)
	return nil
}

func (s *ContentService) ListBlocks(page string) ([]model.ContentBlock, error) {
	return s.Repo.ListBlocks(page)
}

func blockFrom(id string, req model.ContentBlockRequest) model.ContentBlock {
	return model.ContentBlock{
		ID:         id,
		Key:        req.Key,
		Page:       req.Page,
		Section:    req.Section,
		Title:      req.Title,
		Content:    Canonical(req.Content),
		Image:      req.Image,
		Metadata:   req.Metadata,
		OrderIndex: req.OrderIndex,
	}
}

func (s *ContentService) CreateBlock(req model.ContentBlockRequest) (string, error) {
	b := blockFrom(uuid.NewString(), req)
	return b.ID, s.Repo.CreateBlock(b)
}

func (s *ContentService) UpdateBlock(id string, req model.ContentBlockRequest) error {
	b := blockFrom(id, req)
	if err := affected(s.Repo.UpdateBlock(b)); err != nil {
		return err
	}
	s.replaced(model.EntityContentBlocks, id, b.Content)
	return nil
}

// Delete removes a news article, page or content block.
func (s *ContentService) Delete(entity, id string) error {
	if err := affected(s.Repo.Delete(entity, id)); err != nil {
		return err
	}
	if s.Notifier != nil {
		s.Notifier.EntityRemoved(entity, id)
	}
	return nil
}

func (s *ContentService) ListSettings() ([]model.SiteSetting, error) {
	return s.Repo.ListSettings()
}

func (s *ContentService) SaveSetting(req model.SettingRequest) (string, error) {
	typ := req.Type
	if typ == "" {
		typ = "text"
	}
	return s.Repo.UpsertSetting(model.SiteSetting{ID: uuid.NewString(), Key: req.Key, Value: req.Value, Type: typ})
}

// Export collects every content table into one backup document.
func (s *ContentService) Export() (*model.Backup, error) {
	news, err := s.Repo.ListNews()
	if err != nil {
		return nil, err
	}
	blocks, err := s.Repo.ListBlocks("")
	if err != nil {
		return nil, err
	}
	pages, err := s.Repo.ListPages()
	if err != nil {
		return nil, err
	}
	settings, err := s.Repo.ListSettings()
	if err != nil {
		return nil, err
	}

	data := model.BackupData{
		News:          news,
		ContentBlocks: blocks,
		Pages:         pages,
		SiteSettings:  settings,
	}
	if data.News == nil {
		data.News = []model.NewsArticle{}
	}
	if data.ContentBlocks == nil {
		data.ContentBlocks = []model.ContentBlock{}
	}
	if data.Pages == nil {
		data.Pages = []model.Page{}
	}
	if data.SiteSettings == nil {
		data.SiteSettings = []model.SiteSetting{}
	}

	return &model.Backup{
		Version:   BackupVersion,
		Timestamp: s.now().UTC(),
		Site:      s.SiteName,
		Data:      data,
	}, nil
}
