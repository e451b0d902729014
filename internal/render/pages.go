package render

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"fmasite/internal/content/model"
	"fmasite/internal/content/service"
	"fmasite/pkg/logger"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Source is the read side of the content service used by public pages.
type Source interface {
	ListSummaries() ([]model.ArticleSummary, error)
	GetArticle(id string) (*model.NewsArticle, error)
	GetPublishedPage(slug string) (*model.Page, []model.ContentBlock, error)
}

// Pages serves the public site.
type Pages struct {
	source   Source
	site     string
	tmpl     *template.Template
	minifier *minify.M
}

type pageData struct {
	Site        string
	Title       string
	Description string
	Articles    []model.ArticleSummary
	Article     *model.NewsArticle
	Page        *model.Page
	Blocks      []model.ContentBlock
}

func NewPages(source Source, site string) (*Pages, error) {
	tmpl, err := template.New("site").
		Funcs(template.FuncMap{"trusted": Trusted}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	return &Pages{source: source, site: site, tmpl: tmpl, minifier: m}, nil
}

// News serves GET /news and GET /news/{id}.
func (p *Pages) News(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/news"), "/")
	if id == "" {
		articles, err := p.source.ListSummaries()
		if err != nil {
			p.fail(w, err)
			return
		}
		p.render(w, "news.html", pageData{Site: p.site, Title: "Actualités", Articles: articles})
		return
	}

	a, err := p.source.GetArticle(id)
	if err != nil {
		p.fail(w, err)
		return
	}
	p.render(w, "article.html", pageData{Site: p.site, Title: a.Title, Article: a})
}

// Page serves GET /pages/{slug}.
func (p *Pages) Page(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/pages"), "/")
	if slug == "" || strings.Contains(slug, "/") {
		http.NotFound(w, r)
		return
	}
	page, blocks, err := p.source.GetPublishedPage(slug)
	if err != nil {
		p.fail(w, err)
		return
	}
	p.render(w, "page.html", pageData{
		Site:        p.site,
		Title:       page.Title,
		Description: page.MetaDescription,
		Page:        page,
		Blocks:      blocks,
	})
}

func (p *Pages) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	logger.Sugar.Errorf("Render: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (p *Pages) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Sugar.Errorf("Render %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	out, err := p.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		logger.Sugar.Warnf("Minify %s: %v", name, err)
		out = buf.Bytes()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}
