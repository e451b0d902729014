package handler

import (
	"encoding/json"
	"errors"
	"fmasite/internal/content/model"
	"fmasite/internal/content/service"
	"fmasite/middleware"
	"fmasite/pkg/logger"
	"fmasite/pkg/validate"
	"net/http"
)

type ContentHandler struct {
	Service   *service.ContentService
	Validator *validate.RequestValidator
}

func NewContentHandler(service *service.ContentService, v *validate.RequestValidator) *ContentHandler {
	return &ContentHandler{Service: service, Validator: v}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into req and checks its validation tags.
func (h *ContentHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := h.Validator.Validate(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func fail(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	logger.Sugar.Errorf("Handler: %s: %v", what, err)
	http.Error(w, "Database error", http.StatusInternalServerError)
}

// Articles serves /api/articles.
func (h *ContentHandler) Articles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			a, err := h.Service.GetArticle(id)
			if err != nil {
				fail(w, "Article", err)
				return
			}
			writeJSON(w, http.StatusOK, a)
			return
		}
		articles, err := h.Service.ListArticles()
		if err != nil {
			fail(w, "Articles", err)
			return
		}
		if articles == nil {
			articles = []model.NewsArticle{}
		}
		writeJSON(w, http.StatusOK, articles)

	case http.MethodPost:
		var req model.ArticleRequest
		if !h.decode(w, r, &req) {
			return
		}
		id, err := h.Service.CreateArticle(req)
		if err != nil {
			fail(w, "Article", err)
			return
		}
		logger.Sugar.Infof("User %s created article %s", middleware.UserID(r), id)
		writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: id})

	case http.MethodPut:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		var req model.ArticleRequest
		if !h.decode(w, r, &req) {
			return
		}
		if err := h.Service.UpdateArticle(id, req); err != nil {
			fail(w, "Article", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		h.delete(w, r, model.EntityNews, "Article")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Pages serves /api/pages.
func (h *ContentHandler) Pages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			p, err := h.Service.GetPage(id)
			if err != nil {
				fail(w, "Page", err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
		pages, err := h.Service.ListPages()
		if err != nil {
			fail(w, "Pages", err)
			return
		}
		if pages == nil {
			pages = []model.Page{}
		}
		writeJSON(w, http.StatusOK, pages)

	case http.MethodPost:
		var req model.PageRequest
		if !h.decode(w, r, &req) {
			return
		}
		id, err := h.Service.CreatePage(req)
		if err != nil {
			fail(w, "Page", err)
			return
		}
		writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: id})

	case http.MethodPut:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		var req model.PageRequest
		if !h.decode(w, r, &req) {
			return
		}
		if err := h.Service.UpdatePage(id, req); err != nil {
			fail(w, "Page", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		h.delete(w, r, model.EntityPages, "Page")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Blocks serves /api/blocks. GET takes an optional page filter.
func (h *ContentHandler) Blocks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		blocks, err := h.Service.ListBlocks(r.URL.Query().Get("page"))
		if err != nil {
			fail(w, "Content blocks", err)
			return
		}
		if blocks == nil {
			blocks = []model.ContentBlock{}
		}
		writeJSON(w, http.StatusOK, blocks)

	case http.MethodPost:
		var req model.ContentBlockRequest
		if !h.decode(w, r, &req) {
			return
		}
		id, err := h.Service.CreateBlock(req)
		if err != nil {
			fail(w, "Content block", err)
			return
		}
		writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: id})

	case http.MethodPut:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		var req model.ContentBlockRequest
		if !h.decode(w, r, &req) {
			return
		}
		if err := h.Service.UpdateBlock(id, req); err != nil {
			fail(w, "Content block", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		h.delete(w, r, model.EntityContentBlocks, "Content block")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ContentHandler) delete(w http.ResponseWriter, r *http.Request, entity, what string) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(entity, id); err != nil {
		fail(w, what, err)
		return
	}
	logger.Sugar.Infof("User %s deleted %s %s", middleware.UserID(r), entity, id)
	w.WriteHeader(http.StatusNoContent)
}

// Settings serves /api/settings.
func (h *ContentHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.Service.ListSettings()
		if err != nil {
			fail(w, "Settings", err)
			return
		}
		if settings == nil {
			settings = []model.SiteSetting{}
		}
		writeJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var req model.SettingRequest
		if !h.decode(w, r, &req) {
			return
		}
		id, err := h.Service.SaveSetting(req)
		if err != nil {
			fail(w, "Setting", err)
			return
		}
		writeJSON(w, http.StatusOK, model.CreatedResponse{ID: id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Backup serves /api/backup as a downloadable JSON file.
func (h *ContentHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if middleware.Role(r) != middleware.RoleAdmin {
		http.Error(w, "Forbidden: backups are admin only", http.StatusForbidden)
		return
	}

	backup, err := h.Service.Export()
	if err != nil {
		fail(w, "Backup", err)
		return
	}
	name := "backup-" + backup.Timestamp.Format("2006-01-02") + ".json"
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	writeJSON(w, http.StatusOK, backup)
}
