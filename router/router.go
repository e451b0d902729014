package router

import (
	"database/sql"
	"net/http"

	"fmasite/config"
	"fmasite/internal/assistant"
	contentHandler "fmasite/internal/content"
	"fmasite/internal/content/repository"
	"fmasite/internal/content/service"
	"fmasite/internal/media"
	"fmasite/internal/metrics"
	"fmasite/internal/render"
	userHandler "fmasite/internal/user"
	userRepository "fmasite/internal/user/repository"
	userService "fmasite/internal/user/service"
	"fmasite/middleware"
	"fmasite/pkg/logger"
	"fmasite/pkg/validate"
	"fmasite/socket"
)

// Deps are the long-lived components built by main.
type Deps struct {
	DB        *sql.DB
	Hub       *socket.Hub
	Resolver  *media.Resolver
	Assistant *assistant.Assistant
	Config    config.Config
}

func Setup(d Deps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(d.Config.JWTSecret, middleware.RoleAdmin, middleware.RoleEditor)
	adminOnly := middleware.Auth(d.Config.JWTSecret, middleware.RoleAdmin)
	v := validate.New()

	// WebSocket editing sessions
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(d.Hub, w, r, middleware.UserID(r))
	})
	mux.Handle("/ws/edit", auth(wsHandler))

	// REST API
	contentRepo := repository.NewContentRepository(d.DB)
	contentService := service.NewContentService(contentRepo, d.Hub, d.Config.SiteName)
	content := contentHandler.NewContentHandler(contentService, v)

	mux.Handle("/api/articles", auth(http.HandlerFunc(content.Articles)))
	mux.Handle("/api/pages", auth(http.HandlerFunc(content.Pages)))
	mux.Handle("/api/blocks", auth(http.HandlerFunc(content.Blocks)))
	mux.Handle("/api/settings", auth(http.HandlerFunc(content.Settings)))
	mux.Handle("/api/backup", auth(http.HandlerFunc(content.Backup)))

	users := userHandler.NewUserHandler(userService.NewUserService(userRepository.NewUserRepository(d.DB)), v)
	mux.Handle("/api/users", adminOnly(http.HandlerFunc(users.Users)))
	mux.Handle("/api/me", auth(http.HandlerFunc(users.Me)))

	if d.Resolver != nil {
		mux.Handle("/api/media", auth(media.NewHandler(d.Resolver)))
	}

	writing := assistant.NewHandler(d.Assistant, v)
	mux.Handle("/api/assistant/draft", auth(http.HandlerFunc(writing.Draft)))
	mux.Handle("/api/assistant/translate", auth(http.HandlerFunc(writing.Translate)))

	mux.Handle("/metrics", metrics.Handler())

	// Public site
	pages, err := render.NewPages(contentService, d.Config.SiteName)
	if err != nil {
		logger.Sugar.Fatalf("Failed to parse page templates: %v", err)
	}
	mux.HandleFunc("/news", pages.News)
	mux.HandleFunc("/news/", pages.News)
	mux.HandleFunc("/pages/", pages.Page)

	return middleware.CORS(d.Config.CORSOrigin)(mux)
}
