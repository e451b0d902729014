package handler

import (
	"encoding/json"
	"errors"
	"fmasite/internal/user/model"
	"fmasite/internal/user/service"
	"fmasite/middleware"
	"fmasite/pkg/logger"
	"fmasite/pkg/validate"
	"net/http"
)

type UserHandler struct {
	Service   *service.UserService
	Validator *validate.RequestValidator
}

func NewUserHandler(service *service.UserService, v *validate.RequestValidator) *UserHandler {
	return &UserHandler{Service: service, Validator: v}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	case errors.Is(err, service.ErrSelf):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Sugar.Errorf("Handler: users: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
	}
}

// Users serves /api/users. It is mounted for admins only.
func (h *UserHandler) Users(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	switch r.Method {
	case http.MethodGet:
		if id != "" {
			u, err := h.Service.Get(id)
			if err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
			return
		}
		users, err := h.Service.List()
		if err != nil {
			fail(w, err)
			return
		}
		if users == nil {
			users = []model.User{}
		}
		writeJSON(w, http.StatusOK, users)

	case http.MethodPut:
		if id == "" {
			http.Error(w, "Missing id parameter", http.StatusBadRequest)
			return
		}
		var req model.UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.Validator.Validate(req); err != nil {
			http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
			return
		}
		u, err := h.Service.Update(middleware.UserID(r), id, req)
		if err != nil {
			fail(w, err)
			return
		}
		logger.Sugar.Infof("User %s updated user %s", middleware.UserID(r), id)
		writeJSON(w, http.StatusOK, u)

	case http.MethodDelete:
		if id == "" {
			http.Error(w, "Missing id parameter", http.StatusBadRequest)
			return
		}
		if err := h.Service.Delete(middleware.UserID(r), id); err != nil {
			fail(w, err)
			return
		}
		logger.Sugar.Infof("User %s deleted user %s", middleware.UserID(r), id)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Me serves GET /api/me, the caller's own profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	u, err := h.Service.Profile(middleware.UserID(r), middleware.Role(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
