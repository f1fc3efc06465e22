package account

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/platform/middleware"
	"storefront/internal/transport/http/shared"
	dErrors "storefront/pkg/domain-errors"
)

type Handler struct {
	log     *slog.Logger
	service *Service
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/userdata", h.handleList)
	r.Post("/adduserdata", h.handleCreate)
	r.Post("/updateuserdata", h.handleUpdate)
	r.Post("/deleteuserdata", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.logFailure(r, "failed to list users", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": users})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.service.Create(r.Context(), u)
	if err != nil {
		h.logFailure(r, "failed to create user", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": created})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	updated, err := h.service.Update(r.Context(), u)
	if err != nil {
		h.logFailure(r, "failed to update user", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.service.Delete(r.Context(), req.ID); err != nil {
		h.logFailure(r, "failed to delete user", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": map[string]string{"deleted": req.ID}})
}

func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	h.log.WarnContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
}
