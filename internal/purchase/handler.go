package purchase

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
	r.Get("/purchase", h.handleList)
	r.Post("/addpurchasedata", h.handleCreate)
	r.Post("/updatepurchasedata", h.handleUpdate)
	r.Post("/deletepurchasedata", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.service.List(r.Context())
	if err != nil {
		h.logFailure(r, "failed to list purchases", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"result": purchases})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var items []Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.service.Create(r.Context(), items)
	if err != nil {
		h.logFailure(r, "failed to record purchase", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": created})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p Purchase
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	updated, err := h.service.Update(r.Context(), p)
	if err != nil {
		h.logFailure(r, "failed to update purchase", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"result": updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PurchaseID string `json:"purchaseId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.service.Delete(r.Context(), req.PurchaseID); err != nil {
		h.logFailure(r, "failed to delete purchase", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"result": map[string]string{"deleted": req.PurchaseID}})
}

func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	h.log.WarnContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
}
