package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/platform/middleware"
	"storefront/internal/transport/http/shared"
	dErrors "storefront/pkg/domain-errors"
)

// ProductService defines the interface the handler needs. Kept here so the
// transport seam can be mocked in tests.
type ProductService interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id int64) error
}

// Handler exposes the catalog routes. Route paths mirror the public
// storefront API and must not change without the frontend.
type Handler struct {
	log     *slog.Logger
	service ProductService
}

func NewHandler(service ProductService, log *slog.Logger) *Handler {
	return &Handler{log: log, service: service}
}

// Register mounts the catalog routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Post("/createproducts", h.handleCreate)
	r.Post("/updateproducts", h.handleUpdate)
	r.Post("/deleteproducts", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list products",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": products})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.service.Create(r.Context(), p)
	if err != nil {
		h.warnOrError(r, "failed to create product", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": created})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	updated, err := h.service.Update(r.Context(), p)
	if err != nil {
		h.warnOrError(r, "failed to update product", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.service.Delete(r.Context(), req.ID); err != nil {
		h.warnOrError(r, "failed to delete product", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"response": map[string]int64{"deleted": req.ID}})
}

func (h *Handler) warnOrError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.log.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		return
	}
	h.log.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
