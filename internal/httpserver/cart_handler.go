package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/cartmirror/internal/api"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
)

type cartHandler struct {
	repo   port.CartRepository
	logger *slog.Logger
}

func (h *cartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDParam(w, r)
	if !ok {
		return
	}

	items, err := h.repo.GetCart(r.Context(), cartID)
	if err != nil {
		h.internalError(w, r, "repo.GetCart", err)
		return
	}

	respondJSON(w, r, http.StatusOK, api.CartItemsFromDomain(items))
}

func (h *cartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDParam(w, r)
	if !ok {
		return
	}

	var req api.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity < 1 {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}
	if req.Price.Amount.IsNegative() {
		respondError(w, r, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	price, err := req.Price.ToDomain()
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}

	stored, err := h.repo.AddItem(r.Context(), domain.CartItem{
		CartID:    cartID,
		ProductID: req.ProductID,
		Price:     price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.internalError(w, r, "repo.AddItem", err)
		return
	}

	respondJSON(w, r, http.StatusCreated, api.CartItemFromDomain(stored))
}

func (h *cartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDParam(w, r)
	if !ok {
		return
	}

	var req api.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity < 1 {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	updated, err := h.repo.UpdateQuantity(r.Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		h.internalError(w, r, "repo.UpdateQuantity", err)
		return
	}
	if !updated {
		respondError(w, r, http.StatusNotFound, "not_found", "cart item not found")
		return
	}

	respondJSON(w, r, http.StatusOK, api.AckResponse{Status: "ok"})
}

func (h *cartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDParam(w, r)
	if !ok {
		return
	}

	var req api.DeleteItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	deleted, err := h.repo.DeleteItem(r.Context(), cartID, req.ProductID)
	if err != nil {
		h.internalError(w, r, "repo.DeleteItem", err)
		return
	}
	if !deleted {
		respondError(w, r, http.StatusNotFound, "not_found", "cart item not found")
		return
	}

	respondJSON(w, r, http.StatusOK, api.AckResponse{Status: "ok"})
}

func (h *cartHandler) internalError(w http.ResponseWriter, r *http.Request, call string, err error) {
	h.logger.Error(call+" failed",
		"error", err,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
}

func cartIDParam(w http.ResponseWriter, r *http.Request) (domain.CartID, bool) {
	cartID := strings.TrimSpace(chi.URLParam(r, "cartID"))
	if cartID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_cart_id", "cart id is required")
		return "", false
	}
	return domain.CartID(cartID), true
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode response",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, api.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
