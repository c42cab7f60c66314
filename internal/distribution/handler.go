package distribution

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type setStockRequest struct {
	InStock float64 `json:"in_stock_amount"`
}

type listResponse struct {
	Distributions []Detail `json:"distributions"`
	Total         int      `json:"total"`
}

type stockUpdatesResponse struct {
	StockUpdates []StockUpdate `json:"stock_updates"`
	Total        int           `json:"total"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list distributions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if details == nil {
		details = []Detail{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Distributions: details, Total: len(details)})
}

func (h *Handler) ShowByItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}

	detail, err := h.service.GetByItem(r.Context(), itemID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid distribution id")
		return
	}

	var req setStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}

	updated, err := h.service.SetStock(r.Context(), id, req.InStock)
	if err != nil {
		h.logger.Error("set stock", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) ListStockUpdates(w http.ResponseWriter, r *http.Request) {
	filter := StockUpdateFilter{
		Type: UpdateType(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("itemId"); raw != "" {
		itemID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
			return
		}
		filter.ItemID = itemID
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return
		}
		filter.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid limit")
			return
		}
		filter.Limit = limit
	}

	updates, err := h.service.ListStockUpdates(r.Context(), filter)
	if err != nil {
		h.logger.Error("list stock updates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if updates == nil {
		updates = []StockUpdate{}
	}
	httpx.JSON(w, http.StatusOK, stockUpdatesResponse{StockUpdates: updates, Total: len(updates)})
}

// MountRoutes attaches distribution endpoints to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/item/{itemId}", h.ShowByItem)
	r.Patch("/{id}", h.SetStock)
}

// MountStockUpdateRoutes attaches the movement history listing.
func (h *Handler) MountStockUpdateRoutes(r chi.Router) {
	r.Get("/", h.ListStockUpdates)
}
