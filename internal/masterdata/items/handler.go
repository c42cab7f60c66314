package items

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-dms/meridian-dms/internal/masterdata/shared"
	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type itemRequest struct {
	Code       string  `json:"code" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	UnitType   string  `json:"unit_type"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
	Discount1  float64 `json:"discount1" validate:"gte=0,lte=100"`
	Discount2  float64 `json:"discount2" validate:"gte=0,lte=100"`
	SupplierID int64   `json:"supplier_id" validate:"required,gt=0"`
}

type listResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = shared.DefaultPage
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = shared.DefaultLimit
	}

	filters := shared.ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}
	if raw := r.URL.Query().Get("supplierId"); raw != "" {
		supplierID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid supplierId")
			return
		}
		filters.SupplierID = &supplierID
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), Item{
		Code:       req.Code,
		Name:       req.Name,
		UnitType:   req.UnitType,
		UnitPrice:  req.UnitPrice,
		Discount1:  req.Discount1,
		Discount2:  req.Discount2,
		SupplierID: req.SupplierID,
	})
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}

	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, Item{
		Code:       req.Code,
		Name:       req.Name,
		UnitType:   req.UnitType,
		UnitPrice:  req.UnitPrice,
		Discount1:  req.Discount1,
		Discount2:  req.Discount2,
		SupplierID: req.SupplierID,
	})
	if err != nil {
		h.logger.Error("update item", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete item", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id})
}
