package procurement

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

// Handler manages procurement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type poLineRequest struct {
	ItemID int64   `json:"item_id" validate:"required"`
	Qty    float64 `json:"qty" validate:"required,gt=0"`
}

type poRequest struct {
	Code       string          `json:"code"`
	SupplierID int64           `json:"supplier_id" validate:"required"`
	OrderDate  string          `json:"order_date"`
	Lines      []poLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type poUpdateRequest struct {
	SupplierID int64  `json:"supplier_id" validate:"required"`
	OrderDate  string `json:"order_date"`
}

type grnLineRequest struct {
	ItemID      int64   `json:"item_id" validate:"required"`
	OrderedQty  float64 `json:"ordered_qty" validate:"gte=0"`
	ReceivedQty float64 `json:"received_qty" validate:"gte=0"`
}

type grnRequest struct {
	POID        int64            `json:"po_id" validate:"required"`
	Code        string           `json:"code"`
	ReceiveDate string           `json:"receive_date"`
	Lines       []grnLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type grnStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type poResponse struct {
	PurchaseOrder
	Lines []POLine `json:"lines"`
}

type grnResponse struct {
	GoodsReceivedNote
	Lines []GRNLine `json:"lines"`
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, err == nil
}

func listFiltersFromQuery(r *http.Request) ListFilters {
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("supplierId"), 10, 64)
	return ListFilters{
		Status:     r.URL.Query().Get("status"),
		SupplierID: supplierID,
	}
}

func (h *Handler) CreatePO(w http.ResponseWriter, r *http.Request) {
	var req poRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	orderDate, ok := parseDate(req.OrderDate)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order date")
		return
	}

	input := CreatePOInput{Code: req.Code, SupplierID: req.SupplierID, OrderDate: orderDate}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, POLineInput{ItemID: line.ItemID, Qty: line.Qty})
	}
	created, err := h.service.CreatePurchaseOrder(r.Context(), input)
	if err != nil {
		h.logger.Error("create purchase order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) ListPOs(w http.ResponseWriter, r *http.Request) {
	pos, err := h.service.ListPurchaseOrders(r.Context(), listFiltersFromQuery(r))
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if pos == nil {
		pos = []PurchaseOrder{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchase_orders": pos, "total": len(pos)})
}

func (h *Handler) ShowPO(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid purchase order id")
		return
	}
	po, lines, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if lines == nil {
		lines = []POLine{}
	}
	httpx.JSON(w, http.StatusOK, poResponse{PurchaseOrder: po, Lines: lines})
}

func (h *Handler) UpdatePO(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid purchase order id")
		return
	}
	var req poUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	orderDate, ok := parseDate(req.OrderDate)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order date")
		return
	}

	if err := h.service.UpdatePurchaseOrder(r.Context(), id, orderDate, req.SupplierID); err != nil {
		h.logger.Error("update purchase order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handler) DeletePO(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid purchase order id")
		return
	}
	if err := h.service.DeletePurchaseOrder(r.Context(), id); err != nil {
		h.logger.Error("delete purchase order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handler) CreateGRN(w http.ResponseWriter, r *http.Request) {
	var req grnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	receiveDate, ok := parseDate(req.ReceiveDate)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid receive date")
		return
	}

	input := CreateGRNInput{POID: req.POID, Code: req.Code, ReceiveDate: receiveDate}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, GRNLineInput{ItemID: line.ItemID, OrderedQty: line.OrderedQty, ReceivedQty: line.ReceivedQty})
	}
	result, err := h.service.CreateGRN(r.Context(), input)
	if err != nil {
		h.logger.Error("create goods received note", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) ListGRNs(w http.ResponseWriter, r *http.Request) {
	grns, err := h.service.ListGRNs(r.Context(), listFiltersFromQuery(r))
	if err != nil {
		h.logger.Error("list goods received notes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if grns == nil {
		grns = []GoodsReceivedNote{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grns": grns, "total": len(grns)})
}

func (h *Handler) ShowGRN(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid grn id")
		return
	}
	grn, lines, err := h.service.GetGRN(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if lines == nil {
		lines = []GRNLine{}
	}
	httpx.JSON(w, http.StatusOK, grnResponse{GoodsReceivedNote: grn, Lines: lines})
}

func (h *Handler) UpdateGRNStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid grn id")
		return
	}
	var req grnStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.UpdateGRNStatus(r.Context(), id, GRNStatus(req.Status)); err != nil {
		h.logger.Error("update grn status", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

// MountPORoutes registers purchase order endpoints.
func (h *Handler) MountPORoutes(r chi.Router) {
	r.Get("/", h.ListPOs)
	r.Post("/", h.CreatePO)
	r.Get("/{id}", h.ShowPO)
	r.Put("/{id}", h.UpdatePO)
	r.Delete("/{id}", h.DeletePO)
}

// MountGRNRoutes registers goods received note endpoints.
func (h *Handler) MountGRNRoutes(r chi.Router) {
	r.Get("/", h.ListGRNs)
	r.Post("/", h.CreateGRN)
	r.Get("/{id}", h.ShowGRN)
	r.Patch("/{id}/status", h.UpdateGRNStatus)
}
