package returns

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

// Handler manages return endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type customerReturnLineRequest struct {
	ItemID    int64   `json:"item_id" validate:"required"`
	Qty       float64 `json:"qty" validate:"required,gt=0"`
	IsSalable bool    `json:"is_salable"`
	Reason    string  `json:"reason"`
}

type customerReturnRequest struct {
	OrderID int64                       `json:"order_id" validate:"required"`
	Items   []customerReturnLineRequest `json:"items" validate:"required,min=1,dive"`
}

type supplierReturnLineRequest struct {
	ItemID int64   `json:"item_id" validate:"required"`
	Qty    float64 `json:"qty" validate:"required,gt=0"`
	Reason string  `json:"reason"`
}

type supplierReturnRequest struct {
	SupplierID int64                       `json:"supplier_id" validate:"required"`
	Items      []supplierReturnLineRequest `json:"items" validate:"required,min=1,dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type customerReturnResponse struct {
	CustomerReturn
	Lines []CustomerReturnLine `json:"lines"`
}

type supplierReturnResponse struct {
	SupplierReturn
	Lines []SupplierReturnLine `json:"lines"`
}

func (h *Handler) CreateCustomerReturn(w http.ResponseWriter, r *http.Request) {
	var req customerReturnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	lines := make([]CustomerReturnLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, CustomerReturnLineInput{ItemID: item.ItemID, Qty: item.Qty, IsSalable: item.IsSalable, Reason: item.Reason})
	}
	created, err := h.service.CreateCustomerReturn(r.Context(), req.OrderID, lines)
	if err != nil {
		h.logger.Error("create customer return", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) ListCustomerReturns(w http.ResponseWriter, r *http.Request) {
	rets, lines, err := h.service.ListCustomerReturns(r.Context())
	if err != nil {
		h.logger.Error("list customer returns", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]customerReturnResponse, 0, len(rets))
	for _, ret := range rets {
		retLines := lines[ret.ID]
		if retLines == nil {
			retLines = []CustomerReturnLine{}
		}
		out = append(out, customerReturnResponse{CustomerReturn: ret, Lines: retLines})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"returns": out, "total": len(out)})
}

func (h *Handler) CreateSupplierReturn(w http.ResponseWriter, r *http.Request) {
	var req supplierReturnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	lines := make([]SupplierReturnLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, SupplierReturnLineInput{ItemID: item.ItemID, Qty: item.Qty, Reason: item.Reason})
	}
	created, err := h.service.CreateSupplierReturn(r.Context(), req.SupplierID, lines)
	if err != nil {
		h.logger.Error("create supplier return", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) ListSupplierReturns(w http.ResponseWriter, r *http.Request) {
	rets, lines, err := h.service.ListSupplierReturns(r.Context())
	if err != nil {
		h.logger.Error("list supplier returns", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]supplierReturnResponse, 0, len(rets))
	for _, ret := range rets {
		retLines := lines[ret.ID]
		if retLines == nil {
			retLines = []SupplierReturnLine{}
		}
		out = append(out, supplierReturnResponse{SupplierReturn: ret, Lines: retLines})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"returns": out, "total": len(out)})
}

func (h *Handler) NonSalableItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetNonSalableItems(r.Context())
	if err != nil {
		h.logger.Error("list non-salable items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []NonSalableItem{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (h *Handler) UpdateCustomerReturnStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.service.UpdateCustomerReturnStatus)
}

func (h *Handler) UpdateSupplierReturnStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.service.UpdateSupplierReturnStatus)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, update func(context.Context, int64, Status) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid return id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := update(r.Context(), id, Status(req.Status)); err != nil {
		h.logger.Error("update return status", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

// MountRoutes registers return endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/customer", h.CreateCustomerReturn)
	r.Get("/customer", h.ListCustomerReturns)
	r.Patch("/customer/{id}/status", h.UpdateCustomerReturnStatus)
	r.Post("/supplier", h.CreateSupplierReturn)
	r.Get("/supplier", h.ListSupplierReturns)
	r.Patch("/supplier/{id}/status", h.UpdateSupplierReturnStatus)
	r.Get("/non-salable", h.NonSalableItems)
}
