package sales

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

// Handler manages order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type orderLineRequest struct {
	ItemID    int64   `json:"item_id" validate:"required"`
	Qty       float64 `json:"qty" validate:"required,gt=0"`
	Discount1 float64 `json:"discount1" validate:"gte=0,lte=100"`
	Discount2 float64 `json:"discount2" validate:"gte=0,lte=100"`
	ItemPrice float64 `json:"item_price" validate:"gte=0"`
}

type orderRequest struct {
	Code          string             `json:"code"`
	CustomerID    int64              `json:"customer_id" validate:"required"`
	PaymentMethod string             `json:"payment_method" validate:"required"`
	OrderDate     string             `json:"order_date"`
	Discount      float64            `json:"discount" validate:"gte=0"`
	TotalAmount   float64            `json:"total_amount"`
	Lines         []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type paidAmountRequest struct {
	PaidAmount float64 `json:"paid_amount" validate:"required,gt=0"`
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

type orderResponse struct {
	Order
	Outstanding float64     `json:"outstanding"`
	Lines       []OrderLine `json:"lines"`
}

func parseOrderDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, err == nil
}

func linesFromRequest(lines []orderLineRequest) []OrderLineInput {
	out := make([]OrderLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, OrderLineInput{
			ItemID:    line.ItemID,
			Qty:       line.Qty,
			Discount1: line.Discount1,
			Discount2: line.Discount2,
			ItemPrice: line.ItemPrice,
		})
	}
	return out
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	orderDate, ok := parseOrderDate(req.OrderDate)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order date")
		return
	}

	created, err := h.service.CreateOrder(r.Context(), CreateOrderInput{
		Code:          req.Code,
		CustomerID:    req.CustomerID,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		OrderDate:     orderDate,
		Discount:      req.Discount,
		TotalAmount:   req.TotalAmount,
		Lines:         linesFromRequest(req.Lines),
	})
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.ParseInt(r.URL.Query().Get("customerId"), 10, 64)
	orders, err := h.service.ListOrders(r.Context(), ListFilters{
		CustomerID:    customerID,
		PaymentStatus: r.URL.Query().Get("paymentStatus"),
	})
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders, "total": len(orders)})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	order, lines, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if lines == nil {
		lines = []OrderLine{}
	}
	httpx.JSON(w, http.StatusOK, orderResponse{Order: order, Outstanding: order.Outstanding(), Lines: lines})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	orderDate, ok := parseOrderDate(req.OrderDate)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order date")
		return
	}

	updated, err := h.service.UpdateOrder(r.Context(), id, UpdateOrderInput{
		CustomerID:    req.CustomerID,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		OrderDate:     orderDate,
		Discount:      req.Discount,
		Lines:         linesFromRequest(req.Lines),
	})
	if err != nil {
		h.logger.Error("update order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		h.logger.Error("delete order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handler) UpdatePaidAmount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req paidAmountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	state, err := h.service.UpdatePaidAmount(r.Context(), id, req.PaidAmount)
	if err != nil {
		h.logger.Error("update paid amount", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req paymentStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.UpdatePaymentStatus(r.Context(), id, PaymentStatus(req.PaymentStatus)); err != nil {
		h.logger.Error("update payment status", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "payment_status": req.PaymentStatus})
}

// MountRoutes registers order endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{orderId}/paidAmount", h.UpdatePaidAmount)
	r.Patch("/{orderId}/paymentStatus", h.UpdatePaymentStatus)
}
