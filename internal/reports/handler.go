package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
	"github.com/meridian-dms/meridian-dms/report"
)

// Handler manages report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     *report.Client
}

// NewHandler builds Handler instance. pdf may be nil when no converter is
// configured; the PDF endpoint then answers 503.
func NewHandler(logger *slog.Logger, service *Service, pdf *report.Client) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf}
}

func filterFromQuery(r *http.Request) (Filter, bool) {
	var filter Filter
	if raw := r.URL.Query().Get("supplierId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, false
		}
		filter.SupplierID = id
	}
	if raw := r.URL.Query().Get("fromDate"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, false
		}
		filter.FromDate = from
	}
	if raw := r.URL.Query().Get("toDate"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, false
		}
		filter.ToDate = to.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, true
}

func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterFromQuery(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report filter")
		return
	}
	rows, err := h.service.StockReport(r.Context(), filter)
	if err != nil {
		h.logger.Error("stock report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if rows == nil {
		rows = []StockReportRow{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows, "total": len(rows)})
}

func (h *Handler) StockPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Export Unavailable", "no converter configured")
		return
	}
	filter, ok := filterFromQuery(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report filter")
		return
	}
	rows, err := h.service.StockReport(r.Context(), filter)
	if err != nil {
		h.logger.Error("stock report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	printable := make([]report.StockRow, 0, len(rows))
	for _, row := range rows {
		printable = append(printable, report.StockRow{
			ItemCode:       row.ItemCode,
			ItemName:       row.ItemName,
			UnitType:       row.UnitType,
			SupplierName:   row.SupplierName,
			UnitPrice:      row.UnitPrice,
			WholesalePrice: row.WholesalePrice,
			InStock:        row.InStock,
		})
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), report.RenderStockHTML(time.Now(), printable))
	if err != nil {
		h.logger.Error("render stock pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Export Failed", "conversion service error")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=stock-report.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// MountRoutes registers report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock", h.Stock)
	r.Get("/stock/pdf", h.StockPDF)
}
