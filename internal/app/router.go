package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
	"github.com/meridian-dms/meridian-dms/internal/masterdata/customers"
	"github.com/meridian-dms/meridian-dms/internal/masterdata/items"
	"github.com/meridian-dms/meridian-dms/internal/masterdata/suppliers"
	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
	"github.com/meridian-dms/meridian-dms/internal/procurement"
	"github.com/meridian-dms/meridian-dms/internal/reports"
	"github.com/meridian-dms/meridian-dms/internal/returns"
	"github.com/meridian-dms/meridian-dms/internal/sales"
	"github.com/meridian-dms/meridian-dms/internal/shared"
	"github.com/meridian-dms/meridian-dms/jobs"
	"github.com/meridian-dms/meridian-dms/report"
)

// RouterConfig collects everything the HTTP surface depends on.
type RouterConfig struct {
	Logger    *slog.Logger
	Config    *Config
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Inspector *asynq.Inspector
	PDF       *report.Client
}

// NewRouter assembles the full API router.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: cfg.Logger, Config: cfg.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	supplierHandler := suppliers.NewHandler(cfg.Logger, suppliers.NewService(suppliers.NewRepository(cfg.Pool)))
	itemHandler := items.NewHandler(cfg.Logger, items.NewService(items.NewRepository(cfg.Pool)))
	customerHandler := customers.NewHandler(cfg.Logger, customers.NewService(customers.NewRepository(cfg.Pool)))

	distributionService := distribution.NewService(distribution.NewRepository(cfg.Pool), cfg.Logger)
	distributionHandler := distribution.NewHandler(cfg.Logger, distributionService)

	idempotency := shared.NewIdempotencyStore(cfg.Pool)
	procurementService := procurement.NewService(procurement.NewRepository(cfg.Pool), idempotency, cfg.Logger)
	procurementHandler := procurement.NewHandler(cfg.Logger, procurementService)

	salesHandler := sales.NewHandler(cfg.Logger, sales.NewService(sales.NewRepository(cfg.Pool), cfg.Logger))
	returnsHandler := returns.NewHandler(cfg.Logger, returns.NewService(returns.NewRepository(cfg.Pool), cfg.Logger))

	reportsService := reports.NewService(reports.NewRepository(cfg.Pool), cfg.Redis, cfg.Config.ReportCacheTTL, cfg.Logger)
	reportsHandler := reports.NewHandler(cfg.Logger, reportsService, cfg.PDF)

	jobsHandler := jobs.NewHandler(cfg.Inspector, cfg.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/suppliers", supplierHandler.MountRoutes)
		r.Route("/items", itemHandler.MountRoutes)
		r.Route("/customers", customerHandler.MountRoutes)
		r.Route("/purchase-orders", procurementHandler.MountPORoutes)
		r.Route("/grn", procurementHandler.MountGRNRoutes)
		r.Route("/distribution", distributionHandler.MountRoutes)
		r.Route("/stock-updates", distributionHandler.MountStockUpdateRoutes)
		r.Route("/orders", salesHandler.MountRoutes)
		r.Route("/returns", returnsHandler.MountRoutes)
		r.Route("/reports", reportsHandler.MountRoutes)
		r.Route("/jobs", jobsHandler.MountRoutes)
	})

	return r
}
