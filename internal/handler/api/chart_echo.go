package api

import (
	"context"
	"time"

	"NatalChart/internal/domain/models"
	svcmetrics "NatalChart/internal/service/metrics"
	"NatalChart/internal/services/astro"
	"NatalChart/internal/usecase"
	xhttp "NatalChart/pkg/http"
	"NatalChart/pkg/http/middleware"
	xlogger "NatalChart/pkg/logger"
	"NatalChart/pkg/util"

	"github.com/labstack/echo/v4"
)

// ChartService is what the HTTP layer needs from the chart use case.
type ChartService interface {
	Compute(ctx context.Context, m models.BirthMoment, source models.ChartSource, requestID string) (*models.ChartResult, error)
	ComputeBatch(ctx context.Context, reqs []models.ChartRequest) ([]models.BatchItem, error)
	ModelName() string
	AspectTable() []models.AspectDefinition
	BatchLimit() int
}

// ChartEchoHandler serves the chart REST API.
type ChartEchoHandler struct {
	logger  *xlogger.Logger
	charts  ChartService
	limiter middleware.Allower
	now     func() time.Time
}

// NewChartEchoHandler creates the handler. A nil limiter disables rate
// limiting.
func NewChartEchoHandler(logger *xlogger.Logger, charts ChartService, limiter middleware.Allower) *ChartEchoHandler {
	return &ChartEchoHandler{logger: logger, charts: charts, limiter: limiter, now: time.Now}
}

func (h *ChartEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	if h.limiter != nil {
		g.Use(middleware.RateLimit(h.limiter))
	}
	g.POST("/chart", h.Chart)
	g.GET("/chart", h.Chart)
	g.POST("/charts/batch", h.Batch)
	g.GET("/sky", h.Sky)
	g.GET("/catalog", h.Catalog)
}

// Chart computes one chart from a JSON body (POST) or query string (GET).
func (h *ChartEchoHandler) Chart(c echo.Context) error {
	start := time.Now()
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ObserveEndpoint("chart", start, true)
		return xhttp.BadRequestResponse(c, verr)
	}

	m, err := usecase.MomentFromRequest(req)
	if err != nil {
		svcmetrics.ObserveEndpoint("chart", start, true)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = middleware.RequestID(c)
	}
	chart, err := h.charts.Compute(c.Request().Context(), m, models.SourceHTTP, requestID)
	svcmetrics.ObserveEndpoint("chart", start, err != nil)
	if err != nil {
		h.logger.Error("chart usecase error", xlogger.Error(err), xlogger.String("request_id", requestID))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, chart)
}

// Sky returns the chart of an instant, by default the current minute.
func (h *ChartEchoHandler) Sky(c echo.Context) error {
	start := time.Now()
	req := &models.SkyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ObserveEndpoint("sky", start, true)
		return xhttp.BadRequestResponse(c, verr)
	}
	at, ok := util.ParseInstantDefault(req.At, h.now())
	if !ok {
		svcmetrics.ObserveEndpoint("sky", start, true)
		return xhttp.AppErrorResponse(c,
			xhttp.InvalidInputError("at", "expected RFC3339 or unix seconds").WithParam("value", req.At))
	}

	chart, err := h.charts.Compute(c.Request().Context(), astro.MomentAt(at, req.Latitude, req.Longitude), models.SourceHTTP, middleware.RequestID(c))
	svcmetrics.ObserveEndpoint("sky", start, err != nil)
	if err != nil {
		h.logger.Error("sky usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, chart)
}

func (h *ChartEchoHandler) Batch(c echo.Context) error {
	start := time.Now()
	req := &models.BatchChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ObserveEndpoint("batch", start, true)
		return xhttp.BadRequestResponse(c, verr)
	}
	if limit := h.charts.BatchLimit(); len(req.Charts) > limit {
		svcmetrics.ObserveEndpoint("batch", start, true)
		return xhttp.AppErrorResponse(c,
			xhttp.InvalidInputError("charts", "too many charts in batch").WithParam("max", limit))
	}

	items, err := h.charts.ComputeBatch(c.Request().Context(), req.Charts)
	svcmetrics.ObserveEndpoint("batch", start, err != nil)
	if err != nil {
		h.logger.Error("batch usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	return xhttp.ListResponse(c, items, int64(len(items)))
}

func (h *ChartEchoHandler) Catalog(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, models.NewCatalog(h.charts.ModelName(), h.charts.AspectTable()))
}

func (h *ChartEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok", "model": h.charts.ModelName()})
}

// toAppError maps engine input errors to field-scoped 400s.
func toAppError(err error) error {
	if ie, ok := astro.AsInputError(err); ok {
		return xhttp.InvalidInputError(ie.Field, ie.Reason).WithParam("value", ie.Value).WithError(err)
	}
	return xhttp.InternalError("chart computation failed").WithError(err)
}

var _ xhttp.Handler = (*ChartEchoHandler)(nil)
