package api

import (
	"context"
	"net/http"
	"time"

	"NatalChart/internal/domain/models"
	svcmetrics "NatalChart/internal/service/metrics"
	"NatalChart/internal/services/astro"
	"NatalChart/internal/usecase"
	xhttp "NatalChart/pkg/http"
	xlogger "NatalChart/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

// SkyFrame is one message of the sky stream.
type SkyFrame struct {
	Type  string              `json:"type"` // chart | error
	At    time.Time           `json:"at"`
	Chart *models.ChartResult `json:"chart,omitempty"`
	Error string              `json:"error,omitempty"`
}

// SkyStreamHandler pushes the chart of the current moment over a websocket
// at a fixed interval.
type SkyStreamHandler struct {
	logger      *xlogger.Logger
	charts      usecase.ChartComputer
	upgrader    websocket.Upgrader
	minInterval time.Duration
	maxInterval time.Duration
	now         func() time.Time
}

func NewSkyStreamHandler(logger *xlogger.Logger, charts usecase.ChartComputer, minInterval, maxInterval time.Duration, allowOrigins []string) *SkyStreamHandler {
	return &SkyStreamHandler{
		logger:      logger,
		charts:      charts,
		minInterval: minInterval,
		maxInterval: maxInterval,
		now:         time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowOrigins),
		},
	}
}

func (h *SkyStreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/sky", h.Stream)
}

func (h *SkyStreamHandler) Stream(c echo.Context) error {
	req := &models.SkyStreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	interval := h.clamp(time.Duration(req.Interval) * time.Second)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("sky stream upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	svcmetrics.StreamClients.Inc()
	defer svcmetrics.StreamClients.Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	pongWait := 2*interval + writeWait
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log := h.logger.With(
		xlogger.Float64("lat", req.Latitude),
		xlogger.Float64("lon", req.Longitude),
		xlogger.Duration("interval", interval),
	)
	log.Info("sky stream opened")
	defer log.Info("sky stream closed")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := h.push(ctx, conn, req.Latitude, req.Longitude); err != nil {
			log.Debug("sky stream write failed", xlogger.Error(err))
			return nil
		}
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

func (h *SkyStreamHandler) push(ctx context.Context, conn *websocket.Conn, lat, lon float64) error {
	at := h.now().UTC()
	frame := SkyFrame{Type: "chart", At: at}
	chart, err := h.charts.Compute(ctx, astro.MomentAt(at, lat, lon), models.SourceStream, "")
	if err != nil {
		frame.Type, frame.Error = "error", err.Error()
	} else {
		frame.Chart = chart
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteJSON(frame); err != nil {
		return err
	}
	svcmetrics.StreamFrames.Inc()
	return nil
}

func (h *SkyStreamHandler) clamp(d time.Duration) time.Duration {
	if h.minInterval > 0 && d < h.minInterval {
		return h.minInterval
	}
	if h.maxInterval > 0 && d > h.maxInterval {
		return h.maxInterval
	}
	return d
}

// originChecker allows same-origin requests plus the configured origins.
// "*" allows every origin.
func originChecker(allow []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allow))
	for _, o := range allow {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

var _ xhttp.Handler = (*SkyStreamHandler)(nil)
