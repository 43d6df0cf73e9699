package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// AnalysisRunner is the use case surface the handlers need.
type AnalysisRunner interface {
	Run(ctx context.Context, p usecase.AnalyzeParams) (*models.Report, error)
	Stream(ctx context.Context, p usecase.AnalyzeParams, observe usecase.TaskObserver) (*models.Report, error)
}

const wsWriteWait = 10 * time.Second

// AnalysisEchoHandler serves consolidated analysis over JSON, plain text and a
// websocket progress stream.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	uc       AnalysisRunner
	mw       []echo.MiddlewareFunc
	upgrader websocket.Upgrader
}

// NewAnalysisEchoHandler builds the handler. mw is applied to every analysis route,
// which is where the rate limiter goes.
func NewAnalysisEchoHandler(logger *xlogger.Logger, uc AnalysisRunner, mw ...echo.MiddlewareFunc) *AnalysisEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AnalysisEchoHandler{
		logger: logger,
		uc:     uc,
		mw:     mw,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/analysis", h.mw...)
	g.GET("", h.Analyze)
	g.GET("/report", h.Report)
	g.GET("/stream", h.Stream)
}

// Analyze runs every analyzer and returns the report as JSON.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.uc.Run(c.Request().Context(), usecase.AnalyzeParams{Symbol: req.Symbol, CompanyName: req.CompanyName})
	if err != nil {
		return h.runError(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, report)
}

// Report returns the rendered text report, or {run_id, text} with format=json.
func (h *AnalysisEchoHandler) Report(c echo.Context) error {
	req := &models.ReportTextRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.uc.Run(c.Request().Context(), usecase.AnalyzeParams{Symbol: req.Symbol, CompanyName: req.CompanyName})
	if err != nil {
		return h.runError(c, err)
	}
	if req.Format == "json" {
		return xhttp.SuccessResponse(c, map[string]string{"run_id": report.RunID, "text": report.Text})
	}
	return xhttp.TextResponse(c, report.Text)
}

type streamEvent struct {
	Type     string            `json:"type"`
	Analyzer models.AnalyzerID `json:"analyzer,omitempty"`
	Outcome  *models.Outcome   `json:"outcome,omitempty"`
	Report   *models.Report    `json:"report,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Stream upgrades to a websocket, sends one "outcome" event per settled analyzer
// and finishes with a "report" event.
func (h *AnalysisEchoHandler) Stream(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if _, err := models.NewSubject(req.Symbol, req.CompanyName); err != nil {
		return h.runError(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go h.watchClose(conn, cancel)

	// the observer runs on the executor's fan-in goroutine only, so writes never overlap
	observe := func(id models.AnalyzerID, o models.Outcome) {
		if werr := h.send(conn, streamEvent{Type: "outcome", Analyzer: id, Outcome: &o}); werr != nil {
			cancel()
		}
	}
	report, err := h.uc.Stream(ctx, usecase.AnalyzeParams{Symbol: req.Symbol, CompanyName: req.CompanyName}, observe)
	if err != nil {
		_ = h.send(conn, streamEvent{Type: "error", Error: err.Error()})
		return nil
	}
	if err := h.send(conn, streamEvent{Type: "report", Report: report}); err != nil {
		h.logger.Warn("websocket report write failed", xlogger.String("run_id", report.RunID), xlogger.Error(err))
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(wsWriteWait))
	return nil
}

func (h *AnalysisEchoHandler) send(conn *websocket.Conn, ev streamEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(ev)
}

// watchClose drains client frames so control messages are processed, and cancels
// the run when the peer goes away.
func (h *AnalysisEchoHandler) watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			cancel()
			return
		}
	}
}

func (h *AnalysisEchoHandler) runError(c echo.Context, err error) error {
	if errors.Is(err, models.ErrInvalidSubject) {
		return xhttp.AppErrorResponse(c, xhttp.InvalidSubjectError("symbol", err))
	}
	h.logger.Error("analysis usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

var _ xhttp.Handler = (*AnalysisEchoHandler)(nil)
