package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"StockPulse/internal/domain/models"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
)

// AnalysisRequestHandler consumes analysis requests from Kafka and runs them. The
// report event is published by the use case itself.
type AnalysisRequestHandler struct {
	topic string
	uc    *AnalysisUseCase
	l     *applogger.Logger
}

func NewAnalysisRequestHandler(topic string, uc *AnalysisUseCase, l *applogger.Logger) *AnalysisRequestHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &AnalysisRequestHandler{topic: topic, uc: uc, l: l}
}

func (h *AnalysisRequestHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, company_name}
func (h *AnalysisRequestHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol      string `json:"symbol"`
		CompanyName string `json:"company_name"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return &pkgkafka.HookError{Code: pkgkafka.CodeDecode, Err: err}
	}

	report, err := h.uc.Run(ctx, AnalyzeParams{Symbol: m.Symbol, CompanyName: m.CompanyName})
	if err != nil {
		if errors.Is(err, models.ErrInvalidSubject) {
			return &pkgkafka.HookError{Code: pkgkafka.CodeValidation, Err: err}
		}
		return err
	}
	h.l.Debug("analysis request served",
		applogger.String("topic", h.topic),
		applogger.String("run_id", report.RunID),
		applogger.String("symbol", report.Subject.Symbol),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*AnalysisRequestHandler)(nil)
