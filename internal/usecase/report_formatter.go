package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/document"
	"StockPulse/pkg/util"
)

// QuoteAnalyzer is the analyzer whose payload carries the current price.
const QuoteAnalyzer models.AnalyzerID = "quote"

// ReportFormatter turns a consolidation and its snapshot into a Report.
type ReportFormatter struct {
	projector PriceProjector
	horizons  []Horizon
	now       func() time.Time
}

func NewReportFormatter(projector PriceProjector, horizons []Horizon) *ReportFormatter {
	if projector == nil {
		projector = NewRandomWalkProjector(DefaultProjectionPolicy(), nil)
	}
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	return &ReportFormatter{projector: projector, horizons: horizons, now: time.Now}
}

// Format builds the report and its text rendering. It never fails: without a quote
// the projections are simply empty.
func (f *ReportFormatter) Format(subject models.Subject, c models.Consolidation, store *models.ResultStore) *models.Report {
	if store == nil {
		store = models.NewResultStore(nil)
	}
	r := &models.Report{
		Subject:     subject,
		Signal:      c.Signal,
		Confidence:  c.Confidence,
		Votes:       c.Votes,
		Projections: map[string]models.PriceProjection{},
		Results:     store,
		GeneratedAt: f.now().UTC(),
	}
	if price, ok := currentPrice(store); ok {
		r.CurrentPrice = price
		r.Projections = f.projector.Project(price, f.horizons)
	}
	r.Text = f.Render(r)
	return r
}

func currentPrice(store *models.ResultStore) (float64, bool) {
	price, ok := store.Payload(QuoteAnalyzer).Field("price").AsNumber()
	if !ok || price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}

// Render writes the header followed by every store entry in identity order.
func (f *ReportFormatter) Render(r *models.Report) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	ok, failed := r.Health()

	fmt.Fprintf(&b, "Consolidated analysis for %s\n", r.Subject.DisplayName())
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Signal: %s (confidence %s%%)\n", r.Signal.Label(), fmtNumber(r.Confidence))
	fmt.Fprintf(&b, "Analyzers: %d succeeded, %d failed\n", ok, failed)
	if len(r.Votes) > 0 {
		b.WriteString("Votes:\n")
		for _, v := range r.Votes {
			fmt.Fprintf(&b, "%s%s: %s (weight %s)\n", util.Indent(1), v.Analyzer, v.Vote, fmtNumber(v.Weight))
		}
	}
	if r.CurrentPrice > 0 {
		fmt.Fprintf(&b, "Current price: %.2f\n", r.CurrentPrice)
	}
	if len(r.Projections) > 0 {
		b.WriteString("Projections:\n")
		for _, p := range sortedProjections(r.Projections) {
			fmt.Fprintf(&b, "%s%s (%dd): %.2f (confidence %s%%)\n", util.Indent(1), p.Horizon, p.Days, p.Price, fmtNumber(p.Confidence))
		}
	}

	r.Results.Each(func(id models.AnalyzerID, o models.Outcome) {
		fmt.Fprintf(&b, "\n== %s ==\n", id)
		if !o.IsSuccess() {
			fmt.Fprintf(&b, "No data available for %s: %s\n", id, o.Message)
			return
		}
		renderValue(&b, o.Payload, 0)
	})
	return b.String()
}

// renderValue is schema agnostic: maps become indented key blocks in sorted key
// order, arrays become bullets, scalars print inline.
func renderValue(b *strings.Builder, v document.Value, depth int) {
	pad := util.Indent(depth)
	switch v.Kind() {
	case document.KindMap:
		if v.Len() == 0 {
			fmt.Fprintf(b, "%s(empty)\n", pad)
			return
		}
		for _, k := range v.Keys() {
			child := v.Field(k)
			if child.IsScalar() {
				fmt.Fprintf(b, "%s%s: %s\n", pad, k, child.Scalar())
				continue
			}
			fmt.Fprintf(b, "%s%s:\n", pad, k)
			renderValue(b, child, depth+1)
		}
	case document.KindArray:
		if v.Len() == 0 {
			fmt.Fprintf(b, "%s(empty)\n", pad)
			return
		}
		for _, item := range v.Items() {
			if item.IsScalar() {
				fmt.Fprintf(b, "%s- %s\n", pad, item.Scalar())
				continue
			}
			fmt.Fprintf(b, "%s-\n", pad)
			renderValue(b, item, depth+1)
		}
	default:
		fmt.Fprintf(b, "%s%s\n", pad, v.Scalar())
	}
}

func fmtNumber(x float64) string {
	return document.Number(roundTo(x, 1)).Scalar()
}
