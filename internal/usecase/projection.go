package usecase

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
)

// Horizon is one projection distance.
type Horizon struct {
	Label string
	Days  int
}

var DefaultHorizons = []Horizon{
	{Label: "1W", Days: 7},
	{Label: "1M", Days: 30},
	{Label: "3M", Days: 90},
	{Label: "6M", Days: 180},
	{Label: "1Y", Days: 365},
}

// PriceProjector estimates future prices from the current one.
type PriceProjector interface {
	Project(current float64, horizons []Horizon) map[string]models.PriceProjection
}

// ProjectionPolicy holds the random walk constants.
type ProjectionPolicy struct {
	SpreadPerMonth          float64
	MaxSpread               float64
	AnnualDrift             float64
	StartConfidence         float64
	ConfidenceDecayPerMonth float64
	MinConfidence           float64
}

func DefaultProjectionPolicy() ProjectionPolicy {
	return ProjectionPolicy{
		SpreadPerMonth:          0.02,
		MaxSpread:               0.25,
		AnnualDrift:             0.08,
		StartConfidence:         90,
		ConfidenceDecayPerMonth: 5,
		MinConfidence:           20,
	}
}

// RandomWalkProjector is a placeholder estimator: a uniform shock whose width grows
// with the horizon, times a compounded annual drift. It is not a forecast.
type RandomWalkProjector struct {
	policy  ProjectionPolicy
	uniform func() float64
}

// NewRandomWalkProjector uses uniform as the [0,1) source; nil means a seeded
// math/rand generator.
func NewRandomWalkProjector(policy ProjectionPolicy, uniform func() float64) *RandomWalkProjector {
	if uniform == nil {
		uniform = lockedUniform(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return &RandomWalkProjector{policy: policy, uniform: uniform}
}

func (p *RandomWalkProjector) Project(current float64, horizons []Horizon) map[string]models.PriceProjection {
	out := make(map[string]models.PriceProjection, len(horizons))
	if current <= 0 || math.IsNaN(current) || math.IsInf(current, 0) {
		return out
	}
	for _, h := range horizons {
		if h.Days <= 0 {
			continue
		}
		months := float64(h.Days) / 30
		spread := math.Min(p.policy.MaxSpread, p.policy.SpreadPerMonth*months)
		randomFactor := 1 + (2*p.uniform()-1)*spread
		trendFactor := math.Pow(1+p.policy.AnnualDrift, float64(h.Days)/365)
		conf := math.Max(p.policy.MinConfidence, p.policy.StartConfidence-p.policy.ConfidenceDecayPerMonth*months)
		out[h.Label] = models.PriceProjection{
			Horizon:    h.Label,
			Days:       h.Days,
			Price:      roundTo(current*randomFactor*trendFactor, 2),
			Confidence: roundTo(conf, 1),
		}
	}
	return out
}

func lockedUniform(r *rand.Rand) func() float64 {
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return r.Float64()
	}
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// sortedProjections orders projections by horizon length.
func sortedProjections(m map[string]models.PriceProjection) []models.PriceProjection {
	out := make([]models.PriceProjection, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Days == out[j].Days {
			return out[i].Horizon < out[j].Horizon
		}
		return out[i].Days < out[j].Days
	})
	return out
}
