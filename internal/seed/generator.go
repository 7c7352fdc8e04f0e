package seed

import (
	"math/rand/v2"
	"time"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

// Generate builds the series described by cfg. The same non-zero seed always
// yields the same records.
func Generate(cfg Config, seed uint64) []model.Measurement {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	total := cfg.Total()
	start := cfg.Start.UTC()

	out := make([]model.Measurement, total)
	for i := 0; i < total; i++ {
		values := make(map[model.Field]float64, len(Ranges))
		for _, f := range model.Fields() {
			values[f] = between(rng, Ranges[f])
		}
		out[i] = model.Measurement{
			Timestamp: start.Add(time.Duration(i) * cfg.Step),
			Values:    values,
		}
	}
	return out
}

// between draws from [r.Min, r.Max) and keeps two decimals. Rounding can
// reach r.Max itself, so the result is clamped below it.
func between(rng *rand.Rand, r Range) float64 {
	v := model.Round(r.Min+rng.Float64()*(r.Max-r.Min), valuePlaces)
	if v >= r.Max {
		v = model.Round(r.Max-0.01, valuePlaces)
	}
	return v
}
