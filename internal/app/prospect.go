package app

import (
	"math"
	"math/rand"
	"sync"

	"calma-service/internal/domain"
)

const (
	MinProspectRadiusKm     = 3
	MaxProspectRadiusKm     = 30
	DefaultProspectRadiusKm = 10
	DefaultProspectTarget   = "entreprises"
)

// ProspectEstimator produces the teaser count for the prospecting map.
// The estimate is randomized on purpose; only a bucketed teaser leaves the service.
type ProspectEstimator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewProspectEstimator(src rand.Source) *ProspectEstimator {
	return &ProspectEstimator{rnd: rand.New(src)}
}

// Estimate clamps radiusKm to [3,30] (0 means the default 10 km) and returns the teaser.
func (e *ProspectEstimator) Estimate(radiusKm int, target string) domain.ProspectEstimate {
	if radiusKm == 0 {
		radiusKm = DefaultProspectRadiusKm
	}
	if radiusKm < MinProspectRadiusKm {
		radiusKm = MinProspectRadiusKm
	}
	if radiusKm > MaxProspectRadiusKm {
		radiusKm = MaxProspectRadiusKm
	}
	if target == "" {
		target = DefaultProspectTarget
	}
	count := e.count(radiusKm, target)
	return domain.ProspectEstimate{
		RadiusKm:     radiusKm,
		RadiusMeters: radiusKm * 1000,
		Target:       target,
		Teaser:       ProspectTeaser(count),
	}
}

func (e *ProspectEstimator) count(radiusKm int, target string) int {
	base := 12.0
	switch target {
	case "entreprises":
		base = 15
	case "agences":
		base = 8
	}
	e.mu.Lock()
	factor := 80 + e.rnd.Float64()*40
	e.mu.Unlock()
	return int(math.Round(base * float64(radiusKm) / 10 * factor))
}

// ProspectTeaser buckets an exact count into the public teaser text.
func ProspectTeaser(count int) string {
	switch {
	case count < 100:
		return "Quelques dizaines"
	case count < 500:
		return "100+"
	case count < 1000:
		return "500+"
	case count < 3000:
		return "1 000+"
	}
	return "Potentiel majeur"
}
