package assigner

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
)

// Weights of the composite score. They must sum to exactly 1.0;
// TestWeightsSumToOne guards against unbalanced re-tuning.
const (
	WeightDistance       = 0.40
	WeightSpecialization = 0.25
	WeightRating         = 0.20
	WeightWorkload       = 0.10
	WeightAvailability   = 0.05
)

// AcceptanceThreshold is the minimum composite score required to commit an
// assignment. Below it the engine reports no match rather than forcing a
// poor pairing.
const AcceptanceThreshold = 0.3

// Score is the ephemeral per-candidate result. Breakdown is the
// human-readable rationale recorded on the order timeline.
type Score struct {
	WorkerID   uuid.UUID
	Total      float64
	DistanceKm float64 // +Inf when the worker has never reported a location
	Breakdown  string
}

// DistanceScore maps a great-circle distance to a dispatch tier.
// Boundaries are inclusive: exactly 2 km still scores 1.0.
func DistanceScore(km float64) float64 {
	switch {
	case km <= 2:
		return 1.0
	case km <= 5:
		return 0.8
	case km <= 10:
		return 0.6
	case km <= 20:
		return 0.4
	default:
		return 0.1
	}
}

// SpecializationScore prefers an exact category match, then a related
// category. A full mismatch still scores 0.3 — specialization is a soft
// preference, never a hard exclusion.
func SpecializationScore(w domainworker.Worker, category catalog.Category) float64 {
	if w.HasSpecialization(category) {
		return 1.0
	}
	if w.HasRelatedSpecialization(category) {
		return 0.7
	}
	return 0.3
}

// RatingScore normalises the worker's average rating to [0,1].
// Unrated workers get the neutral default.
func RatingScore(rating *float64) float64 {
	r := domainworker.DefaultRating
	if rating != nil {
		r = *rating
	}
	s := r / 5
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// WorkloadScore penalises workers already carrying active orders.
func WorkloadScore(activeOrders int) float64 {
	switch {
	case activeOrders <= 0:
		return 1.0
	case activeOrders == 1:
		return 0.7
	case activeOrders == 2:
		return 0.4
	default:
		return 0.1
	}
}

// AvailabilityScore is defensive: candidates are pre-filtered to available,
// but a stale read may slip a non-available worker into the set.
func AvailabilityScore(a domainworker.Availability) float64 {
	if a == domainworker.AvailabilityAvailable {
		return 1.0
	}
	return 0.5
}

// ScoreWorker computes a candidate's composite score for a service request.
// A worker with no recorded location gets the worst distance tier rather
// than an error.
func ScoreWorker(w domainworker.Worker, category catalog.Category, customer geo.Point, activeOrders int) Score {
	distKm := math.Inf(1)
	if w.Location != nil {
		distKm = geo.DistanceKm(*w.Location, customer)
	}

	ds := DistanceScore(distKm)
	ss := SpecializationScore(w, category)
	rs := RatingScore(w.Rating)
	ws := WorkloadScore(activeOrders)
	as := AvailabilityScore(w.Availability)

	total := WeightDistance*ds +
		WeightSpecialization*ss +
		WeightRating*rs +
		WeightWorkload*ws +
		WeightAvailability*as

	dist := "unknown"
	if !math.IsInf(distKm, 1) {
		dist = fmt.Sprintf("%.1fkm", distKm)
	}
	breakdown := fmt.Sprintf(
		"distance=%s(%.2f) specialization=%.2f rating=%.2f workload=%.2f availability=%.2f total=%.3f",
		dist, ds, ss, rs, ws, as, total)

	return Score{WorkerID: w.ID, Total: total, DistanceKm: distKm, Breakdown: breakdown}
}
