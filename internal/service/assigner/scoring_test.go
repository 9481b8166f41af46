package assigner_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	"github.com/nandaputra/homecrew/internal/service/assigner"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := assigner.WeightDistance +
		assigner.WeightSpecialization +
		assigner.WeightRating +
		assigner.WeightWorkload +
		assigner.WeightAvailability
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDistanceScore(t *testing.T) {
	tests := []struct {
		name string
		km   float64
		want float64
	}{
		{name: "zero", km: 0, want: 1.0},
		{name: "inside first tier", km: 1.5, want: 1.0},
		{name: "exactly 2km stays in first tier", km: 2.0, want: 1.0},
		{name: "just past 2km", km: 2.001, want: 0.8},
		{name: "exactly 5km", km: 5.0, want: 0.8},
		{name: "just past 5km", km: 5.001, want: 0.6},
		{name: "exactly 10km", km: 10.0, want: 0.6},
		{name: "just past 10km", km: 10.001, want: 0.4},
		{name: "exactly 20km", km: 20.0, want: 0.4},
		{name: "just past 20km", km: 20.001, want: 0.1},
		{name: "far away", km: 350, want: 0.1},
		{name: "unknown location", km: math.Inf(1), want: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assigner.DistanceScore(tt.km))
		})
	}
}

func TestSpecializationScore(t *testing.T) {
	washer := domainworker.New("w", "", []catalog.Category{catalog.CategoryCarWash})
	generalist := domainworker.New("g", "", nil)

	// Exact match.
	assert.Equal(t, 1.0, assigner.SpecializationScore(washer, catalog.CategoryCarWash))
	// Related category.
	assert.Equal(t, 0.7, assigner.SpecializationScore(washer, catalog.CategoryDetailing))
	// Full mismatch is still scored, never excluded.
	assert.Equal(t, 0.3, assigner.SpecializationScore(washer, catalog.CategoryLawnCare))
	assert.Equal(t, 0.3, assigner.SpecializationScore(generalist, catalog.CategoryCarWash))
}

func TestRatingScore(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		rating *float64
		want   float64
	}{
		{name: "unrated uses neutral default", rating: nil, want: 0.6},
		{name: "five stars", rating: ptr(5.0), want: 1.0},
		{name: "average", rating: ptr(2.5), want: 0.5},
		{name: "clamped above", rating: ptr(7.0), want: 1.0},
		{name: "clamped below", rating: ptr(-1.0), want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, assigner.RatingScore(tt.rating), 1e-9)
		})
	}
}

func TestWorkloadScore(t *testing.T) {
	assert.Equal(t, 1.0, assigner.WorkloadScore(0))
	assert.Equal(t, 0.7, assigner.WorkloadScore(1))
	assert.Equal(t, 0.4, assigner.WorkloadScore(2))
	assert.Equal(t, 0.1, assigner.WorkloadScore(3))
	assert.Equal(t, 0.1, assigner.WorkloadScore(8))
	// Defensive: a negative count behaves like zero.
	assert.Equal(t, 1.0, assigner.WorkloadScore(-1))
}

func TestAvailabilityScore(t *testing.T) {
	assert.Equal(t, 1.0, assigner.AvailabilityScore(domainworker.AvailabilityAvailable))
	assert.Equal(t, 0.5, assigner.AvailabilityScore(domainworker.AvailabilityBusy))
	assert.Equal(t, 0.5, assigner.AvailabilityScore(domainworker.AvailabilityOffline))
	assert.Equal(t, 0.5, assigner.AvailabilityScore(domainworker.AvailabilityOnLeave))
}

func TestScoreWorker_PerfectCandidate(t *testing.T) {
	customer := geo.Point{Lat: -6.2088, Lng: 106.8456}
	rating := 5.0

	w := domainworker.New("ideal", "", []catalog.Category{catalog.CategoryCarWash})
	w.Availability = domainworker.AvailabilityAvailable
	w.Location = &geo.Point{Lat: -6.2088, Lng: 106.8456}
	w.Rating = &rating

	s := assigner.ScoreWorker(w, catalog.CategoryCarWash, customer, 0)
	assert.InDelta(t, 1.0, s.Total, 1e-9)
	assert.Zero(t, s.DistanceKm)
	assert.Contains(t, s.Breakdown, "total=1.000")
}

func TestScoreWorker_BelowThreshold(t *testing.T) {
	// Far away, wrong cluster, unrated, saturated workload: every component
	// bottoms out except availability, landing just under the threshold.
	customer := geo.Point{Lat: -6.2088, Lng: 106.8456}

	w := domainworker.New("poor fit", "", []catalog.Category{catalog.CategoryLawnCare})
	w.Availability = domainworker.AvailabilityAvailable
	// Roughly 25km east of the customer.
	w.Location = &geo.Point{Lat: -6.2088, Lng: 107.0716}

	s := assigner.ScoreWorker(w, catalog.CategoryCarWash, customer, 3)
	assert.InDelta(t, 0.295, s.Total, 1e-9)
	assert.Less(t, s.Total, assigner.AcceptanceThreshold)
}

func TestScoreWorker_NoLocation(t *testing.T) {
	// A worker who never reported a location gets the worst distance tier,
	// not an error.
	w := domainworker.New("no gps", "", []catalog.Category{catalog.CategoryCarWash})
	w.Availability = domainworker.AvailabilityAvailable

	s := assigner.ScoreWorker(w, catalog.CategoryCarWash, geo.Point{Lat: -6.2, Lng: 106.8}, 0)
	require.True(t, math.IsInf(s.DistanceKm, 1))
	// 0.4*0.1 + 0.25*1.0 + 0.2*0.6 + 0.1*1.0 + 0.05*1.0
	assert.InDelta(t, 0.56, s.Total, 1e-9)
	assert.Contains(t, s.Breakdown, "distance=unknown")
}
