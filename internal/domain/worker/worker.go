package worker

import (
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
)

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"
	AvailabilityOnLeave   Availability = "on_leave"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline, AvailabilityOnLeave:
		return true
	}
	return false
}

// DefaultRating is the neutral rating assumed for workers who have never
// been rated.
const DefaultRating = 3.0

type Worker struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Phone           string             `json:"phone"`
	Specializations []catalog.Category `json:"specializations"`
	Availability    Availability       `json:"availability"`
	Location        *geo.Point         `json:"location,omitempty"` // nil until first report
	LocationAt      *time.Time         `json:"location_at,omitempty"`
	Rating          *float64           `json:"rating,omitempty"` // nil = unrated
	JobsCompleted   int                `json:"jobs_completed"`
	CreatedAt       time.Time          `json:"created_at"`
}

// New returns an offline worker. Workers flip themselves available through
// the availability endpoint once they are ready to take jobs.
func New(name, phone string, specializations []catalog.Category) Worker {
	return Worker{
		ID:              uuid.New(),
		Name:            name,
		Phone:           phone,
		Specializations: specializations,
		Availability:    AvailabilityOffline,
		CreatedAt:       time.Now().UTC(),
	}
}

func (w *Worker) HasSpecialization(c catalog.Category) bool {
	for _, s := range w.Specializations {
		if s == c {
			return true
		}
	}
	return false
}

// HasRelatedSpecialization reports whether any of the worker's
// specializations is related to c.
func (w *Worker) HasRelatedSpecialization(c catalog.Category) bool {
	for _, s := range w.Specializations {
		if c.RelatedTo(s) {
			return true
		}
	}
	return false
}

// EffectiveRating returns the worker's rating, or DefaultRating when unrated.
func (w *Worker) EffectiveRating() float64 {
	if w.Rating == nil {
		return DefaultRating
	}
	return *w.Rating
}

type ListFilters struct {
	Availability *Availability
	Category     *catalog.Category
}
