package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Category is a service category a worker can specialize in.
type Category string

const (
	CategoryCarWash        Category = "car_wash"
	CategoryMotorcycleWash Category = "motorcycle_wash"
	CategoryDetailing      Category = "detailing"
	CategoryLawnCare       Category = "lawn_care"
	CategoryGardening      Category = "gardening"
	CategoryLandscaping    Category = "landscaping"
)

// relatedCategories maps each category to the categories a worker can cover
// without an exact specialization match. Wash categories are mutually related
// with detailing; lawn care is related to gardening and landscaping.
var relatedCategories = map[Category][]Category{
	CategoryCarWash:        {CategoryMotorcycleWash, CategoryDetailing},
	CategoryMotorcycleWash: {CategoryCarWash, CategoryDetailing},
	CategoryDetailing:      {CategoryCarWash, CategoryMotorcycleWash},
	CategoryLawnCare:       {CategoryGardening, CategoryLandscaping},
	CategoryGardening:      {CategoryLawnCare, CategoryLandscaping},
	CategoryLandscaping:    {CategoryLawnCare, CategoryGardening},
}

func (c Category) Valid() bool {
	_, ok := relatedCategories[c]
	return ok
}

// RelatedTo reports whether other can substitute for c at the related tier.
func (c Category) RelatedTo(other Category) bool {
	for _, r := range relatedCategories[c] {
		if r == other {
			return true
		}
	}
	return false
}

// Related returns the categories related to c, including c itself.
// Used by storage adapters to pre-filter candidate workers.
func (c Category) Related() []Category {
	return append([]Category{c}, relatedCategories[c]...)
}

// Service is an offering customers book (e.g. a full car wash).
// Immutable for the purposes of assignment.
type Service struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Category        Category  `json:"category"`
	BasePrice       int64     `json:"base_price"` // IDR
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

func New(name string, category Category, basePrice int64, durationMinutes int) Service {
	return Service{
		ID:              uuid.New(),
		Name:            name,
		Category:        category,
		BasePrice:       basePrice,
		DurationMinutes: durationMinutes,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}
}
