package order

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/geo"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusAssigned   Status = "assigned"
	StatusAccepted   Status = "accepted"
	StatusEnRoute    Status = "en_route"
	StatusArrived    Status = "arrived"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusEnRoute, StatusCancelled},
	StatusEnRoute:    {StatusArrived},
	StatusArrived:    {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Active reports whether an order in this status counts toward a worker's
// current workload.
func (s Status) Active() bool {
	switch s {
	case StatusAccepted, StatusEnRoute, StatusArrived, StatusInProgress:
		return true
	}
	return false
}

// ActiveStatuses is the workload set in SQL-friendly form.
var ActiveStatuses = []Status{StatusAccepted, StatusEnRoute, StatusArrived, StatusInProgress}

// Urgency is accepted on every order but does not currently alter scoring.
// Kept as a tiering hook.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// TimelineEntry is an audit record appended on every status change. The
// assignment entry carries the score breakdown as its note.
type TimelineEntry struct {
	At     time.Time `json:"at"`
	Status Status    `json:"status"`
	Note   string    `json:"note,omitempty"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	TrackingCode  string          `json:"tracking_code"`
	ServiceID     uuid.UUID       `json:"service_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Location      geo.Point       `json:"location"`
	Address       string          `json:"address"`
	Status        Status          `json:"status"`
	Urgency       Urgency         `json:"urgency"`
	ScheduledAt   *time.Time      `json:"scheduled_at,omitempty"` // accepted, not yet scored
	WorkerID      *uuid.UUID      `json:"worker_id,omitempty"`
	AssignedAt    *time.Time      `json:"assigned_at,omitempty"`
	Timeline      []TimelineEntry `json:"timeline"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func New(serviceID uuid.UUID, customerName, customerPhone string, location geo.Point, address string, urgency Urgency, scheduledAt *time.Time) Order {
	now := time.Now().UTC()
	id := uuid.New()
	return Order{
		ID:            id,
		TrackingCode:  "HC-" + strings.ToUpper(id.String()[:8]),
		ServiceID:     serviceID,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Location:      location,
		Address:       address,
		Status:        StatusPending,
		Urgency:       urgency,
		ScheduledAt:   scheduledAt,
		Timeline:      []TimelineEntry{{At: now, Status: StatusPending}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type ListFilters struct {
	Status      *Status
	WorkerID    *uuid.UUID
	Unassigned  bool // WHERE worker_id IS NULL
	OldestFirst bool // ORDER BY created_at ASC (default is DESC)
}
