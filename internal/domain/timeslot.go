package domain

import "time"

// TimeslotStatus represents the status of a timeslot
type TimeslotStatus string

const (
	TimeslotOpen    TimeslotStatus = "open"
	TimeslotClosed  TimeslotStatus = "closed"
	TimeslotBlocked TimeslotStatus = "blocked"
)

// Timeslot represents a bookable half-open interval [StartAt, EndAt)
// on a specific resource with a tracked remaining-capacity counter.
//
// Invariant (owned by the reservation engine, not by this struct):
// AvailableCapacity == MaxCapacity - sum(GuestCount of active bookings).
// Timeslots are produced by the schedule-template generator; the engine
// only mutates AvailableCapacity, never creates slots.
type Timeslot struct {
	ID                int64
	ResourceID        int64
	StartAt           time.Time
	EndAt             time.Time
	Status            TimeslotStatus
	AvailableCapacity int
	MaxCapacity       int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen returns true if the timeslot accepts new bookings
func (t *Timeslot) IsOpen() bool {
	return t.Status == TimeslotOpen
}

// HasCapacity returns true if the timeslot can fit the given guest count
func (t *Timeslot) HasCapacity(guests int) bool {
	return t.AvailableCapacity >= guests
}

// TimeslotsFilter фильтр для публичного списка слотов ресурса
type TimeslotsFilter struct {
	ResourceID int64
	From       *time.Time // Нижняя граница start_at (опционально)
	To         *time.Time // Верхняя граница start_at (опционально)
	OnlyOpen   bool       // Только открытые слоты с available_capacity > 0
}
