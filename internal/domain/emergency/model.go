package emergency

import (
	"time"

	"github.com/google/uuid"
)

// Dispatch statuses.
const (
	StatusRequested  = "requested"
	StatusDispatched = "dispatched"
	StatusOnScene    = "on_scene"
	StatusClosed     = "closed"
	StatusCancelled  = "cancelled"
)

var validTransitions = map[string][]string{
	StatusRequested:  {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusOnScene, StatusCancelled},
	StatusOnScene:    {StatusClosed},
	StatusClosed:     {},
	StatusCancelled:  {},
}

// CanTransition reports whether a dispatch may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Dispatch maps to the dispatch_request table.
type Dispatch struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	AddressText *string   `db:"address_text" json:"address_text,omitempty"`
	Complaint   string    `db:"complaint" json:"complaint"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StatusChange maps to the dispatch_status_history table. One row per
// transition, newest last.
type StatusChange struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DispatchID uuid.UUID `db:"dispatch_id" json:"dispatch_id"`
	Status     string    `db:"status" json:"status"`
	Note       *string   `db:"note" json:"note,omitempty"`
	ChangedBy  uuid.UUID `db:"changed_by" json:"changed_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
