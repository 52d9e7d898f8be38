package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Slot statuses.
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

// Appointment statuses.
const (
	ApptBooked    = "booked"
	ApptCancelled = "cancelled"
	ApptCompleted = "completed"
)

// Appointment types.
const (
	TypeInPerson = "in_person"
	TypeVideo    = "video"
)

// Slot maps to the practitioner_slot table.
type Slot struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitioner_id"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Appointment maps to the appointment table. Video appointments carry the
// consult session they run over.
type Appointment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	SlotID         uuid.UUID  `db:"slot_id" json:"slot_id"`
	Type           string     `db:"type" json:"type"`
	SessionID      *uuid.UUID `db:"session_id" json:"session_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	Reason         *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
