package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SlotRepository interface {
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, from, to time.Time) ([]*Slot, error)
	// Overlapping returns slots for the practitioner that intersect the
	// given window, regardless of status.
	Overlapping(ctx context.Context, practitionerID uuid.UUID, start, end time.Time) ([]*Slot, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
