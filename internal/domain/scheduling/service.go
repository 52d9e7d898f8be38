package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	slots SlotRepository
	appts AppointmentRepository
}

func NewService(slots SlotRepository, appts AppointmentRepository) *Service {
	return &Service{slots: slots, appts: appts}
}

// -- Slots --

// CreateSlot rejects slots that overlap an existing slot for the same
// practitioner.
func (s *Service) CreateSlot(ctx context.Context, slot *Slot) error {
	if slot.PractitionerID == uuid.Nil {
		return fmt.Errorf("practitioner_id is required")
	}
	if slot.StartTime.IsZero() || slot.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !slot.EndTime.After(slot.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}

	overlaps, err := s.slots.Overlapping(ctx, slot.PractitionerID, slot.StartTime, slot.EndTime)
	if err != nil {
		return err
	}
	if len(overlaps) > 0 {
		return fmt.Errorf("slot overlaps an existing slot")
	}

	slot.Status = SlotAvailable
	return s.slots.Create(ctx, slot)
}

func (s *Service) ListSlots(ctx context.Context, practitionerID uuid.UUID, from, to time.Time) ([]*Slot, error) {
	if to.IsZero() {
		to = from.AddDate(0, 0, 7)
	}
	return s.slots.ListByPractitioner(ctx, practitionerID, from, to)
}

func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("slot not found")
	}
	if slot.Status == SlotBooked {
		return fmt.Errorf("cannot delete a booked slot")
	}
	return s.slots.Delete(ctx, id)
}

// -- Appointments --

// Book claims an available slot and creates the appointment. Video
// appointments receive a consult session reference from the caller.
func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.SlotID == uuid.Nil {
		return fmt.Errorf("slot_id is required")
	}
	if a.Type == "" {
		a.Type = TypeInPerson
	}
	if a.Type != TypeInPerson && a.Type != TypeVideo {
		return fmt.Errorf("invalid appointment type %q", a.Type)
	}

	slot, err := s.slots.GetByID(ctx, a.SlotID)
	if err != nil {
		return fmt.Errorf("slot not found")
	}
	if slot.Status != SlotAvailable {
		return fmt.Errorf("slot is already booked")
	}

	if err := s.slots.UpdateStatus(ctx, slot.ID, SlotBooked); err != nil {
		return err
	}

	a.PractitionerID = slot.PractitionerID
	a.Status = ApptBooked
	if err := s.appts.Create(ctx, a); err != nil {
		// Free the slot again so a failed insert does not strand it.
		_ = s.slots.UpdateStatus(ctx, slot.ID, SlotAvailable)
		return err
	}
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPractitioner(ctx, practitionerID, limit, offset)
}

// Cancel releases the slot and marks the appointment cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("appointment not found")
	}
	if a.Status != ApptBooked {
		return nil, fmt.Errorf("only booked appointments can be cancelled")
	}

	a.Status = ApptCancelled
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	if err := s.slots.UpdateStatus(ctx, a.SlotID, SlotAvailable); err != nil {
		return nil, err
	}
	return a, nil
}

// Reschedule moves a booked appointment to a new available slot with the
// same practitioner, freeing the old slot.
func (s *Service) Reschedule(ctx context.Context, id, newSlotID uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("appointment not found")
	}
	if a.Status != ApptBooked {
		return nil, fmt.Errorf("only booked appointments can be rescheduled")
	}

	newSlot, err := s.slots.GetByID(ctx, newSlotID)
	if err != nil {
		return nil, fmt.Errorf("slot not found")
	}
	if newSlot.Status != SlotAvailable {
		return nil, fmt.Errorf("slot is already booked")
	}

	if err := s.slots.UpdateStatus(ctx, newSlot.ID, SlotBooked); err != nil {
		return nil, err
	}
	if err := s.slots.UpdateStatus(ctx, a.SlotID, SlotAvailable); err != nil {
		return nil, err
	}

	a.SlotID = newSlot.ID
	a.PractitionerID = newSlot.PractitionerID
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Complete marks a booked appointment as completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("appointment not found")
	}
	if a.Status != ApptBooked {
		return nil, fmt.Errorf("only booked appointments can be completed")
	}
	a.Status = ApptCompleted
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
