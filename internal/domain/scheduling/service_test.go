package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockSlotRepo struct {
	slots map[uuid.UUID]*Slot
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[uuid.UUID]*Slot)}
}

func (m *mockSlotRepo) Create(_ context.Context, s *Slot) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	m.slots[s.ID] = &cp
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id uuid.UUID) (*Slot, error) {
	s, ok := m.slots[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockSlotRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	s, ok := m.slots[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	s.Status = status
	return nil
}

func (m *mockSlotRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.slots, id)
	return nil
}

func (m *mockSlotRepo) ListByPractitioner(_ context.Context, practitionerID uuid.UUID, from, to time.Time) ([]*Slot, error) {
	var items []*Slot
	for _, s := range m.slots {
		if s.PractitionerID == practitionerID && !s.StartTime.Before(from) && s.StartTime.Before(to) {
			cp := *s
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (m *mockSlotRepo) Overlapping(_ context.Context, practitionerID uuid.UUID, start, end time.Time) ([]*Slot, error) {
	var items []*Slot
	for _, s := range m.slots {
		if s.PractitionerID == practitionerID && s.StartTime.Before(end) && s.EndTime.After(start) {
			cp := *s
			items = append(items, &cp)
		}
	}
	return items, nil
}

type mockApptRepo struct {
	appts      map[uuid.UUID]*Appointment
	failCreate bool
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	if m.failCreate {
		return fmt.Errorf("insert failed")
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockApptRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockApptRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (m *mockApptRepo) ListByPractitioner(_ context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appts {
		if a.PractitionerID == practitionerID {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func newTestService() (*Service, *mockSlotRepo, *mockApptRepo) {
	slots := newMockSlotRepo()
	appts := newMockApptRepo()
	return NewService(slots, appts), slots, appts
}

func seedSlot(t *testing.T, svc *Service, practitionerID uuid.UUID, start time.Time) *Slot {
	t.Helper()
	s := &Slot{
		PractitionerID: practitionerID,
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
	}
	if err := svc.CreateSlot(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestCreateSlot(t *testing.T) {
	svc, _, _ := newTestService()
	prac := uuid.New()
	start := time.Now().Add(time.Hour)

	s := seedSlot(t, svc, prac, start)
	if s.Status != SlotAvailable {
		t.Errorf("expected status %q, got %q", SlotAvailable, s.Status)
	}
	if s.ID == uuid.Nil {
		t.Error("expected slot id to be set")
	}
}

func TestCreateSlotValidation(t *testing.T) {
	svc, _, _ := newTestService()
	start := time.Now().Add(time.Hour)

	cases := []struct {
		name string
		slot *Slot
	}{
		{"missing practitioner", &Slot{StartTime: start, EndTime: start.Add(time.Hour)}},
		{"missing times", &Slot{PractitionerID: uuid.New()}},
		{"end before start", &Slot{PractitionerID: uuid.New(), StartTime: start, EndTime: start.Add(-time.Hour)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.CreateSlot(context.Background(), tc.slot); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCreateSlotRejectsOverlap(t *testing.T) {
	svc, _, _ := newTestService()
	prac := uuid.New()
	start := time.Now().Add(time.Hour)
	seedSlot(t, svc, prac, start)

	overlapping := &Slot{
		PractitionerID: prac,
		StartTime:      start.Add(15 * time.Minute),
		EndTime:        start.Add(45 * time.Minute),
	}
	if err := svc.CreateSlot(context.Background(), overlapping); err == nil {
		t.Error("expected overlap error, got nil")
	}

	// Adjacent slot touching at the boundary is fine.
	adjacent := &Slot{
		PractitionerID: prac,
		StartTime:      start.Add(30 * time.Minute),
		EndTime:        start.Add(time.Hour),
	}
	if err := svc.CreateSlot(context.Background(), adjacent); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Same window for a different practitioner is fine too.
	other := &Slot{
		PractitionerID: uuid.New(),
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
	}
	if err := svc.CreateSlot(context.Background(), other); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteSlotRefusesBooked(t *testing.T) {
	svc, slots, _ := newTestService()
	prac := uuid.New()
	s := seedSlot(t, svc, prac, time.Now().Add(time.Hour))

	if err := svc.Book(context.Background(), &Appointment{PatientID: uuid.New(), SlotID: s.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteSlot(context.Background(), s.ID); err == nil {
		t.Error("expected error deleting a booked slot")
	}
	if _, ok := slots.slots[s.ID]; !ok {
		t.Error("slot should not have been deleted")
	}
}

func TestBook(t *testing.T) {
	svc, slots, _ := newTestService()
	prac := uuid.New()
	s := seedSlot(t, svc, prac, time.Now().Add(time.Hour))

	a := &Appointment{PatientID: uuid.New(), SlotID: s.ID, Type: TypeVideo}
	if err := svc.Book(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != ApptBooked {
		t.Errorf("expected status %q, got %q", ApptBooked, a.Status)
	}
	if a.PractitionerID != prac {
		t.Error("expected practitioner to be taken from the slot")
	}
	if slots.slots[s.ID].Status != SlotBooked {
		t.Error("expected slot to be marked booked")
	}
}

func TestBookRejectsBookedSlot(t *testing.T) {
	svc, _, _ := newTestService()
	s := seedSlot(t, svc, uuid.New(), time.Now().Add(time.Hour))

	if err := svc.Book(context.Background(), &Appointment{PatientID: uuid.New(), SlotID: s.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Book(context.Background(), &Appointment{PatientID: uuid.New(), SlotID: s.ID}); err == nil {
		t.Error("expected error booking an already booked slot")
	}
}

func TestBookRejectsInvalidType(t *testing.T) {
	svc, _, _ := newTestService()
	s := seedSlot(t, svc, uuid.New(), time.Now().Add(time.Hour))

	err := svc.Book(context.Background(), &Appointment{PatientID: uuid.New(), SlotID: s.ID, Type: "house_call"})
	if err == nil {
		t.Error("expected error for invalid appointment type")
	}
}

func TestBookFreesSlotOnInsertFailure(t *testing.T) {
	svc, slots, appts := newTestService()
	s := seedSlot(t, svc, uuid.New(), time.Now().Add(time.Hour))

	appts.failCreate = true
	if err := svc.Book(context.Background(), &Appointment{PatientID: uuid.New(), SlotID: s.ID}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if slots.slots[s.ID].Status != SlotAvailable {
		t.Error("expected slot to be freed after failed insert")
	}
}

func TestCancelFreesSlot(t *testing.T) {
	svc, slots, _ := newTestService()
	s := seedSlot(t, svc, uuid.New(), time.Now().Add(time.Hour))

	a := &Appointment{PatientID: uuid.New(), SlotID: s.ID}
	if err := svc.Book(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != ApptCancelled {
		t.Errorf("expected status %q, got %q", ApptCancelled, cancelled.Status)
	}
	if slots.slots[s.ID].Status != SlotAvailable {
		t.Error("expected slot to be freed on cancel")
	}

	// A cancelled appointment cannot be cancelled again.
	if _, err := svc.Cancel(context.Background(), a.ID); err == nil {
		t.Error("expected error cancelling twice")
	}
}

func TestReschedule(t *testing.T) {
	svc, slots, _ := newTestService()
	prac := uuid.New()
	oldSlot := seedSlot(t, svc, prac, time.Now().Add(time.Hour))
	newSlot := seedSlot(t, svc, prac, time.Now().Add(2*time.Hour))

	a := &Appointment{PatientID: uuid.New(), SlotID: oldSlot.ID}
	if err := svc.Book(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved, err := svc.Reschedule(context.Background(), a.ID, newSlot.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.SlotID != newSlot.ID {
		t.Error("expected appointment to reference the new slot")
	}
	if slots.slots[oldSlot.ID].Status != SlotAvailable {
		t.Error("expected old slot to be freed")
	}
	if slots.slots[newSlot.ID].Status != SlotBooked {
		t.Error("expected new slot to be booked")
	}
}

func TestRescheduleRejectsBookedTarget(t *testing.T) {
	svc, _, _ := newTestService()
	prac := uuid.New()
	s1 := seedSlot(t, svc, prac, time.Now().Add(time.Hour))
	s2 := seedSlot(t, svc, prac, time.Now().Add(2*time.Hour))

	a1 := &Appointment{PatientID: uuid.New(), SlotID: s1.ID}
	if err := svc.Book(context.Background(), a1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2 := &Appointment{PatientID: uuid.New(), SlotID: s2.ID}
	if err := svc.Book(context.Background(), a2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Reschedule(context.Background(), a1.ID, s2.ID); err == nil {
		t.Error("expected error rescheduling onto a booked slot")
	}
}

func TestComplete(t *testing.T) {
	svc, _, _ := newTestService()
	s := seedSlot(t, svc, uuid.New(), time.Now().Add(time.Hour))

	a := &Appointment{PatientID: uuid.New(), SlotID: s.ID}
	if err := svc.Book(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done, err := svc.Complete(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != ApptCompleted {
		t.Errorf("expected status %q, got %q", ApptCompleted, done.Status)
	}

	if _, err := svc.Complete(context.Background(), a.ID); err == nil {
		t.Error("expected error completing twice")
	}
}
