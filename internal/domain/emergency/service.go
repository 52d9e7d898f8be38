package emergency

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StatusNotifier is told about every dispatch status change so callers
// can fan the update out to the patient.
type StatusNotifier interface {
	NotifyDispatchStatus(patientID, dispatchID uuid.UUID, status string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyDispatchStatus(uuid.UUID, uuid.UUID, string) {}

type Service struct {
	repo     Repository
	history  HistoryRepository
	notifier StatusNotifier
}

func NewService(repo Repository, history HistoryRepository, notifier StatusNotifier) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{repo: repo, history: history, notifier: notifier}
}

// Create records a new dispatch request in the requested status and
// writes the first history entry.
func (s *Service) Create(ctx context.Context, d *Dispatch) error {
	if d.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(d.Complaint) == "" {
		return fmt.Errorf("complaint is required")
	}
	if d.Latitude < -90 || d.Latitude > 90 {
		return fmt.Errorf("latitude out of range")
	}
	if d.Longitude < -180 || d.Longitude > 180 {
		return fmt.Errorf("longitude out of range")
	}

	d.Status = StatusRequested
	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}
	return s.history.Append(ctx, &StatusChange{
		DispatchID: d.ID,
		Status:     StatusRequested,
		ChangedBy:  d.PatientID,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Dispatch, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*StatusChange, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("dispatch not found")
	}
	return s.history.ListByDispatch(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Dispatch, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*Dispatch, int, error) {
	return s.repo.ListActive(ctx, limit, offset)
}

// UpdateStatus moves a dispatch along the requested, dispatched,
// on_scene, closed chain, recording who made the change.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, changedBy uuid.UUID, note *string) (*Dispatch, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dispatch not found")
	}
	if !CanTransition(d.Status, status) {
		return nil, fmt.Errorf("cannot transition dispatch from %q to %q", d.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	if err := s.history.Append(ctx, &StatusChange{
		DispatchID: id,
		Status:     status,
		Note:       note,
		ChangedBy:  changedBy,
	}); err != nil {
		return nil, err
	}
	d.Status = status
	s.notifier.NotifyDispatchStatus(d.PatientID, d.ID, status)
	return d, nil
}

// Cancel lets the requesting patient withdraw a dispatch that has not
// reached the scene yet.
func (s *Service) Cancel(ctx context.Context, id, patientID uuid.UUID) (*Dispatch, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dispatch not found")
	}
	if d.PatientID != patientID {
		return nil, fmt.Errorf("dispatch does not belong to patient")
	}
	return s.UpdateStatus(ctx, id, StatusCancelled, patientID, nil)
}
