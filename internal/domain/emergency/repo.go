package emergency

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Dispatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dispatch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Dispatch, int, error)
	// ListActive returns dispatches that are not yet closed or cancelled,
	// oldest first.
	ListActive(ctx context.Context, limit, offset int) ([]*Dispatch, int, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, c *StatusChange) error
	ListByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]*StatusChange, error)
}
