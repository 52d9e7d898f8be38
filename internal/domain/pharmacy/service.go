package pharmacy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StatusNotifier is told about order status changes so a notification can go
// out. Implementations must not block the request path.
type StatusNotifier interface {
	NotifyOrderStatus(ctx context.Context, o *Order)
}

type nopNotifier struct{}

func (nopNotifier) NotifyOrderStatus(context.Context, *Order) {}

type Service struct {
	medicines MedicineRepository
	orders    OrderRepository
	notifier  StatusNotifier
}

func NewService(medicines MedicineRepository, orders OrderRepository, notifier StatusNotifier) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{medicines: medicines, orders: orders, notifier: notifier}
}

// -- Medicines --

func (s *Service) CreateMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.PriceCents < 0 {
		return fmt.Errorf("price_cents must not be negative")
	}
	return s.medicines.Create(ctx, m)
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) UpdateMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.medicines.Update(ctx, m)
}

func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	return s.medicines.Delete(ctx, id)
}

func (s *Service) SearchMedicines(ctx context.Context, params map[string]string, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.Search(ctx, params, limit, offset)
}

// -- Orders --

// PlaceOrder validates line items against the catalog, prices the order, and
// creates it in status placed.
func (s *Service) PlaceOrder(ctx context.Context, o *Order) error {
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if o.AddressID == uuid.Nil {
		return fmt.Errorf("address_id is required")
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("order must have at least one item")
	}

	total := 0
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item quantity must be positive")
		}
		m, err := s.medicines.GetByID(ctx, item.MedicineID)
		if err != nil {
			return fmt.Errorf("medicine %s not found", item.MedicineID)
		}
		if !m.InStock {
			return fmt.Errorf("%s is out of stock", m.Name)
		}
		item.UnitPriceCents = m.PriceCents
		total += m.PriceCents * item.Quantity
	}

	o.Status = StatusPlaced
	o.TotalCents = total

	if err := s.orders.Create(ctx, o); err != nil {
		return err
	}
	s.notifier.NotifyOrderStatus(ctx, o)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) ListOrdersByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return s.orders.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	return s.orders.List(ctx, limit, offset)
}

// UpdateOrderStatus enforces the order state machine before persisting.
func (s *Service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found")
	}
	if !CanTransition(o.Status, status) {
		return nil, fmt.Errorf("cannot transition order from %s to %s", o.Status, status)
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o.Status = status
	s.notifier.NotifyOrderStatus(ctx, o)
	return o, nil
}

// CancelOrder is a convenience wrapper for the cancelled transition.
func (s *Service) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.UpdateOrderStatus(ctx, id, StatusCancelled)
}
