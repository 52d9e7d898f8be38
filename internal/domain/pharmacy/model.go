package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Transitions are linear with cancellation allowed before
// shipping: placed -> confirmed -> shipped -> delivered, or cancelled from
// placed/confirmed.
const (
	StatusPlaced    = "placed"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Medicine maps to the medicine table.
type Medicine struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Manufacturer *string   `db:"manufacturer" json:"manufacturer,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	PriceCents   int       `db:"price_cents" json:"price_cents"`
	RequiresRx   bool      `db:"requires_rx" json:"requires_rx"`
	InStock      bool      `db:"in_stock" json:"in_stock"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Order maps to the pharmacy_order table.
type Order struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	PatientID  uuid.UUID    `db:"patient_id" json:"patient_id"`
	AddressID  uuid.UUID    `db:"address_id" json:"address_id"`
	Status     string       `db:"status" json:"status"`
	TotalCents int          `db:"total_cents" json:"total_cents"`
	Note       *string      `db:"note" json:"note,omitempty"`
	Items      []*OrderItem `db:"-" json:"items,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// OrderItem maps to the pharmacy_order_item table.
type OrderItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrderID        uuid.UUID `db:"order_id" json:"order_id"`
	MedicineID     uuid.UUID `db:"medicine_id" json:"medicine_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	UnitPriceCents int       `db:"unit_price_cents" json:"unit_price_cents"`
}

// validTransitions maps each status to its allowed successors.
var validTransitions = map[string][]string{
	StatusPlaced:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
