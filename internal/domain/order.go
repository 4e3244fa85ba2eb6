package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusValidated  OrderStatus = "validated"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusValidated, OrderStatusInProgress, OrderStatusDelivered:
		return true
	}
	return false
}

// OrderLine freezes one bundle as purchased.
type OrderLine struct {
	ID       uuid.UUID       `json:"id"`
	BundleID uuid.UUID       `json:"bundle_id"`
	Kind     BundleKind      `json:"kind"`
	Name     string          `json:"name"`
	ItemIDs  []uuid.UUID     `json:"item_ids"`
	Price    decimal.Decimal `json:"price"`
}

// NewOrderLine snapshots a bundle. A one-item bundle that was never stored in
// the catalog keeps a zero bundle id.
func NewOrderLine(b Bundle) (OrderLine, error) {
	if d, ok := b.(*DiscountedBundle); ok && !d.IsFilled() {
		return OrderLine{}, InvalidArgumentf("discounted bundle %q has no selections", d.Name)
	}
	ids := b.ItemIDs()
	if len(ids) == 0 {
		return OrderLine{}, InvalidArgumentf("bundle %q implies no items", b.Info().Name)
	}
	return OrderLine{
		ID:       uuid.New(),
		BundleID: b.Info().ID,
		Kind:     b.Kind(),
		Name:     b.Info().Name,
		ItemIDs:  append([]uuid.UUID(nil), ids...),
		Price:    b.ComputePrice(),
	}, nil
}

type Order struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	CustomerID uuid.UUID   `json:"customer_id" db:"customer_id"`
	AddressID  uuid.UUID   `json:"address_id" db:"address_id"`
	Lines      []OrderLine `json:"lines" db:"lines"`
	Status     OrderStatus `json:"status" db:"status"`
	OrderDate  time.Time   `json:"order_date" db:"order_date"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

func NewOrder(customerID, addressID uuid.UUID) *Order {
	now := time.Now()
	return &Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		AddressID:  addressID,
		Lines:      []OrderLine{},
		Status:     OrderStatusPending,
		OrderDate:  now,
		UpdatedAt:  now,
	}
}

func (o *Order) AddLine(line OrderLine) error {
	if o.Status != OrderStatusPending {
		return InvalidStatef("order %s is %s, only pending orders accept bundles", o.ID, o.Status)
	}
	o.Lines = append(o.Lines, line)
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) CanValidate() error {
	if o.Status != OrderStatusPending {
		return InvalidStatef("order %s is %s, only pending orders can be validated", o.ID, o.Status)
	}
	if len(o.Lines) == 0 {
		return InvalidStatef("order %s has no bundles", o.ID)
	}
	return nil
}

func (o *Order) CanCancel() error {
	if o.Status != OrderStatusPending {
		return InvalidStatef("order %s is %s, only pending orders can be cancelled", o.ID, o.Status)
	}
	return nil
}

// RequiredQuantities aggregates item units across every line.
func (o *Order) RequiredQuantities() map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, line := range o.Lines {
		for _, id := range line.ItemIDs {
			counts[id]++
		}
	}
	return counts
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Price)
	}
	return total
}

func (o *Order) UpdateStatus(status OrderStatus) {
	o.Status = status
	o.UpdatedAt = time.Now()
}
