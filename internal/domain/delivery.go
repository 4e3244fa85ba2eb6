package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusInProgress DeliveryStatus = "in_progress"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
)

type Delivery struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	DriverID     uuid.UUID      `json:"driver_id" db:"driver_id"`
	OrderIDs     []uuid.UUID    `json:"order_ids" db:"order_ids"`
	Status       DeliveryStatus `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	DeliveryTime *time.Time     `json:"delivery_time,omitempty" db:"delivery_time"`
}

// NewAssignedDelivery builds a delivery that is already on the road.
func NewAssignedDelivery(driverID uuid.UUID, orderIDs []uuid.UUID) *Delivery {
	return &Delivery{
		ID:        uuid.New(),
		DriverID:  driverID,
		OrderIDs:  append([]uuid.UUID(nil), orderIDs...),
		Status:    DeliveryStatusInProgress,
		CreatedAt: time.Now(),
	}
}

func (d *Delivery) Complete(at time.Time) error {
	if d.Status != DeliveryStatusInProgress {
		return InvalidStatef("delivery %s is %s, only in_progress deliveries can be completed", d.ID, d.Status)
	}
	d.Status = DeliveryStatusDelivered
	d.DeliveryTime = &at
	return nil
}

func (d *Delivery) IsActive() bool {
	return d.Status == DeliveryStatusInProgress
}

// AssignmentFlow names which order status a delivery may pick up.
type AssignmentFlow string

const (
	// FlowDriverClaim is a driver taking pending orders straight from the queue.
	FlowDriverClaim AssignmentFlow = "driver_claim"
	// FlowAdminDispatch is an admin dispatching orders whose stock is already committed.
	FlowAdminDispatch AssignmentFlow = "admin_dispatch"
)

func (f AssignmentFlow) RequiredOrderStatus() (OrderStatus, error) {
	switch f {
	case FlowDriverClaim:
		return OrderStatusPending, nil
	case FlowAdminDispatch:
		return OrderStatusValidated, nil
	}
	return "", InvalidArgumentf("unknown assignment flow %q", f)
}
