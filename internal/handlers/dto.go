package handlers

import (
	"time"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateItemRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Availability bool            `json:"availability"`
	ItemType     string          `json:"item_type"`
}

type UpdateItemRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock"`
	Availability *bool            `json:"availability"`
	ItemType     *string          `json:"item_type"`
}

type CreatePredefinedBundleRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ItemIDs     []uuid.UUID     `json:"item_ids"`
	Price       decimal.Decimal `json:"price"`
}

type CreateDiscountedBundleRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	RequiredItemTypes []string        `json:"required_item_types"`
	Discount          decimal.Decimal `json:"discount"`
}

type CreateOneItemBundleRequest struct {
	ItemID uuid.UUID `json:"item_id"`
}

type UpdatePredefinedBundleRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	ItemIDs     []uuid.UUID      `json:"item_ids"`
	Price       *decimal.Decimal `json:"price"`
}

type UpdateDiscountedBundleRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	RequiredItemTypes []string         `json:"required_item_types"`
	Discount          *decimal.Decimal `json:"discount"`
}

// CreateOrderRequest takes either a stored address id or a new address.
type CreateOrderRequest struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	AddressID  uuid.UUID       `json:"address_id"`
	Address    *AddressRequest `json:"address"`
}

type AddBundleRequest struct {
	BundleID   uuid.UUID   `json:"bundle_id"`
	Selections []uuid.UUID `json:"selections"`
}

type AddItemRequest struct {
	ItemID uuid.UUID `json:"item_id"`
}

type AssignDeliveryRequest struct {
	Flow     string      `json:"flow"`
	OrderIDs []uuid.UUID `json:"order_ids"`
	DriverID uuid.UUID   `json:"driver_id"`
}

type AvailabilityRequest struct {
	Available bool `json:"available"`
}

type RegisterRequest struct {
	Username    string                  `json:"username"`
	Password    string                  `json:"password"`
	UserType    string                  `json:"user_type"`
	Customer    *domain.CustomerProfile `json:"customer"`
	VehicleType string                  `json:"vehicle_type"`
}

type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AddressRequest struct {
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	ExtraInfo    string `json:"extra_info"`
}

func (r AddressRequest) toDomain() domain.Address {
	return domain.Address{
		City:         r.City,
		PostalCode:   r.PostalCode,
		StreetName:   r.StreetName,
		StreetNumber: r.StreetNumber,
		ExtraInfo:    r.ExtraInfo,
	}
}

type BundleResponse struct {
	ID                uuid.UUID         `json:"id"`
	Kind              domain.BundleKind `json:"kind"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Price             *decimal.Decimal  `json:"price,omitempty"`
	Discount          *decimal.Decimal  `json:"discount,omitempty"`
	RequiredItemTypes []domain.ItemType `json:"required_item_types,omitempty"`
	ItemIDs           []uuid.UUID       `json:"item_ids,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// mapBundle prices fixed-price variants. A catalog discounted bundle has no
// price until it is filled in an order.
func mapBundle(b domain.Bundle) BundleResponse {
	info := b.Info()
	response := BundleResponse{
		ID:          info.ID,
		Kind:        b.Kind(),
		Name:        info.Name,
		Description: info.Description,
		ItemIDs:     b.ItemIDs(),
		CreatedAt:   info.CreatedAt,
	}
	switch v := b.(type) {
	case *domain.DiscountedBundle:
		discount := v.Discount
		response.Discount = &discount
		response.RequiredItemTypes = v.RequiredItemTypes
	default:
		price := b.ComputePrice()
		response.Price = &price
	}
	return response
}

func mapBundles(bundles []domain.Bundle) []BundleResponse {
	responses := make([]BundleResponse, len(bundles))
	for i, b := range bundles {
		responses[i] = mapBundle(b)
	}
	return responses
}

type OrderResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	AddressID  uuid.UUID          `json:"address_id"`
	Lines      []domain.OrderLine `json:"lines"`
	Total      decimal.Decimal    `json:"total"`
	Status     string             `json:"status"`
	OrderDate  time.Time          `json:"order_date"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func mapOrder(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		AddressID:  o.AddressID,
		Lines:      o.Lines,
		Total:      o.Total(),
		Status:     string(o.Status),
		OrderDate:  o.OrderDate,
		UpdatedAt:  o.UpdatedAt,
	}
}

func mapOrders(orders []*domain.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = mapOrder(o)
	}
	return responses
}

type UserResponse struct {
	ID           uuid.UUID               `json:"id"`
	Username     string                  `json:"username"`
	UserType     string                  `json:"user_type"`
	SignUpDate   time.Time               `json:"sign_up_date"`
	Customer     *domain.CustomerProfile `json:"customer,omitempty"`
	VehicleType  string                  `json:"vehicle_type,omitempty"`
	Availability *bool                   `json:"availability,omitempty"`
}

func mapUser(u *domain.User) UserResponse {
	response := UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		UserType:   string(u.Type),
		SignUpDate: u.SignUpDate,
		Customer:   u.Customer,
	}
	if u.Driver != nil {
		available := u.Driver.Availability
		response.VehicleType = u.Driver.VehicleType
		response.Availability = &available
	}
	return response
}

func mapUsers(users []*domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = mapUser(u)
	}
	return responses
}
