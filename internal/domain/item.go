package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemTypeMain    ItemType = "main"
	ItemTypeStarter ItemType = "starter"
	ItemTypeDrink   ItemType = "drink"
	ItemTypeSide    ItemType = "side"
	ItemTypeDessert ItemType = "dessert"
)

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeMain, ItemTypeStarter, ItemTypeDrink, ItemTypeSide, ItemTypeDessert:
		return true
	}
	return false
}

// ParseItemType accepts any casing and surrounding whitespace.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", InvalidArgumentf("unknown item type %q", s)
	}
	return t, nil
}

type Item struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Type         ItemType        `json:"item_type" db:"item_type"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	Availability bool            `json:"availability" db:"availability"`
	Description  string          `json:"description" db:"description"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type NewItem struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	Availability bool
	Type         ItemType
}

// ItemPatch carries the fields of a partial update; nil means unchanged.
type ItemPatch struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Stock        *int
	Availability *bool
	Type         *ItemType
}

func NewItemFrom(in NewItem) (*Item, error) {
	item := &Item{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Type:         in.Type,
		Price:        in.Price,
		Stock:        in.Stock,
		Availability: in.Availability,
		Description:  in.Description,
		CreatedAt:    time.Now(),
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *Item) Validate() error {
	if i.Name == "" {
		return InvalidArgumentf("item name is required")
	}
	if !i.Type.IsValid() {
		return InvalidArgumentf("unknown item type %q", i.Type)
	}
	if !i.Price.IsPositive() {
		return InvalidArgumentf("item price must be positive, got %s", i.Price)
	}
	if i.Stock < 0 {
		return InvalidArgumentf("item stock must not be negative, got %d", i.Stock)
	}
	if i.Stock == 0 && i.Availability {
		return InvalidArgumentf("item %q has no stock and cannot be available", i.Name)
	}
	return nil
}

// Apply returns a copy of the item with the patch merged in and re-validated.
func (i *Item) Apply(p ItemPatch) (*Item, error) {
	merged := *i
	if p.Name != nil {
		merged.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Price != nil {
		merged.Price = *p.Price
	}
	if p.Stock != nil {
		merged.Stock = *p.Stock
	}
	if p.Availability != nil {
		merged.Availability = *p.Availability
	}
	if p.Type != nil {
		merged.Type = *p.Type
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (i *Item) CanSupply(quantity int) bool {
	return i.Stock >= quantity
}

// Consume decrements stock and turns availability off when the last unit goes.
func (i *Item) Consume(quantity int) error {
	if !i.CanSupply(quantity) {
		return &InsufficientStockError{ItemID: i.ID, ItemName: i.Name, Requested: quantity, Available: i.Stock}
	}
	i.Stock -= quantity
	if i.Stock == 0 {
		i.Availability = false
	}
	return nil
}
