package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BundleKind string

const (
	BundleKindPredefined BundleKind = "predefined"
	BundleKindDiscounted BundleKind = "discounted"
	BundleKindOneItem    BundleKind = "one_item"
)

// Bundle is a purchasable grouping of items priced by its variant.
type Bundle interface {
	Info() *BundleInfo
	Kind() BundleKind
	ComputePrice() decimal.Decimal
	// ItemIDs lists the concrete items the bundle implies, one entry per unit.
	ItemIDs() []uuid.UUID
}

type BundleInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b *BundleInfo) Info() *BundleInfo { return b }

func newBundleInfo(name, description string) (BundleInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return BundleInfo{}, InvalidArgumentf("bundle name is required")
	}
	return BundleInfo{ID: uuid.New(), Name: name, Description: description, CreatedAt: time.Now()}, nil
}

type PredefinedBundle struct {
	BundleInfo
	Price       decimal.Decimal `json:"price"`
	Composition []*Item         `json:"composition"`
}

func NewPredefinedBundle(name, description string, items []*Item, price decimal.Decimal) (*PredefinedBundle, error) {
	info, err := newBundleInfo(name, description)
	if err != nil {
		return nil, err
	}
	b := &PredefinedBundle{BundleInfo: info, Price: price, Composition: items}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *PredefinedBundle) Validate() error {
	if !b.Price.IsPositive() {
		return InvalidArgumentf("bundle price must be positive, got %s", b.Price)
	}
	if len(b.Composition) < 2 {
		return InvalidArgumentf("predefined bundle needs at least 2 items, got %d", len(b.Composition))
	}
	return nil
}

func (b *PredefinedBundle) Kind() BundleKind { return BundleKindPredefined }

func (b *PredefinedBundle) ComputePrice() decimal.Decimal { return b.Price }

func (b *PredefinedBundle) ItemIDs() []uuid.UUID { return itemIDs(b.Composition) }

type DiscountedBundle struct {
	BundleInfo
	// Discount is a fraction in (0, 1).
	Discount          decimal.Decimal `json:"discount"`
	RequiredItemTypes []ItemType      `json:"required_item_types"`
	// Composition is empty in the catalog and filled per order.
	Composition []*Item `json:"composition,omitempty"`
}

func NewDiscountedBundle(name, description string, required []ItemType, discount decimal.Decimal) (*DiscountedBundle, error) {
	info, err := newBundleInfo(name, description)
	if err != nil {
		return nil, err
	}
	b := &DiscountedBundle{BundleInfo: info, Discount: discount, RequiredItemTypes: required}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *DiscountedBundle) Validate() error {
	if err := ValidateDiscount(b.Discount); err != nil {
		return err
	}
	if len(b.RequiredItemTypes) == 0 {
		return InvalidArgumentf("discounted bundle needs at least one required item type")
	}
	for _, t := range b.RequiredItemTypes {
		if !t.IsValid() {
			return InvalidArgumentf("unknown required item type %q", t)
		}
	}
	return nil
}

// ValidateDiscount enforces the fractional convention used everywhere: 0 < d < 1.
func ValidateDiscount(d decimal.Decimal) error {
	if !d.IsPositive() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return InvalidArgumentf("discount must be a fraction strictly between 0 and 1, got %s", d)
	}
	return nil
}

func (b *DiscountedBundle) Kind() BundleKind { return BundleKindDiscounted }

func (b *DiscountedBundle) ComputePrice() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range b.Composition {
		sum = sum.Add(item.Price)
	}
	return sum.Mul(decimal.NewFromInt(1).Sub(b.Discount)).Round(2)
}

func (b *DiscountedBundle) ItemIDs() []uuid.UUID { return itemIDs(b.Composition) }

// Fill returns a copy of the bundle composed of the customer's selections.
// The selections must match the required item types as a multiset.
func (b *DiscountedBundle) Fill(selections []*Item) (*DiscountedBundle, error) {
	if len(selections) != len(b.RequiredItemTypes) {
		return nil, InvalidArgumentf("bundle %q needs %d selections, got %d",
			b.Name, len(b.RequiredItemTypes), len(selections))
	}

	remaining := make(map[ItemType]int, len(b.RequiredItemTypes))
	for _, t := range b.RequiredItemTypes {
		remaining[t]++
	}
	for _, item := range selections {
		if remaining[item.Type] == 0 {
			return nil, InvalidArgumentf("item %q of type %s does not fill any required slot of bundle %q",
				item.Name, item.Type, b.Name)
		}
		remaining[item.Type]--
	}

	filled := *b
	filled.RequiredItemTypes = append([]ItemType(nil), b.RequiredItemTypes...)
	filled.Composition = append([]*Item(nil), selections...)
	return &filled, nil
}

func (b *DiscountedBundle) IsFilled() bool {
	return len(b.Composition) == len(b.RequiredItemTypes)
}

type OneItemBundle struct {
	BundleInfo
	Item *Item `json:"item"`
}

// NewOneItemBundle wraps an item; the bundle takes the item's name.
func NewOneItemBundle(item *Item) (*OneItemBundle, error) {
	if item == nil {
		return nil, InvalidArgumentf("one-item bundle needs an item")
	}
	info, err := newBundleInfo(item.Name, item.Description)
	if err != nil {
		return nil, err
	}
	return &OneItemBundle{BundleInfo: info, Item: item}, nil
}

func (b *OneItemBundle) Kind() BundleKind { return BundleKindOneItem }

func (b *OneItemBundle) ComputePrice() decimal.Decimal { return b.Item.Price }

func (b *OneItemBundle) ItemIDs() []uuid.UUID { return []uuid.UUID{b.Item.ID} }

type PredefinedBundlePatch struct {
	Name        *string
	Description *string
	ItemIDs     []uuid.UUID
	Price       *decimal.Decimal
}

type DiscountedBundlePatch struct {
	Name              *string
	Description       *string
	RequiredItemTypes []ItemType
	Discount          *decimal.Decimal
}

func itemIDs(items []*Item) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

// SortItemIDs orders ids by their string form; used wherever rows are locked in bulk.
func SortItemIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
