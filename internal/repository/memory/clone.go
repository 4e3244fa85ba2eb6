package memory

import (
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
)

func cloneItem(i *domain.Item) *domain.Item {
	c := *i
	return &c
}

func cloneItems(items []*domain.Item) []*domain.Item {
	if items == nil {
		return nil
	}
	out := make([]*domain.Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneBundle(b domain.Bundle) domain.Bundle {
	switch v := b.(type) {
	case *domain.PredefinedBundle:
		c := *v
		c.Composition = cloneItems(v.Composition)
		return &c
	case *domain.DiscountedBundle:
		c := *v
		c.RequiredItemTypes = append([]domain.ItemType(nil), v.RequiredItemTypes...)
		c.Composition = cloneItems(v.Composition)
		return &c
	case *domain.OneItemBundle:
		c := *v
		c.Item = cloneItem(v.Item)
		return &c
	}
	return b
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	return append([]uuid.UUID(nil), ids...)
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Lines = make([]domain.OrderLine, len(o.Lines))
	for i, line := range o.Lines {
		line.ItemIDs = cloneIDs(line.ItemIDs)
		c.Lines[i] = line
	}
	return &c
}

func cloneDelivery(d *domain.Delivery) *domain.Delivery {
	c := *d
	c.OrderIDs = cloneIDs(d.OrderIDs)
	if d.DeliveryTime != nil {
		t := *d.DeliveryTime
		c.DeliveryTime = &t
	}
	return &c
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Customer != nil {
		p := *u.Customer
		c.Customer = &p
	}
	if u.Driver != nil {
		p := *u.Driver
		c.Driver = &p
	}
	return &c
}

func cloneAddress(a *domain.Address) *domain.Address {
	c := *a
	return &c
}
