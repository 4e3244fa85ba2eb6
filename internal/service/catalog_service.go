package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CatalogService struct {
	store repository.Store
	log   logrus.FieldLogger
}

func NewCatalogService(store repository.Store, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{
		store: store,
		log:   log.WithField("service", "catalog"),
	}
}

func (s *CatalogService) CreateItem(ctx context.Context, in domain.NewItem) (*domain.Item, error) {
	item, err := domain.NewItemFrom(in)
	if err != nil {
		return nil, err
	}

	if err := s.store.Items().Add(ctx, item); err != nil {
		return nil, domain.Persistence("create item", err)
	}

	s.log.WithFields(logrus.Fields{"item_id": item.ID, "stock": item.Stock}).Infof("Item created: %s", item.Name)
	return item, nil
}

// itemUpdateAttempts bounds how often UpdateItem re-reads an item whose stock
// moved under it.
const itemUpdateAttempts = 3

// UpdateItem merges the patch into the stored item. The write only lands if
// the stock is still the one the patch was merged against, so a concurrent
// validation is never overwritten.
func (s *CatalogService) UpdateItem(ctx context.Context, id uuid.UUID, patch domain.ItemPatch) (*domain.Item, error) {
	for attempt := 1; attempt <= itemUpdateAttempts; attempt++ {
		item, err := s.store.Items().FindByID(ctx, id)
		if err != nil {
			return nil, domain.Persistence("load item", err)
		}

		updated, err := item.Apply(patch)
		if err != nil {
			return nil, err
		}

		written, err := s.store.Items().UpdateIfStock(ctx, updated, item.Stock)
		if err != nil {
			return nil, domain.Persistence("update item", err)
		}
		if written {
			s.log.WithField("item_id", id).Info("Item updated")
			return updated, nil
		}
		s.log.WithFields(logrus.Fields{"item_id": id, "attempt": attempt}).Debug("Item stock moved during update, retrying")
	}
	return nil, domain.InvalidStatef("item %s kept changing during update", id)
}

func (s *CatalogService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Items().Delete(ctx, id); err != nil {
		return domain.Persistence("delete item", err)
	}
	s.log.WithField("item_id", id).Info("Item deleted")
	return nil
}

func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	item, err := s.store.Items().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load item", err)
	}
	return item, nil
}

// ListItems returns the whole menu, or only one type when itemType is set.
func (s *CatalogService) ListItems(ctx context.Context, itemType domain.ItemType) ([]*domain.Item, error) {
	var (
		items []*domain.Item
		err   error
	)
	if itemType == "" {
		items, err = s.store.Items().FindAll(ctx)
	} else {
		if !itemType.IsValid() {
			return nil, domain.InvalidArgumentf("unknown item type %q", itemType)
		}
		items, err = s.store.Items().FindByType(ctx, itemType)
	}
	if err != nil {
		return nil, domain.Persistence("list items", err)
	}
	return items, nil
}

func (s *CatalogService) CreatePredefinedBundle(ctx context.Context, name, description string,
	itemIDs []uuid.UUID, price decimal.Decimal) (*domain.PredefinedBundle, error) {
	if !price.IsPositive() {
		return nil, domain.InvalidArgumentf("bundle price must be positive, got %s", price)
	}
	if len(itemIDs) < 2 {
		return nil, domain.InvalidArgumentf("predefined bundle needs at least 2 items, got %d", len(itemIDs))
	}

	composition, err := s.resolveItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	bundle, err := domain.NewPredefinedBundle(name, description, composition, price)
	if err != nil {
		return nil, err
	}
	if err := s.store.Bundles().Add(ctx, bundle); err != nil {
		return nil, domain.Persistence("create bundle", err)
	}

	s.log.WithFields(logrus.Fields{"bundle_id": bundle.ID, "items": len(composition)}).
		Infof("Predefined bundle created: %s", bundle.Name)
	return bundle, nil
}

func (s *CatalogService) CreateDiscountedBundle(ctx context.Context, name, description string,
	requiredTypes []string, discount decimal.Decimal) (*domain.DiscountedBundle, error) {
	types, err := parseItemTypes(requiredTypes)
	if err != nil {
		return nil, err
	}

	bundle, err := domain.NewDiscountedBundle(name, description, types, discount)
	if err != nil {
		return nil, err
	}
	if err := s.store.Bundles().Add(ctx, bundle); err != nil {
		return nil, domain.Persistence("create bundle", err)
	}

	s.log.WithFields(logrus.Fields{"bundle_id": bundle.ID, "discount": bundle.Discount.String()}).
		Infof("Discounted bundle created: %s", bundle.Name)
	return bundle, nil
}

// CreateOneItemBundle lists a single item as a catalog bundle.
func (s *CatalogService) CreateOneItemBundle(ctx context.Context, itemID uuid.UUID) (*domain.OneItemBundle, error) {
	item, err := s.store.Items().FindByID(ctx, itemID)
	if err != nil {
		return nil, domain.Persistence("load item", err)
	}

	bundle, err := domain.NewOneItemBundle(item)
	if err != nil {
		return nil, err
	}
	if err := s.store.Bundles().Add(ctx, bundle); err != nil {
		return nil, domain.Persistence("create bundle", err)
	}

	s.log.WithFields(logrus.Fields{"bundle_id": bundle.ID, "item_id": item.ID}).Info("One-item bundle created")
	return bundle, nil
}

func (s *CatalogService) UpdatePredefinedBundle(ctx context.Context, id uuid.UUID,
	patch domain.PredefinedBundlePatch) (*domain.PredefinedBundle, error) {
	stored, err := s.store.Bundles().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load bundle", err)
	}
	current, ok := stored.(*domain.PredefinedBundle)
	if !ok {
		return nil, kindMismatch(id, stored.Kind(), domain.BundleKindPredefined)
	}

	updated := *current
	if err := applyInfo(&updated.BundleInfo, patch.Name, patch.Description); err != nil {
		return nil, err
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.ItemIDs != nil {
		if len(patch.ItemIDs) < 2 {
			return nil, domain.InvalidArgumentf("predefined bundle needs at least 2 items, got %d", len(patch.ItemIDs))
		}
		if updated.Composition, err = s.resolveItems(ctx, patch.ItemIDs); err != nil {
			return nil, err
		}
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Bundles().Update(ctx, &updated); err != nil {
		return nil, domain.Persistence("update bundle", err)
	}
	s.log.WithField("bundle_id", id).Info("Predefined bundle updated")
	return &updated, nil
}

func (s *CatalogService) UpdateDiscountedBundle(ctx context.Context, id uuid.UUID,
	patch domain.DiscountedBundlePatch) (*domain.DiscountedBundle, error) {
	stored, err := s.store.Bundles().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load bundle", err)
	}
	current, ok := stored.(*domain.DiscountedBundle)
	if !ok {
		return nil, kindMismatch(id, stored.Kind(), domain.BundleKindDiscounted)
	}

	updated := *current
	if err := applyInfo(&updated.BundleInfo, patch.Name, patch.Description); err != nil {
		return nil, err
	}
	if patch.Discount != nil {
		updated.Discount = *patch.Discount
	}
	if patch.RequiredItemTypes != nil {
		updated.RequiredItemTypes = append([]domain.ItemType(nil), patch.RequiredItemTypes...)
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Bundles().Update(ctx, &updated); err != nil {
		return nil, domain.Persistence("update bundle", err)
	}
	s.log.WithField("bundle_id", id).Info("Discounted bundle updated")
	return &updated, nil
}

func (s *CatalogService) DeleteBundle(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Bundles().Delete(ctx, id); err != nil {
		return domain.Persistence("delete bundle", err)
	}
	s.log.WithField("bundle_id", id).Info("Bundle deleted")
	return nil
}

func (s *CatalogService) GetBundle(ctx context.Context, id uuid.UUID) (domain.Bundle, error) {
	bundle, err := s.store.Bundles().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load bundle", err)
	}
	return bundle, nil
}

func (s *CatalogService) ListBundles(ctx context.Context) ([]domain.Bundle, error) {
	bundles, err := s.store.Bundles().FindAll(ctx)
	if err != nil {
		return nil, domain.Persistence("list bundles", err)
	}
	return bundles, nil
}

// resolveItems loads every id, keeping order and repeats. Any id that does
// not resolve fails the whole call.
func (s *CatalogService) resolveItems(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error) {
	found, err := s.store.Items().FindByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Persistence("load items", err)
	}
	byID := make(map[uuid.UUID]*domain.Item, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, domain.InvalidArgumentf("item %s does not exist", id)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseItemTypes(raw []string) ([]domain.ItemType, error) {
	if len(raw) == 0 {
		return nil, domain.InvalidArgumentf("discounted bundle needs at least one required item type")
	}
	types := make([]domain.ItemType, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			return nil, domain.InvalidArgumentf("required item types must not be blank")
		}
		t, err := domain.ParseItemType(r)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func applyInfo(info *domain.BundleInfo, name, description *string) error {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return domain.InvalidArgumentf("bundle name is required")
		}
		info.Name = trimmed
	}
	if description != nil {
		info.Description = *description
	}
	return nil
}

func kindMismatch(id uuid.UUID, got, want domain.BundleKind) error {
	return fmt.Errorf("bundle %s is %s, not %s: %w", id, got, want, domain.ErrBundleKindMismatch)
}
