package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const bundleColumns = `id, kind, name, description, price, discount, required_item_types, item_ids, created_at`

// BundleRepository stores every bundle variant in one table keyed by kind.
// Compositions are kept as item id lists and resolved on read.
type BundleRepository struct {
	q querier
}

type bundleRow struct {
	info          domain.BundleInfo
	kind          domain.BundleKind
	price         decimal.NullDecimal
	discount      decimal.NullDecimal
	requiredJSON  []byte
	itemIDsJSON   []byte
	requiredTypes []domain.ItemType
	itemIDs       []uuid.UUID
}

func scanBundleRow(row rowScanner) (*bundleRow, error) {
	b := &bundleRow{}
	err := row.Scan(
		&b.info.ID,
		&b.kind,
		&b.info.Name,
		&b.info.Description,
		&b.price,
		&b.discount,
		&b.requiredJSON,
		&b.itemIDsJSON,
		&b.info.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b.requiredJSON, &b.requiredTypes); err != nil {
		return nil, fmt.Errorf("required item types deserialization error: %w", err)
	}
	if err := json.Unmarshal(b.itemIDsJSON, &b.itemIDs); err != nil {
		return nil, fmt.Errorf("bundle item ids deserialization error: %w", err)
	}
	return b, nil
}

func (r *BundleRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Bundle, error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles WHERE id = $1`

	row, err := scanBundleRow(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("bundle %s", id)
		}
		return nil, fmt.Errorf("bundle receive error: %w", err)
	}
	return r.hydrate(ctx, row)
}

func (r *BundleRepository) FindAll(ctx context.Context) ([]domain.Bundle, error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("bundles retrieval error: %w", err)
	}

	var scanned []*bundleRow
	for rows.Next() {
		row, err := scanBundleRow(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("bundle scan error: %w", err)
		}
		scanned = append(scanned, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("bundles iteration error: %w", err)
	}
	rows.Close()

	bundles := make([]domain.Bundle, 0, len(scanned))
	for _, row := range scanned {
		b, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

// hydrate resolves the composition and builds the concrete variant. An item
// deleted from the catalog since the bundle was written is a consistency
// error.
func (r *BundleRepository) hydrate(ctx context.Context, row *bundleRow) (domain.Bundle, error) {
	items := &ItemRepository{q: r.q}
	found, err := items.FindByIDs(ctx, row.itemIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Item, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}
	composition := make([]*domain.Item, 0, len(row.itemIDs))
	for _, id := range row.itemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, domain.Consistencyf("bundle %s references item %s which no longer exists", row.info.ID, id)
		}
		composition = append(composition, item)
	}

	switch row.kind {
	case domain.BundleKindPredefined:
		return &domain.PredefinedBundle{
			BundleInfo:  row.info,
			Price:       row.price.Decimal,
			Composition: composition,
		}, nil
	case domain.BundleKindDiscounted:
		return &domain.DiscountedBundle{
			BundleInfo:        row.info,
			Discount:          row.discount.Decimal,
			RequiredItemTypes: row.requiredTypes,
		}, nil
	case domain.BundleKindOneItem:
		if len(composition) == 0 {
			return nil, domain.Consistencyf("one-item bundle %s references a missing item", row.info.ID)
		}
		return &domain.OneItemBundle{BundleInfo: row.info, Item: composition[0]}, nil
	}
	return nil, domain.Consistencyf("bundle %s has unknown kind %q", row.info.ID, row.kind)
}

func bundleValues(b domain.Bundle) (price, discount decimal.NullDecimal, required, itemIDs []byte, err error) {
	requiredTypes := []domain.ItemType{}
	ids := b.ItemIDs()

	switch v := b.(type) {
	case *domain.PredefinedBundle:
		price = decimal.NewNullDecimal(v.Price)
	case *domain.DiscountedBundle:
		discount = decimal.NewNullDecimal(v.Discount)
		requiredTypes = v.RequiredItemTypes
		ids = []uuid.UUID{}
	case *domain.OneItemBundle:
	default:
		err = fmt.Errorf("unsupported bundle type %T", b)
		return
	}

	if required, err = json.Marshal(requiredTypes); err != nil {
		err = fmt.Errorf("required item types serialization error: %w", err)
		return
	}
	if itemIDs, err = json.Marshal(ids); err != nil {
		err = fmt.Errorf("bundle item ids serialization error: %w", err)
	}
	return
}

func (r *BundleRepository) Add(ctx context.Context, bundle domain.Bundle) error {
	price, discount, required, itemIDs, err := bundleValues(bundle)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bundles (id, kind, name, description, price, discount, required_item_types, item_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	info := bundle.Info()
	_, err = r.q.ExecContext(ctx, query,
		info.ID,
		bundle.Kind(),
		info.Name,
		info.Description,
		price,
		discount,
		required,
		itemIDs,
		info.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("bundle creation error: %w", err)
	}
	return nil
}

func (r *BundleRepository) Update(ctx context.Context, bundle domain.Bundle) error {
	price, discount, required, itemIDs, err := bundleValues(bundle)
	if err != nil {
		return err
	}

	query := `
		UPDATE bundles
		SET name = $3, description = $4, price = $5, discount = $6, required_item_types = $7, item_ids = $8
		WHERE id = $1 AND kind = $2
	`

	info := bundle.Info()
	result, err := r.q.ExecContext(ctx, query,
		info.ID,
		bundle.Kind(),
		info.Name,
		info.Description,
		price,
		discount,
		required,
		itemIDs,
	)
	if err != nil {
		return fmt.Errorf("bundle update error: %w", err)
	}
	return mustChange(result, "bundle", info.ID)
}

func (r *BundleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM bundles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bundle delete error: %w", err)
	}
	return mustChange(result, "bundle", id)
}
