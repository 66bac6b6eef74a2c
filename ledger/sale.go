package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordSale is the only path that creates a sale and moves stock.
//
// Inside one transaction it inserts the sale row (with total_amount and
// profit computed here and stored) and decrements the referenced item's
// stock by the sold quantity. Either both writes commit or neither does.
//
// The item reference is soft: if the item no longer exists the sale is still
// recorded and the decrement affects zero rows. Under a SalePolicy with
// RejectOversell the current stock is checked in the same transaction and a
// missing item or a quantity above stock fails the whole operation.
func (l *Ledger) RecordSale(ctx context.Context, req SaleRequest) (SaleTransaction, error) {
	if err := validateSale(req); err != nil {
		return SaleTransaction{}, err
	}

	qty := decimal.NewFromInt(req.Quantity)
	sale := SaleTransaction{
		ItemID:      req.ItemID,
		ItemName:    strings.TrimSpace(req.ItemName),
		Quantity:    req.Quantity,
		SalePrice:   req.SalePrice,
		TotalAmount: qty.Mul(req.SalePrice),
		Profit:      req.SalePrice.Sub(req.PurchasePrice).Mul(qty),
		SaleDate:    l.clock.Now().UTC().Truncate(time.Millisecond),
	}

	err := l.store.WithTx(ctx, func(tx Store) error {
		if l.policy.RejectOversell {
			item, err := tx.GetItem(ctx, req.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("item %d: %w", req.ItemID, ErrItemNotFound)
			}
			if req.Quantity > item.StockQuantity {
				return &InsufficientStockError{
					ItemID:    req.ItemID,
					Available: item.StockQuantity,
					Requested: req.Quantity,
				}
			}
		}

		res, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = SaleID(res.LastInsertID)

		_, err = tx.AdjustStock(ctx, req.ItemID, -req.Quantity)
		return err
	})
	if err != nil {
		return SaleTransaction{}, err
	}

	return sale, nil
}

func validateSale(req SaleRequest) error {
	if strings.TrimSpace(req.ItemName) == "" {
		return invalid("item_name", "is required")
	}
	if req.Quantity <= 0 {
		return invalid("quantity", "must be positive")
	}
	if req.SalePrice.IsNegative() {
		return invalid("sale_price", "must not be negative")
	}
	if req.PurchasePrice.IsNegative() {
		return invalid("purchase_price", "must not be negative")
	}
	return nil
}
