package orders

import "github.com/bilguunmgl/go-shop-orders/internal/catalog"

// stockTarget names the single counter a line item touches: the flat product
// stock when SizeLabel is empty, otherwise the per-size counter.
type stockTarget struct {
	ProductID string
	SizeLabel string
	Remaining int // counter value after applying the change
}

// resolveReservation decides which counter to decrement for one line item
// against the locked product snapshot, enforcing the authority rule: products
// with size variants are only ever decremented per size, never on the flat
// counter. Going below zero is prevented here, before any write.
func resolveReservation(p *catalog.Product, it CartItem) (stockTarget, error) {
	if p.HasSizes() {
		if it.SelectedSize == "" {
			return stockTarget{}, &ValidationError{
				Msg: "size must be selected for product: " + p.Name,
			}
		}
		for _, s := range p.Sizes {
			if s.Label != it.SelectedSize {
				continue
			}
			if s.Stock < it.Qty {
				return stockTarget{}, &InsufficientStockError{
					ProductID: p.ID, Size: s.Label, Requested: it.Qty, Available: s.Stock,
				}
			}
			return stockTarget{ProductID: p.ID, SizeLabel: s.Label, Remaining: s.Stock - it.Qty}, nil
		}
		return stockTarget{}, &NotFoundError{Resource: "size", ID: it.SelectedSize}
	}

	if p.Stock < it.Qty {
		return stockTarget{}, &InsufficientStockError{
			ProductID: p.ID, Requested: it.Qty, Available: p.Stock,
		}
	}
	return stockTarget{ProductID: p.ID, Remaining: p.Stock - it.Qty}, nil
}

// resolveRestore is the cancellation inverse. A recorded size that still exists
// gets its counter back; otherwise the quantity is returned to the flat counter.
// It never fails: restoring stock is best-effort bookkeeping against whatever
// the catalog currently holds.
func resolveRestore(p *catalog.Product, selectedSize string, qty int) stockTarget {
	if p.HasSizes() && selectedSize != "" {
		for _, s := range p.Sizes {
			if s.Label == selectedSize {
				return stockTarget{ProductID: p.ID, SizeLabel: s.Label, Remaining: s.Stock + qty}
			}
		}
	}
	return stockTarget{ProductID: p.ID, Remaining: p.Stock + qty}
}
