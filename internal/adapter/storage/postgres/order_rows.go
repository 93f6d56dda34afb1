package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront-payments/internal/core/domain"
)

// orderAmounts are the money columns of both order tables, in cents.
type orderAmounts struct {
	subtotal, tip, shipping, taxes, total int64
}

func amountsOf(o *domain.Order) (orderAmounts, error) {
	var a orderAmounts
	var err error
	if a.subtotal, err = domain.ToCents(o.Subtotal); err != nil {
		return a, fmt.Errorf("subtotal: %w", err)
	}
	if a.tip, err = domain.ToCents(o.Tip); err != nil {
		return a, fmt.Errorf("tip: %w", err)
	}
	if a.shipping, err = domain.ToCents(o.Shipping); err != nil {
		return a, fmt.Errorf("shipping: %w", err)
	}
	if a.taxes, err = domain.ToCents(o.Taxes); err != nil {
		return a, fmt.Errorf("taxes: %w", err)
	}
	if a.total, err = domain.ToCents(o.Total); err != nil {
		return a, fmt.Errorf("total: %w", err)
	}
	return a, nil
}

func (a orderAmounts) apply(o *domain.Order) {
	o.Subtotal = domain.FromCents(a.subtotal)
	o.Tip = domain.FromCents(a.tip)
	o.Shipping = domain.FromCents(a.shipping)
	o.Taxes = domain.FromCents(a.taxes)
	o.Total = domain.FromCents(a.total)
}

func encodeItems(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return b, nil
}

func decodeItems(raw []byte) ([]domain.LineItem, error) {
	items := []domain.LineItem{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// listFilter builds the WHERE clause shared by both order listings.
func listFilter(q domain.OrderQuery) (string, []any) {
	var conditions []string
	var args []any

	if q.UserID != "" {
		args = append(args, q.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if q.Status != nil {
		args = append(args, *q.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
