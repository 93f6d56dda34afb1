package postgres

import (
	"context"
	"errors"
	"fmt"

	"storefront-payments/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const balanceOrderColumns = `id, user_id, items, subtotal_cents, tip_cents, shipping_cents, taxes_cents,
	total_cents, status, created_at, updated_at`

// BalanceOrderRepo implements ports.BalanceOrderRepository.
type BalanceOrderRepo struct {
	pool Pool
}

// NewBalanceOrderRepo creates a new BalanceOrderRepo.
func NewBalanceOrderRepo(pool Pool) *BalanceOrderRepo {
	return &BalanceOrderRepo{pool: pool}
}

// Create inserts the order inside tx. The store assigns the id.
func (r *BalanceOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	amounts, err := amountsOf(o)
	if err != nil {
		return err
	}
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}

	query := `INSERT INTO balance_orders (user_id, items, subtotal_cents, tip_cents, shipping_cents,
		taxes_cents, total_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		o.UserID, items, amounts.subtotal, amounts.tip, amounts.shipping,
		amounts.taxes, amounts.total, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert balance order: %w", err)
	}
	return nil
}

// GetByID fetches a balance order by id.
func (r *BalanceOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + balanceOrderColumns + ` FROM balance_orders WHERE id = $1`

	o, err := scanBalanceOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get balance order: %w", err)
	}
	return o, nil
}

// UpdateStatus sets the status and returns the updated row.
func (r *BalanceOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	query := `UPDATE balance_orders SET status = $1, updated_at = NOW()
		WHERE id = $2 RETURNING ` + balanceOrderColumns

	o, err := scanBalanceOrder(r.pool.QueryRow(ctx, query, status, id))
	if err != nil {
		return nil, fmt.Errorf("update balance order status: %w", err)
	}
	return o, nil
}

// LatestForUser returns the user's most recent balance order.
func (r *BalanceOrderRepo) LatestForUser(ctx context.Context, userID string) (*domain.Order, error) {
	query := `SELECT ` + balanceOrderColumns + ` FROM balance_orders
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	o, err := scanBalanceOrder(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("get latest balance order: %w", err)
	}
	return o, nil
}

// List returns one page, most recent first, and the unpaged count.
func (r *BalanceOrderRepo) List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error) {
	where, args := listFilter(q)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM balance_orders %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count balance orders: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM balance_orders %s
		ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		balanceOrderColumns, where, len(args)+1, len(args)+2)
	args = append(args, q.PageSize, q.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list balance orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanBalanceOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan balance order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate balance order rows: %w", err)
	}
	return orders, total, nil
}

func scanBalanceOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{Type: domain.PurchaseTypeBalance}
	var a orderAmounts
	var items []byte
	err := row.Scan(
		&o.ID, &o.UserID, &items,
		&a.subtotal, &a.tip, &a.shipping, &a.taxes, &a.total,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.apply(o)
	if o.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return o, nil
}
