package postgres

import (
	"context"
	"errors"
	"fmt"

	"storefront-payments/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

const gatewayOrderColumns = `reference_code, user_id, items, subtotal_cents, tip_cents, shipping_cents,
	taxes_cents, total_cents, currency, description, status, transaction_state, message,
	transaction_id, authorization_code, buyer_email, created_at, updated_at`

// GatewayOrderRepo implements ports.GatewayOrderRepository.
type GatewayOrderRepo struct {
	pool Pool
}

// NewGatewayOrderRepo creates a new GatewayOrderRepo.
func NewGatewayOrderRepo(pool Pool) *GatewayOrderRepo {
	return &GatewayOrderRepo{pool: pool}
}

// Create inserts a gateway order keyed by its reference code.
func (r *GatewayOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	amounts, err := amountsOf(o)
	if err != nil {
		return err
	}
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	var buyerEmail string
	if o.Gateway != nil {
		buyerEmail = o.Gateway.BuyerEmail
	}

	query := `INSERT INTO gateway_orders (reference_code, user_id, items, subtotal_cents, tip_cents,
		shipping_cents, taxes_cents, total_cents, currency, description, status, buyer_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err = r.pool.QueryRow(ctx, query,
		o.ReferenceCode, nullIfEmpty(o.UserID), items,
		amounts.subtotal, amounts.tip, amounts.shipping, amounts.taxes, amounts.total,
		o.Currency, o.Description, o.Status, buyerEmail,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("insert gateway order: %w", err)
	}
	return nil
}

// GetByReference fetches a gateway order by reference code.
func (r *GatewayOrderRepo) GetByReference(ctx context.Context, referenceCode string) (*domain.Order, error) {
	query := `SELECT ` + gatewayOrderColumns + ` FROM gateway_orders WHERE reference_code = $1`

	o, err := scanGatewayOrder(r.pool.QueryRow(ctx, query, referenceCode))
	if err != nil {
		return nil, fmt.Errorf("get gateway order: %w", err)
	}
	return o, nil
}

// UpdateStatus sets the status and returns the updated row.
func (r *GatewayOrderRepo) UpdateStatus(ctx context.Context, referenceCode string, status domain.OrderStatus) (*domain.Order, error) {
	query := `UPDATE gateway_orders SET status = $1, updated_at = NOW()
		WHERE reference_code = $2 RETURNING ` + gatewayOrderColumns

	o, err := scanGatewayOrder(r.pool.QueryRow(ctx, query, status, referenceCode))
	if err != nil {
		return nil, fmt.Errorf("update gateway order status: %w", err)
	}
	return o, nil
}

// ApplyNotification overwrites the gateway fields in one statement. status
// moves only while the order is PENDING. An unknown reference writes nothing.
func (r *GatewayOrderRepo) ApplyNotification(ctx context.Context, n domain.Notification, status *domain.OrderStatus) (*domain.Order, error) {
	var next *string
	if status != nil {
		s := string(*status)
		next = &s
	}

	query := `UPDATE gateway_orders SET
		transaction_state = $1,
		message = $2,
		transaction_id = $3,
		status = CASE WHEN status = 'PENDING' THEN COALESCE($4::text, status) ELSE status END,
		updated_at = NOW()
		WHERE reference_code = $5 RETURNING ` + gatewayOrderColumns

	o, err := scanGatewayOrder(r.pool.QueryRow(ctx, query,
		n.TransactionState, n.ResponseMessage, n.TransactionID, next, n.ReferenceCode,
	))
	if err != nil {
		return nil, fmt.Errorf("apply gateway notification: %w", err)
	}
	return o, nil
}

// RecordReturn stores what the browser brought back from the gateway's
// response page. Fields already set by a notification are kept.
func (r *GatewayOrderRepo) RecordReturn(ctx context.Context, p domain.ReturnParams) (*domain.Order, error) {
	query := `UPDATE gateway_orders SET
		transaction_state = CASE WHEN transaction_state = '' THEN $1 ELSE transaction_state END,
		transaction_id = CASE WHEN transaction_id = '' THEN $2 ELSE transaction_id END,
		message = CASE WHEN message = '' THEN $3 ELSE message END,
		authorization_code = $4,
		buyer_email = COALESCE(NULLIF($5, ''), buyer_email),
		updated_at = NOW()
		WHERE reference_code = $6 RETURNING ` + gatewayOrderColumns

	o, err := scanGatewayOrder(r.pool.QueryRow(ctx, query,
		p.TransactionState, p.TransactionID, p.Message, p.AuthorizationCode, p.BuyerEmail, p.ReferenceCode,
	))
	if err != nil {
		return nil, fmt.Errorf("record gateway return: %w", err)
	}
	return o, nil
}

// List returns one page, most recent first, and the unpaged count.
func (r *GatewayOrderRepo) List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error) {
	where, args := listFilter(q)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM gateway_orders %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count gateway orders: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM gateway_orders %s
		ORDER BY created_at DESC, reference_code DESC LIMIT $%d OFFSET $%d`,
		gatewayOrderColumns, where, len(args)+1, len(args)+2)
	args = append(args, q.PageSize, q.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list gateway orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanGatewayOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan gateway order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate gateway order rows: %w", err)
	}
	return orders, total, nil
}

func scanGatewayOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{Type: domain.PurchaseTypeGateway, Gateway: &domain.GatewayDetails{}}
	var a orderAmounts
	var items []byte
	var userID *string
	err := row.Scan(
		&o.ReferenceCode, &userID, &items,
		&a.subtotal, &a.tip, &a.shipping, &a.taxes, &a.total,
		&o.Currency, &o.Description, &o.Status,
		&o.Gateway.TransactionState, &o.Gateway.Message, &o.Gateway.TransactionID,
		&o.Gateway.AuthorizationCode, &o.Gateway.BuyerEmail,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if userID != nil {
		o.UserID = *userID
	}
	a.apply(o)
	if o.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
