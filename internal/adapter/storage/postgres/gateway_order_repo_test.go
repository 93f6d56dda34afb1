package postgres

import (
	"context"
	"testing"
	"time"

	"storefront-payments/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayOrderCols() []string {
	return []string{"reference_code", "user_id", "items", "subtotal_cents", "tip_cents", "shipping_cents",
		"taxes_cents", "total_cents", "currency", "description", "status", "transaction_state", "message",
		"transaction_id", "authorization_code", "buyer_email", "created_at", "updated_at"}
}

type gatewayRow struct {
	ref, state, message, txID string
	userID                    *string
	status                    domain.OrderStatus
}

func addGatewayOrderRow(rows *pgxmock.Rows, t *testing.T, r gatewayRow) *pgxmock.Rows {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return rows.AddRow(r.ref, r.userID, itemsJSON(t, testItems()),
		int64(100000), int64(0), int64(0), int64(0), int64(100000),
		"COP", "Storefront order", r.status, r.state, r.message, r.txID,
		"", "buyer@example.com", now, now)
}

func strPtr(s string) *string { return &s }

func TestGatewayOrderRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	o := &domain.Order{
		ReferenceCode: "REF1",
		Type:          domain.PurchaseTypeGateway,
		UserID:        "user-1",
		Items:         testItems(),
		Subtotal:      decimal.NewFromInt(1000),
		Total:         decimal.NewFromInt(1000),
		Currency:      "COP",
		Description:   "desc",
		Status:        domain.OrderStatusPending,
		Gateway:       &domain.GatewayDetails{BuyerEmail: "buyer@example.com"},
	}

	mock.ExpectQuery("INSERT INTO gateway_orders").
		WithArgs("REF1", strPtr("user-1"), itemsJSON(t, o.Items),
			int64(100000), int64(0), int64(0), int64(0), int64(100000),
			"COP", "desc", domain.OrderStatusPending, "buyer@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, NewGatewayOrderRepo(mock).Create(context.Background(), o))
	assert.Equal(t, now, o.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayOrderRepo_Create_DuplicateReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO gateway_orders").
		WithArgs("REF1", pgxmock.AnyArg(), pgxmock.AnyArg(),
			int64(0), int64(0), int64(0), int64(0), int64(100),
			"COP", "", pgxmock.AnyArg(), "").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = NewGatewayOrderRepo(mock).Create(context.Background(), &domain.Order{
		ReferenceCode: "REF1", Total: decimal.NewFromInt(1), Currency: "COP",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayOrderRepo_GetByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM gateway_orders WHERE reference_code").
		WithArgs("REF1").
		WillReturnRows(addGatewayOrderRow(pgxmock.NewRows(gatewayOrderCols()), t, gatewayRow{
			ref: "REF1", userID: strPtr("user-1"), status: domain.OrderStatusPending,
		}))

	o, err := NewGatewayOrderRepo(mock).GetByReference(context.Background(), "REF1")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, domain.PurchaseTypeGateway, o.Type)
	assert.Equal(t, "user-1", o.UserID)
	assert.Equal(t, "1000", o.Total.String())
	assert.Equal(t, "buyer@example.com", o.Gateway.BuyerEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayOrderRepo_GetByReference_AnonymousBuyer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM gateway_orders").
		WithArgs("REF2").
		WillReturnRows(addGatewayOrderRow(pgxmock.NewRows(gatewayOrderCols()), t, gatewayRow{
			ref: "REF2", userID: nil, status: domain.OrderStatusPending,
		}))

	o, err := NewGatewayOrderRepo(mock).GetByReference(context.Background(), "REF2")
	require.NoError(t, err)
	assert.Empty(t, o.UserID)
}

func TestGatewayOrderRepo_ApplyNotification(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	approved := domain.OrderStatusApproved
	n := domain.Notification{
		ReferenceCode:    "REF1",
		TransactionState: "4",
		ResponseMessage:  "APPROVED",
		TransactionID:    "tx-9",
	}

	mock.ExpectQuery("UPDATE gateway_orders SET transaction_state = \\$1, message = \\$2, transaction_id = \\$3, status = CASE WHEN status = 'PENDING'").
		WithArgs("4", "APPROVED", "tx-9", strPtr("APPROVED"), "REF1").
		WillReturnRows(addGatewayOrderRow(pgxmock.NewRows(gatewayOrderCols()), t, gatewayRow{
			ref: "REF1", state: "4", message: "APPROVED", txID: "tx-9", status: domain.OrderStatusApproved,
		}))

	o, err := NewGatewayOrderRepo(mock).ApplyNotification(context.Background(), n, &approved)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusApproved, o.Status)
	assert.Equal(t, "tx-9", o.Gateway.TransactionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayOrderRepo_ApplyNotification_UnknownStateKeepsStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE gateway_orders SET").
		WithArgs("104", "ERROR", "tx-1", (*string)(nil), "REF1").
		WillReturnRows(addGatewayOrderRow(pgxmock.NewRows(gatewayOrderCols()), t, gatewayRow{
			ref: "REF1", state: "104", message: "ERROR", txID: "tx-1", status: domain.OrderStatusPending,
		}))

	o, err := NewGatewayOrderRepo(mock).ApplyNotification(context.Background(), domain.Notification{
		ReferenceCode: "REF1", TransactionState: "104", ResponseMessage: "ERROR", TransactionID: "tx-1",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
}

func TestGatewayOrderRepo_ApplyNotification_UnknownReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE gateway_orders SET").
		WithArgs("", "", "", (*string)(nil), "NOPE").
		WillReturnRows(pgxmock.NewRows(gatewayOrderCols()))

	o, err := NewGatewayOrderRepo(mock).ApplyNotification(context.Background(), domain.Notification{ReferenceCode: "NOPE"}, nil)
	assert.NoError(t, err)
	assert.Nil(t, o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayOrderRepo_RecordReturn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := domain.ReturnParams{
		ReferenceCode:     "REF1",
		TransactionState:  "4",
		TransactionID:     "tx-9",
		Message:           "APPROVED",
		AuthorizationCode: "AUTH-77",
		BuyerEmail:        "buyer@example.com",
	}

	mock.ExpectQuery("UPDATE gateway_orders SET transaction_state = CASE WHEN transaction_state = ''").
		WithArgs("4", "tx-9", "APPROVED", "AUTH-77", "buyer@example.com", "REF1").
		WillReturnRows(addGatewayOrderRow(pgxmock.NewRows(gatewayOrderCols()), t, gatewayRow{
			ref: "REF1", state: "4", status: domain.OrderStatusPending,
		}))

	o, err := NewGatewayOrderRepo(mock).RecordReturn(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayOrderRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE gateway_orders SET status = \\$1").
		WithArgs(domain.OrderStatusDelivered, "REF1").
		WillReturnRows(addGatewayOrderRow(pgxmock.NewRows(gatewayOrderCols()), t, gatewayRow{
			ref: "REF1", status: domain.OrderStatusDelivered,
		}))

	o, err := NewGatewayOrderRepo(mock).UpdateStatus(context.Background(), "REF1", domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, o.Status)
}

func TestGatewayOrderRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM gateway_orders").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	rows := pgxmock.NewRows(gatewayOrderCols())
	rows = addGatewayOrderRow(rows, t, gatewayRow{ref: "REF2", status: domain.OrderStatusPending})
	rows = addGatewayOrderRow(rows, t, gatewayRow{ref: "REF1", status: domain.OrderStatusApproved})
	mock.ExpectQuery("SELECT .+ FROM gateway_orders ORDER BY created_at DESC").
		WithArgs(10, 0).
		WillReturnRows(rows)

	orders, total, err := NewGatewayOrderRepo(mock).List(context.Background(), domain.OrderQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Equal(t, "REF2", orders[0].ReferenceCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
