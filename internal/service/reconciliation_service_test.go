package service

import (
	"context"
	"errors"
	"testing"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports"
	"storefront-payments/internal/core/ports/mocks"
	"storefront-payments/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reconciliationTestDeps struct {
	svc    *ReconciliationServiceImpl
	orders *mocks.MockOrderService
	users  *mocks.MockUserDirectory
}

func setupReconciliationService(t *testing.T) *reconciliationTestDeps {
	ctrl := gomock.NewController(t)
	d := &reconciliationTestDeps{
		orders: mocks.NewMockOrderService(ctrl),
		users:  mocks.NewMockUserDirectory(ctrl),
	}
	d.svc = NewReconciliationService(d.orders, d.users, newTestLogger())
	return d
}

func ordersN(n int) []*domain.Order {
	out := make([]*domain.Order, n)
	for i := range out {
		out[i] = &domain.Order{ID: int64(i + 1), Type: domain.PurchaseTypeBalance, Status: domain.OrderStatusPending}
	}
	return out
}

// 25 balance orders, page 1: ten items, three pages, more to come.
func TestReconciliationService_ListPending_FirstPage(t *testing.T) {
	d := setupReconciliationService(t)
	ctx := context.Background()

	d.orders.EXPECT().ListOrders(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, q domain.OrderQuery) (*domain.OrderPage, error) {
			assert.Equal(t, domain.PurchaseTypeBalance, q.Type)
			assert.Equal(t, 1, q.Page)
			assert.Equal(t, 10, q.PageSize)
			require.NotNil(t, q.Status)
			assert.Equal(t, domain.OrderStatusPending, *q.Status)
			return &domain.OrderPage{Items: ordersN(10), Total: 25}, nil
		},
	)

	page, err := d.svc.ListPending(ctx, ports.ListPendingRequest{Page: 1, Type: domain.PurchaseTypeBalance})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.True(t, page.HasMore)
}

func TestReconciliationService_ListPending_Paging(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		total     int64
		wantPage  int
		wantPages int
		wantMore  bool
	}{
		{"last page", 3, 25, 3, 3, false},
		{"page zero becomes one", 0, 25, 1, 3, true},
		{"exact multiple", 2, 20, 2, 2, false},
		{"empty", 1, 0, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupReconciliationService(t)
			d.orders.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(&domain.OrderPage{Items: []*domain.Order{}, Total: tt.total}, nil)

			page, err := d.svc.ListPending(context.Background(), ports.ListPendingRequest{Page: tt.page, Type: domain.PurchaseTypeGateway})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.CurrentPage)
			assert.Equal(t, tt.wantPages, page.Pages)
			assert.Equal(t, tt.wantMore, page.HasMore)
		})
	}
}

func TestReconciliationService_ListPending_StatusFilter(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   *domain.OrderStatus
	}{
		{"all statuses", "all", nil},
		{"canonical label", "DECLINED", statusPtr(domain.OrderStatusDeclined)},
		{"storefront label", "completado", statusPtr(domain.OrderStatusApproved)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupReconciliationService(t)
			d.orders.EXPECT().ListOrders(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, q domain.OrderQuery) (*domain.OrderPage, error) {
					assert.Equal(t, tt.want, q.Status)
					return &domain.OrderPage{Items: []*domain.Order{}}, nil
				},
			)

			_, err := d.svc.ListPending(context.Background(), ports.ListPendingRequest{Page: 1, Type: domain.PurchaseTypeBalance, Status: tt.status})
			require.NoError(t, err)
		})
	}
}

func TestReconciliationService_ListPending_UnknownStatus(t *testing.T) {
	d := setupReconciliationService(t)
	_, err := d.svc.ListPending(context.Background(), ports.ListPendingRequest{Type: domain.PurchaseTypeBalance, Status: "lost"})
	requireAppError(t, err, apperror.CodeInvalidInput)
}

func TestReconciliationService_GetDetail(t *testing.T) {
	ctx := context.Background()
	balanceKey := domain.BalanceKey{ID: 4}

	t.Run("user found", func(t *testing.T) {
		d := setupReconciliationService(t)
		d.orders.EXPECT().GetOrder(ctx, balanceKey).Return(&domain.Order{ID: 4, UserID: "user-1"}, nil)
		d.users.EXPECT().GetProfile(ctx, "user-1").Return(&domain.UserProfile{ID: "user-1", Email: "ana@example.com", Name: "Ana"}, nil)

		detail, err := d.svc.GetDetail(ctx, balanceKey)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", detail.UserEmail)
		assert.Equal(t, "Ana", detail.User.Name)
		assert.Equal(t, int64(4), detail.ID)
	})

	t.Run("user missing falls back to id", func(t *testing.T) {
		d := setupReconciliationService(t)
		d.orders.EXPECT().GetOrder(ctx, balanceKey).Return(&domain.Order{ID: 4, UserID: "user-9"}, nil)
		d.users.EXPECT().GetProfile(ctx, "user-9").Return(nil, nil)

		detail, err := d.svc.GetDetail(ctx, balanceKey)
		require.NoError(t, err)
		assert.Equal(t, "user-9", detail.UserEmail)
		assert.Nil(t, detail.User)
	})

	t.Run("directory failure degrades", func(t *testing.T) {
		d := setupReconciliationService(t)
		d.orders.EXPECT().GetOrder(ctx, balanceKey).Return(&domain.Order{ID: 4, UserID: "user-9"}, nil)
		d.users.EXPECT().GetProfile(ctx, "user-9").Return(nil, errors.New("timeout"))

		detail, err := d.svc.GetDetail(ctx, balanceKey)
		require.NoError(t, err)
		assert.Equal(t, "user-9", detail.UserEmail)
	})

	t.Run("anonymous gateway order uses buyer email", func(t *testing.T) {
		d := setupReconciliationService(t)
		key := domain.GatewayKey{ReferenceCode: "REF1"}
		d.orders.EXPECT().GetOrder(ctx, key).Return(&domain.Order{
			ReferenceCode: "REF1",
			Type:          domain.PurchaseTypeGateway,
			Gateway:       &domain.GatewayDetails{BuyerEmail: "buyer@example.com"},
		}, nil)

		detail, err := d.svc.GetDetail(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", detail.UserEmail)
	})

	t.Run("order missing", func(t *testing.T) {
		d := setupReconciliationService(t)
		d.orders.EXPECT().GetOrder(ctx, balanceKey).Return(nil, apperror.ErrNotFound("order"))

		_, err := d.svc.GetDetail(ctx, balanceKey)
		requireAppError(t, err, apperror.CodeNotFound)
	})
}

func TestReconciliationService_SetStatus(t *testing.T) {
	d := setupReconciliationService(t)
	ctx := context.Background()
	key := domain.GatewayKey{ReferenceCode: "REF1"}

	d.orders.EXPECT().UpdateStatus(ctx, key, domain.OrderStatusDelivered).
		Return(&domain.Order{ReferenceCode: "REF1", Status: domain.OrderStatusDelivered}, nil)

	order, err := d.svc.SetStatus(ctx, key, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)
}
