package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-payments/internal/core/domain"
	"storefront-payments/internal/core/ports/mocks"
	"storefront-payments/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	repo       *mocks.MockLedgerRepository
	transactor *mocks.MockDBTransactor
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		repo:       mocks.NewMockLedgerRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
	}
	d.svc = NewLedgerService(d.repo, d.transactor, newTestLogger())
	return d
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		d := setupLedgerService(t)
		d.repo.EXPECT().GetBalance(ctx, "user-1").Return(&domain.Account{UserID: "user-1", Balance: dec("100")}, nil)

		acc, err := d.svc.GetBalance(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, acc.Balance.Equal(dec("100")))
	})

	t.Run("no balance record", func(t *testing.T) {
		d := setupLedgerService(t)
		d.repo.EXPECT().GetBalance(ctx, "ghost").Return(nil, nil)

		_, err := d.svc.GetBalance(ctx, "ghost")
		requireAppError(t, err, apperror.CodeNotFound)
	})

	t.Run("store failure is generic", func(t *testing.T) {
		d := setupLedgerService(t)
		d.repo.EXPECT().GetBalance(ctx, "user-1").Return(nil, errors.New("conn refused"))

		_, err := d.svc.GetBalance(ctx, "user-1")
		appErr := requireAppError(t, err, apperror.CodeInternal)
		assert.NotContains(t, appErr.Message, "conn refused")
	})
}

func TestLedgerService_Debit_Success(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.repo.EXPECT().Debit(ctx, tx, "user-1", int64(6000)).Return(&domain.Account{
		UserID:    "user-1",
		Balance:   domain.FromCents(4000),
		UpdatedAt: time.Now(),
	}, nil)

	acc, err := d.svc.Debit(ctx, "user-1", dec("60.00"))
	require.NoError(t, err)
	assert.Equal(t, "40", acc.Balance.String())
	assert.True(t, tx.committed)
}

func TestLedgerService_Debit_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.repo.EXPECT().Debit(ctx, tx, "user-1", int64(6000)).Return(nil, domain.ErrInsufficientFunds)

	_, err := d.svc.Debit(ctx, "user-1", dec("60"))
	appErr := requireAppError(t, err, apperror.CodeInsufficientFunds)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.False(t, tx.committed)
}

func TestLedgerService_Debit_NoAccount(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.repo.EXPECT().Debit(ctx, tx, "ghost", int64(100)).Return(nil, nil)

	_, err := d.svc.Debit(ctx, "ghost", dec("1"))
	requireAppError(t, err, apperror.CodeNotFound)
	assert.False(t, tx.committed)
}

func TestLedgerService_Debit_InvalidAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"sub-cent", "1.234"},
		{"wraps int64", "184467440737095515.16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupLedgerService(t)
			// no Begin expected
			_, err := d.svc.Debit(context.Background(), "user-1", dec(tt.amount))
			requireAppError(t, err, apperror.CodeInvalidInput)
		})
	}
}

func TestLedgerService_Debit_BeginFails(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()

	d.transactor.EXPECT().Begin(ctx).Return(nil, errors.New("pool exhausted"))

	_, err := d.svc.Debit(ctx, "user-1", dec("1"))
	requireAppError(t, err, apperror.CodeInternal)
}
