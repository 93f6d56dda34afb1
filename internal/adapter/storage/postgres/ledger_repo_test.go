package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-payments/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceColumns() []string {
	return []string{"user_id", "balance_cents", "updated_at"}
}

func TestLedgerRepo_GetBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	mock.ExpectQuery("SELECT .+ FROM balances WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(balanceColumns()).AddRow("user-1", int64(10000), now))

	acc, err := NewLedgerRepo(mock).GetBalance(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "100", acc.Balance.String())
	assert.Equal(t, now, acc.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetBalance_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM balances WHERE user_id").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(balanceColumns()))

	acc, err := NewLedgerRepo(mock).GetBalance(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, acc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetBalance_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM balances").
		WithArgs("user-1").
		WillReturnError(errors.New("connection reset"))

	_, err = NewLedgerRepo(mock).GetBalance(context.Background(), "user-1")
	assert.ErrorContains(t, err, "get balance")
}

func TestLedgerRepo_Debit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE balances SET balance_cents = balance_cents").
		WithArgs(int64(6000), "user-1").
		WillReturnRows(pgxmock.NewRows(balanceColumns()).AddRow("user-1", int64(4000), now))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	acc, err := NewLedgerRepo(mock).Debit(context.Background(), dbTx, "user-1", 6000)
	require.NoError(t, err)
	assert.Equal(t, "40", acc.Balance.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Debit_InsufficientFunds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE balances SET balance_cents").
		WithArgs(int64(6000), "user-1").
		WillReturnRows(pgxmock.NewRows(balanceColumns()))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	acc, err := NewLedgerRepo(mock).Debit(context.Background(), dbTx, "user-1", 6000)
	assert.Nil(t, acc)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Debit_NoAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE balances SET balance_cents").
		WithArgs(int64(100), "ghost").
		WillReturnRows(pgxmock.NewRows(balanceColumns()))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	acc, err := NewLedgerRepo(mock).Debit(context.Background(), dbTx, "ghost", 100)
	assert.NoError(t, err)
	assert.Nil(t, acc)
	assert.NoError(t, mock.ExpectationsWereMet())
}
