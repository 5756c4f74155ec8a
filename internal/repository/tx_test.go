package repository

import (
	"context"
	"errors"
	"testing"

	"himachal-market/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_RollsBackOnError(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	transactor := NewTransactor(testDB)
	ctx := context.Background()

	product := seedProduct(t, seedSeller(t).ID, "3.00", 10, "Jam", nil)
	boom := errors.New("boom")

	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := productRepo.DecrementStock(ctx, product.ID, 7); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	retrieved, err := productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, retrieved.Stock, "decrement must not survive a rolled back transaction")
}

func TestTransactor_NestedCallsJoinOuterTransaction(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	transactor := NewTransactor(testDB)
	ctx := context.Background()

	product := seedProduct(t, seedSeller(t).ID, "3.00", 10, "Jam", nil)

	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			return productRepo.DecrementStock(ctx, product.ID, 4)
		}); err != nil {
			return err
		}
		return errors.New("outer failure")
	})
	require.Error(t, err)

	retrieved, err := productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, retrieved.Stock)
}

func TestTransactor_CommitAndRollbackCalls(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	transactor := NewTransactor(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, transactor.WithinTransaction(ctx, func(ctx context.Context) error { return nil }))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = transactor.WithinTransaction(ctx, func(ctx context.Context) error { return ErrProductNotFound })
	assert.ErrorIs(t, err, ErrProductNotFound)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))
	err = transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	assert.ErrorContains(t, err, "failed to begin transaction")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = NewTransactor(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
			panic(domain.OrderStatusCompleted)
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
