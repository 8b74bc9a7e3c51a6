package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-finance-ledger/internal/txhooks"
)

func TestTransactor_InTx(t *testing.T) {
	db, mock := newMockDB(t)
	transactor := NewTransactor(db)

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := transactor.InTx(context.Background(), func(ctx context.Context) error {
			assert.NotNil(t, TxFromContext(ctx))
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := transactor.InTx(context.Background(), func(ctx context.Context) error {
			return errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
	})

	t.Run("rollback on panic", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = transactor.InTx(context.Background(), func(ctx context.Context) error {
				panic("boom")
			})
		})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_InTx_AfterCommitHooks(t *testing.T) {
	db, mock := newMockDB(t)
	transactor := NewTransactor(db)

	t.Run("run after commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		ran := false
		err := transactor.InTx(context.Background(), func(ctx context.Context) error {
			txhooks.AfterCommit(ctx, func() { ran = true })
			assert.False(t, ran)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("dropped on rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		ran := false
		err := transactor.InTx(context.Background(), func(ctx context.Context) error {
			txhooks.AfterCommit(ctx, func() { ran = true })
			return errors.New("boom")
		})
		assert.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("dropped when commit fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("conn lost"))

		ran := false
		err := transactor.InTx(context.Background(), func(ctx context.Context) error {
			txhooks.AfterCommit(ctx, func() { ran = true })
			return nil
		})
		assert.ErrorContains(t, err, "commit transaction")
		assert.False(t, ran)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxFromContext_Empty(t *testing.T) {
	assert.Nil(t, TxFromContext(context.Background()))
}
