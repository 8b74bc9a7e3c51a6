package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

var transactionColumnNames = []string{
	"transaction_id", "category_id", "wallet_id", "user_id", "date", "description", "extra_info",
	"value", "credit_value", "debit_value", "csv_import_id", "created_at", "updated_at",
}

func transactionRows(txns ...models.Transaction) *sqlmock.Rows {
	rows := sqlmock.NewRows(transactionColumnNames)
	for _, t := range txns {
		var importID any
		if t.CSVImportID != nil {
			importID = t.CSVImportID.String()
		}
		var extra any
		if t.ExtraInfo != nil {
			extra = *t.ExtraInfo
		}
		rows.AddRow(t.ID.String(), t.FromCategory.String(), t.FromWallet.String(), t.FromUser.String(),
			t.Date, t.Description, extra, t.Value.String(), t.CreditValue.String(), t.DebitValue.String(),
			importID, t.CreatedAt, t.UpdatedAt)
	}
	return rows
}

func sampleTransaction(value string) models.Transaction {
	now := time.Now().UTC()
	v := decimal.RequireFromString(value)
	credit, debit := decimal.Zero, decimal.Zero
	if v.IsNegative() {
		debit = v.Neg()
	} else {
		credit = v
	}
	return models.Transaction{
		ID: uuid.New(), FromCategory: uuid.New(), FromWallet: uuid.New(), FromUser: uuid.New(),
		Date: now, Description: "coffee", Value: v, CreditValue: credit, DebitValue: debit,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestTransactionWriteRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()
	txn := sampleTransaction("-40")
	importID := uuid.New()
	txn.CSVImportID = &importID

	mock.ExpectQuery(`INSERT INTO transactions`).
		WithArgs(txn.ID, txn.FromCategory, txn.FromWallet, txn.FromUser, txn.Date, txn.Description, nil,
			"-40", "0", "40", importID).
		WillReturnRows(transactionRows(txn))

	got, err := NewTransactionWriteRepository(db, nil).Create(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
	assert.True(t, decimal.NewFromInt(40).Equal(got.DebitValue))
	require.NotNil(t, got.CSVImportID)
	assert.Equal(t, importID, *got.CSVImportID)
	assert.Nil(t, got.ExtraInfo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionWriteRepository_UpdateDelete(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()
	txn := sampleTransaction("25")

	mock.ExpectQuery(`UPDATE transactions`).WillReturnRows(transactionRows(txn))
	mock.ExpectQuery(`DELETE FROM transactions WHERE transaction_id = \$1`).WithArgs(txn.ID).
		WillReturnRows(transactionRows(txn))
	mock.ExpectQuery(`DELETE FROM transactions WHERE transaction_id = \$1`).
		WillReturnRows(sqlmock.NewRows(transactionColumnNames))

	repo := NewTransactionWriteRepository(db, nil)

	updated, err := repo.Update(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, updated.ID)

	deleted, err := repo.Delete(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(deleted.Value))

	deleted, err = repo.Delete(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionWriteRepository_DeleteByImport(t *testing.T) {
	db, mock := newMockDB(t)
	importID := uuid.New()
	a, b := sampleTransaction("10"), sampleTransaction("-3")

	mock.ExpectQuery(`DELETE FROM transactions WHERE csv_import_id = \$1`).WithArgs(importID).
		WillReturnRows(transactionRows(a, b))

	deleted, err := NewTransactionWriteRepository(db, nil).DeleteByImport(context.Background(), importID)
	require.NoError(t, err)
	assert.Len(t, deleted, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionReadRepository(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()
	a, b := sampleTransaction("100"), sampleTransaction("-40")
	walletID := a.FromWallet

	mock.ExpectQuery(`FROM transactions WHERE wallet_id = \$1`).WithArgs(walletID).
		WillReturnRows(transactionRows(a, b))
	mock.ExpectQuery(`FROM transactions WHERE transaction_id = \$1`).WithArgs(a.ID).
		WillReturnRows(sqlmock.NewRows(transactionColumnNames))
	mock.ExpectQuery(`ILIKE`).
		WithArgs(&walletID, nil, nil, nil, nil, `%50\%%`).
		WillReturnRows(transactionRows(b))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).WithArgs(a.FromCategory).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	repo := NewTransactionReadRepository(db, nil)

	txns, err := repo.ListByWallet(ctx, walletID)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	missing, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	found, err := repo.List(ctx, models.TransactionFilter{WalletID: &walletID, Search: " 50% "})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	count, err := repo.CountByCategory(ctx, a.FromCategory)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionReadRepository_GetByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()
	txn := sampleTransaction("-40")

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM transactions WHERE transaction_id = \$1 FOR UPDATE`).WithArgs(txn.ID).
		WillReturnRows(transactionRows(txn))
	mock.ExpectQuery(`FROM transactions WHERE transaction_id = \$1 FOR UPDATE`).WithArgs(txn.ID).
		WillReturnRows(sqlmock.NewRows(transactionColumnNames))
	mock.ExpectCommit()

	repo := NewTransactionReadRepository(db, TxFromContext)
	err := NewTransactor(db).InTx(ctx, func(ctx context.Context) error {
		locked, err := repo.GetByIDForUpdate(ctx, txn.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.True(t, decimal.NewFromInt(-40).Equal(locked.Value))

		missing, err := repo.GetByIDForUpdate(ctx, txn.ID)
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"   ":        "",
		"Coffee":     "%Coffee%",
		"50%":        `%50\%%`,
		"a_b":        `%a\_b%`,
		`back\slash`: `%back\\slash%`,
	}
	for in, want := range tests {
		assert.Equal(t, want, likePattern(in), in)
	}
}
