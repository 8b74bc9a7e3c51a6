package ledger

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// --- In-memory store ---
type memStore struct {
	mu       sync.Mutex
	wallets  map[uuid.UUID]decimal.Decimal
	txns     map[uuid.UUID]models.Transaction
	listErr  error
	existErr error
	setErr   error
	addErr   error
}

func newMemStore(wallets ...uuid.UUID) *memStore {
	s := &memStore{
		wallets: make(map[uuid.UUID]decimal.Decimal),
		txns:    make(map[uuid.UUID]models.Transaction),
	}
	for _, id := range wallets {
		s.wallets[id] = decimal.Zero
	}
	return s
}

func (s *memStore) ListByWallet(_ context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Transaction
	for _, t := range s.txns {
		if t.FromWallet == walletID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) Exists(_ context.Context, walletID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existErr != nil {
		return false, s.existErr
	}
	_, ok := s.wallets[walletID]
	return ok, nil
}

func (s *memStore) SetBalance(_ context.Context, walletID uuid.UUID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.wallets[walletID] = balance
	return nil
}

func (s *memStore) AddBalance(_ context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return decimal.Zero, false, s.addErr
	}
	b, ok := s.wallets[walletID]
	if !ok {
		return decimal.Zero, false, nil
	}
	b = b.Add(delta)
	s.wallets[walletID] = b
	return b, true, nil
}

// create, edit and remove mimic the service layer: mutate the ledger, then apply the delta.
func (s *memStore) create(t *testing.T, e *Engine, walletID uuid.UUID, value string) (uuid.UUID, decimal.Decimal) {
	txn := models.Transaction{ID: uuid.New(), FromWallet: walletID, Value: decimal.RequireFromString(value)}
	Decompose(&txn)
	s.mu.Lock()
	s.txns[txn.ID] = txn
	s.mu.Unlock()

	balance, err := e.ApplyTransactionDelta(context.Background(), walletID, Delta(decimal.Zero, txn.Value))
	require.NoError(t, err)
	return txn.ID, balance
}

func (s *memStore) edit(t *testing.T, e *Engine, id uuid.UUID, value string) decimal.Decimal {
	s.mu.Lock()
	txn := s.txns[id]
	old := txn.Value
	txn.Value = decimal.RequireFromString(value)
	Decompose(&txn)
	s.txns[id] = txn
	s.mu.Unlock()

	balance, err := e.ApplyTransactionDelta(context.Background(), txn.FromWallet, Delta(old, txn.Value))
	require.NoError(t, err)
	return balance
}

func (s *memStore) remove(t *testing.T, e *Engine, id uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	txn := s.txns[id]
	delete(s.txns, id)
	s.mu.Unlock()

	balance, err := e.ApplyTransactionDelta(context.Background(), txn.FromWallet, Delta(txn.Value, decimal.Zero))
	require.NoError(t, err)
	return balance
}

func assertDecimal(t *testing.T, expected string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(got), "expected %s, got %s", expected, got)
}

// --- Tests ---
func TestEngine_Scenario(t *testing.T) {
	ctx := context.Background()
	w1 := uuid.New()
	store := newMemStore(w1)
	engine := NewEngine(store, store)

	_, _ = store.create(t, engine, w1, "100")
	negID, _ := store.create(t, engine, w1, "-40")
	posID, incremental := store.create(t, engine, w1, "25")
	assertDecimal(t, "85", incremental)

	balance, err := engine.RecomputeBalance(ctx, w1)
	require.NoError(t, err)
	assertDecimal(t, "85", balance)

	incremental = store.edit(t, engine, negID, "-10")
	assertDecimal(t, "115", incremental)
	balance, err = engine.RecomputeBalance(ctx, w1)
	require.NoError(t, err)
	assertDecimal(t, "115", balance)

	incremental = store.remove(t, engine, posID)
	assertDecimal(t, "90", incremental)
	balance, err = engine.RecomputeBalance(ctx, w1)
	require.NoError(t, err)
	assertDecimal(t, "90", balance)
}

func TestEngine_EmptyWallet(t *testing.T) {
	w := uuid.New()
	store := newMemStore(w)
	engine := NewEngine(store, store)

	balance, err := engine.RecomputeBalance(context.Background(), w)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestEngine_Idempotent(t *testing.T) {
	ctx := context.Background()
	w := uuid.New()
	store := newMemStore(w)
	engine := NewEngine(store, store)
	store.create(t, engine, w, "10.10")
	store.create(t, engine, w, "-3.03")

	first, err := engine.RecomputeBalance(ctx, w)
	require.NoError(t, err)
	second, err := engine.RecomputeBalance(ctx, w)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assertDecimal(t, "7.07", first)
}

func TestEngine_IncrementalMatchesRecompute(t *testing.T) {
	ctx := context.Background()
	w := uuid.New()
	store := newMemStore(w)
	engine := NewEngine(store, store)
	rnd := rand.New(rand.NewSource(42))

	var ids []uuid.UUID
	var incremental decimal.Decimal
	for i := 0; i < 500; i++ {
		value := decimal.New(rnd.Int63n(200000)-100000, -2).String()
		switch op := rnd.Intn(3); {
		case op == 0 || len(ids) == 0:
			var id uuid.UUID
			id, incremental = store.create(t, engine, w, value)
			ids = append(ids, id)
		case op == 1:
			incremental = store.edit(t, engine, ids[rnd.Intn(len(ids))], value)
		default:
			idx := rnd.Intn(len(ids))
			incremental = store.remove(t, engine, ids[idx])
			ids = append(ids[:idx], ids[idx+1:]...)
		}

		full, err := engine.RecomputeBalance(ctx, w)
		require.NoError(t, err)
		require.True(t, incremental.Equal(full), "step %d: incremental %s, full %s", i, incremental, full)
	}
}

func TestEngine_ConcurrentWallets(t *testing.T) {
	ctx := context.Background()
	wallets := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	store := newMemStore(wallets...)
	engine := NewEngine(store, store)

	var wg sync.WaitGroup
	for _, w := range wallets {
		wg.Add(1)
		go func(w uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				txn := models.Transaction{ID: uuid.New(), FromWallet: w, Value: decimal.RequireFromString("1.50")}
				Decompose(&txn)
				store.mu.Lock()
				store.txns[txn.ID] = txn
				store.mu.Unlock()
				_, err := engine.ApplyTransactionDelta(ctx, w, txn.Value)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	for _, w := range wallets {
		balance, err := engine.RecomputeBalance(ctx, w)
		require.NoError(t, err)
		assertDecimal(t, "75", balance)
	}
}

func TestEngine_RecomputeBalance_Errors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection refused")

	t.Run("unknown wallet", func(t *testing.T) {
		store := newMemStore()
		_, err := NewEngine(store, store).RecomputeBalance(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})

	t.Run("exists fails", func(t *testing.T) {
		store := newMemStore()
		store.existErr = dbErr
		_, err := NewEngine(store, store).RecomputeBalance(ctx, uuid.New())

		var repoErr *RepositoryError
		assert.ErrorAs(t, err, &repoErr)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("list fails is never zero", func(t *testing.T) {
		w := uuid.New()
		store := newMemStore(w)
		store.wallets[w] = decimal.NewFromInt(99)
		store.listErr = dbErr
		balance, err := NewEngine(store, store).RecomputeBalance(ctx, w)

		var repoErr *RepositoryError
		assert.ErrorAs(t, err, &repoErr)
		assert.Equal(t, "list transactions", repoErr.Op)
		assert.True(t, balance.IsZero())
		// cached balance untouched
		assertDecimal(t, "99", store.wallets[w])
	})

	t.Run("store balance fails", func(t *testing.T) {
		w := uuid.New()
		store := newMemStore(w)
		store.setErr = dbErr
		_, err := NewEngine(store, store).RecomputeBalance(ctx, w)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("corrupted decomposition", func(t *testing.T) {
		w := uuid.New()
		store := newMemStore(w)
		store.wallets[w] = decimal.NewFromInt(42)
		id := uuid.New()
		store.txns[id] = models.Transaction{
			ID:          id,
			FromWallet:  w,
			Value:       decimal.NewFromInt(-10),
			CreditValue: decimal.NewFromInt(10),
			DebitValue:  decimal.Zero,
		}
		_, err := NewEngine(store, store).RecomputeBalance(ctx, w)

		var violation *InvariantViolationError
		assert.ErrorAs(t, err, &violation)
		assert.Equal(t, id, violation.TransactionID)
		// cached balance untouched
		assertDecimal(t, "42", store.wallets[w])
	})
}

func TestEngine_ApplyTransactionDelta_Errors(t *testing.T) {
	ctx := context.Background()

	store := newMemStore()
	_, err := NewEngine(store, store).ApplyTransactionDelta(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrWalletNotFound)

	store.addErr = errors.New("timeout")
	_, err = NewEngine(store, store).ApplyTransactionDelta(ctx, uuid.New(), decimal.NewFromInt(1))
	var repoErr *RepositoryError
	assert.ErrorAs(t, err, &repoErr)
}
