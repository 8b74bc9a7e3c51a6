package services

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// WalletWriter defines wallet write operations. It never changes balances.
type WalletWriter interface {
	Create(ctx context.Context, in models.WalletInput) (*models.Wallet, error)                     // Inserts a wallet with a zero balance
	Update(ctx context.Context, walletID uuid.UUID, in models.WalletInput) (*models.Wallet, error) // Updates editable fields, nil if missing
	Delete(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)                        // Removes a wallet and its transactions, nil if missing
}

// WalletReader defines wallet read operations.
type WalletReader interface {
	GetByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) // Returns nil if missing
	List(ctx context.Context, fromUser *uuid.UUID) ([]models.Wallet, error)  // Lists wallets, optionally of one owner
}

// BalanceEngine derives and maintains wallet balances.
type BalanceEngine interface {
	RecomputeBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
	ApplyTransactionDelta(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// ExchangeRateReader retrieves exchange rates from the rate source.
type ExchangeRateReader interface {
	GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}

// ExchangeRateCacheReader caches exchange rates.
type ExchangeRateCacheReader interface {
	GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
	SetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string, rate decimal.Decimal) error
}

// WalletService handles wallet operations.
type WalletService struct {
	writeRepo WalletWriter
	readRepo  WalletReader
	engine    BalanceEngine
	rateRepo  ExchangeRateReader
	cacheRepo ExchangeRateCacheReader
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	writeRepo WalletWriter,
	readRepo WalletReader,
	engine BalanceEngine,
	rateRepo ExchangeRateReader,
	cacheRepo ExchangeRateCacheReader,
) *WalletService {
	return &WalletService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		engine:    engine,
		rateRepo:  rateRepo,
		cacheRepo: cacheRepo,
	}
}

// normalizeWalletInput trims the input, defaults the currency and validates it.
func normalizeWalletInput(in models.WalletInput) (models.WalletInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = models.USD
	}

	if in.Name == "" {
		return in, fmt.Errorf("%w: wallet name is required", ErrInvalidInput)
	}
	if _, ok := models.SupportedCurrencies[in.Currency]; !ok {
		return in, fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, in.Currency)
	}
	return in, nil
}

// CreateWallet creates a wallet for a user. Its balance starts at zero.
func (s *WalletService) CreateWallet(ctx context.Context, in models.WalletInput) (*models.Wallet, error) {
	in, err := normalizeWalletInput(in)
	if err != nil {
		return nil, err
	}
	if in.FromUser == uuid.Nil {
		return nil, fmt.Errorf("%w: wallet owner is required", ErrInvalidInput)
	}

	wallet, err := s.writeRepo.Create(ctx, in)
	if err != nil {
		logger.Log.Errorw("failed to create wallet", "userID", in.FromUser, "name", in.Name, "error", err)
		return nil, err
	}
	return wallet, nil
}

// GetWallets lists wallets, optionally only those of fromUser.
func (s *WalletService) GetWallets(ctx context.Context, fromUser *uuid.UUID) ([]models.Wallet, error) {
	wallets, err := s.readRepo.List(ctx, fromUser)
	if err != nil {
		logger.Log.Errorw("failed to list wallets", "userID", fromUser, "error", err)
		return nil, err
	}
	return wallets, nil
}

// GetWalletByID returns one wallet.
func (s *WalletService) GetWalletByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.readRepo.GetByID(ctx, walletID)
	if err != nil {
		logger.Log.Errorw("failed to get wallet", "walletID", walletID, "error", err)
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

// EditWallet changes name, description and currency. The balance is not editable.
func (s *WalletService) EditWallet(ctx context.Context, walletID uuid.UUID, in models.WalletInput) (*models.Wallet, error) {
	in, err := normalizeWalletInput(in)
	if err != nil {
		return nil, err
	}

	wallet, err := s.writeRepo.Update(ctx, walletID, in)
	if err != nil {
		logger.Log.Errorw("failed to edit wallet", "walletID", walletID, "error", err)
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

// DeleteWallet removes the wallet with all of its transactions and returns it.
func (s *WalletService) DeleteWallet(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.writeRepo.Delete(ctx, walletID)
	if err != nil {
		logger.Log.Errorw("failed to delete wallet", "walletID", walletID, "error", err)
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

// CalculateWalletBalance recomputes the wallet balance from its full transaction history.
func (s *WalletService) CalculateWalletBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.engine.RecomputeBalance(ctx, walletID)
	if err != nil {
		logger.Log.Errorw("failed to calculate wallet balance", "walletID", walletID, "error", err)
		return decimal.Zero, err
	}
	return balance, nil
}

// ConvertWalletBalance returns the cached wallet balance expressed in another currency.
// Rates come from the cache first, then from the rate source, which refills the cache.
func (s *WalletService) ConvertWalletBalance(ctx context.Context, walletID uuid.UUID, currency string) (*models.ConvertedBalance, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := models.SupportedCurrencies[currency]; !ok {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, currency)
	}

	wallet, err := s.GetWalletByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	rate := decimal.NewFromInt(1)
	if wallet.Currency != currency {
		rate, err = s.exchangeRate(ctx, wallet.Currency, currency)
		if err != nil {
			return nil, err
		}
	}

	return &models.ConvertedBalance{
		WalletID:     wallet.ID,
		Balance:      wallet.Balance,
		FromCurrency: wallet.Currency,
		ToCurrency:   currency,
		Rate:         rate,
		Converted:    wallet.Balance.Mul(rate).Round(2),
	}, nil
}

func (s *WalletService) exchangeRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	rate, err := s.cacheRepo.GetExchangeRateForCurrency(ctx, fromCurrency, toCurrency)
	if err == nil {
		return rate, nil
	}

	rate, err = s.rateRepo.GetExchangeRateForCurrency(ctx, fromCurrency, toCurrency)
	if err != nil {
		logger.Log.Errorw("failed to get exchange rate", "from", fromCurrency, "to", toCurrency, "error", err)
		return decimal.Zero, err
	}

	if err := s.cacheRepo.SetExchangeRateForCurrency(ctx, fromCurrency, toCurrency, rate); err != nil {
		logger.Log.Errorw("failed to cache exchange rate", "from", fromCurrency, "to", toCurrency, "rate", rate, "error", err)
	}
	return rate, nil
}
