package facades

import (
	"context"
	"errors"
	"fmt"

	pb "github.com/sbilibin2017/proto-exchange/exchange"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
)

// ErrInvalidRate is returned when the exchanger answers with a non-positive rate.
var ErrInvalidRate = errors.New("exchanger returned a non-positive rate")

// ExchangeRatesGRPCFacade reads exchange rates from the exchanger service over gRPC.
type ExchangeRatesGRPCFacade struct {
	client pb.ExchangeServiceClient
}

// NewExchangeRatesGRPCFacade creates a new facade with a gRPC client.
func NewExchangeRatesGRPCFacade(client pb.ExchangeServiceClient) *ExchangeRatesGRPCFacade {
	return &ExchangeRatesGRPCFacade{client: client}
}

// GetExchangeRateForCurrency fetches the rate converting fromCurrency into toCurrency.
func (f *ExchangeRatesGRPCFacade) GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	req := &pb.CurrencyRequest{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
	}

	resp, err := f.client.GetExchangeRateForCurrency(ctx, req)
	if err != nil {
		logger.Log.Errorw("failed to fetch exchange rate for currency via gRPC",
			"from", fromCurrency, "to", toCurrency, "error", err)
		return decimal.Zero, err
	}

	rate := decimal.NewFromFloat32(resp.Rate)
	if !rate.IsPositive() {
		logger.Log.Errorw("exchanger returned invalid rate", "from", fromCurrency, "to", toCurrency, "rate", resp.Rate)
		return decimal.Zero, fmt.Errorf("%w: %s -> %s", ErrInvalidRate, fromCurrency, toCurrency)
	}
	return rate, nil
}
