package response

import (
	"cleaning_payments/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type QuoteResponse struct {
	entities.RateQuote
	DurationMinutes int    `json:"duration_minutes"`
	AmountMinor     int64  `json:"amount_minor"`
	Amount          string `json:"amount"`
}

func FromQuote(q entities.RateQuote, durationMins int, amountMinor int64) QuoteResponse {
	return QuoteResponse{RateQuote: q, DurationMinutes: durationMins, AmountMinor: amountMinor, Amount: formatMinor(amountMinor)}
}

func formatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
