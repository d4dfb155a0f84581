package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a marketplace offer that at most one farm can fill
type Listing struct {
	ID        string          `json:"id"`
	Item      string          `json:"item" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	FilledBy  string          `json:"filledBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Filled reports whether another trade already took the listing
func (l Listing) Filled() bool {
	return l.FilledBy != ""
}
