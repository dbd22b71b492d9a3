// Package utils contains conversion helpers shared across services.
package utils

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/goodnatureofminers/pocketledger/pkg/safe"
)

// ToBaseUnits converts a coin-denominated value to base units.
// Negative, NaN, and out-of-range values are rejected.
func ToBaseUnits(coins float64) (uint64, error) {
	amt, err := btcutil.NewAmount(coins)
	if err != nil {
		return 0, err
	}
	return safe.Uint64(amt)
}

// FromBaseUnits converts base units back to a coin-denominated value.
func FromBaseUnits(units uint64) float64 {
	return btcutil.Amount(units).ToBTC()
}
