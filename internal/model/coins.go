package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

// Coins is a whole number of loyalty coins.
type Coins int64

// MaxCoins keeps balances exactly representable as JSON numbers in browsers.
const MaxCoins Coins = 1<<53 - 1

func ParseCoins(raw json.Number) (Coins, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: amount is required", serviceerrs.ErrInvalidAmount)
	}

	n, err := strconv.ParseInt(raw.String(), 10, 64)
	if err != nil {
		f, fErr := raw.Float64()
		if fErr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: amount must be a whole number, got %q",
				serviceerrs.ErrInvalidAmount, raw)
		}
		if math.Abs(f) > float64(MaxCoins) {
			return 0, fmt.Errorf("%w: amount overflow", serviceerrs.ErrInvalidAmount)
		}
		n = int64(f)
	}

	return NewCoins(n)
}

func NewCoins(n int64) (Coins, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive, got %d",
			serviceerrs.ErrInvalidAmount, n)
	}
	if Coins(n) > MaxCoins {
		return 0, fmt.Errorf("%w: amount overflow", serviceerrs.ErrInvalidAmount)
	}
	return Coins(n), nil
}

// Add returns c+other or ErrInvalidAmount when the sum leaves the safe range.
func (c Coins) Add(other Coins) (Coins, error) {
	if other > MaxCoins-c {
		return 0, fmt.Errorf("%w: balance overflow", serviceerrs.ErrInvalidAmount)
	}
	return c + other, nil
}

func (c Coins) Int64() int64 {
	return int64(c)
}
