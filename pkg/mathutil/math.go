// Package mathutil converts amounts between their on-chain integer units and
// their human readable decimal form.
package mathutil

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// TrxPrecision is the number of decimals of TRX.
	TrxPrecision = 6
	// SunPerTrx is the number of SUN in 1 TRX.
	SunPerTrx = int64(1000000)

	maxTokenPrecision = 77
)

var (
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a valid decimal number")
	// ErrNegativeAmount ...
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrTooManyDecimals ...
	ErrTooManyDecimals = errors.New("amount has more decimals than allowed")
	// ErrAmountOverflow ...
	ErrAmountOverflow = errors.New("amount is too big")
	// ErrInvalidPrecision ...
	ErrInvalidPrecision = errors.New("precision must be in range [0, 77]")
)

// SunToTrx returns the amount in SUN as TRX.
func SunToTrx(sun int64) decimal.Decimal {
	return decimal.New(sun, -TrxPrecision)
}

// FormatTrx returns the amount in SUN as a TRX string with all 6 decimals.
func FormatTrx(sun int64) string {
	return SunToTrx(sun).StringFixed(TrxPrecision)
}

// TrxToSun parses a TRX amount like "1.5" and returns it in SUN.
func TrxToSun(trx string) (int64, error) {
	units, err := ToBaseUnits(trx, TrxPrecision)
	if err != nil {
		return 0, err
	}
	if !units.IsInt64() {
		return 0, ErrAmountOverflow
	}
	return units.Int64(), nil
}

// ToBaseUnits parses a decimal amount of a token with the given precision,
// like a TRC20 with 18 decimals, and returns it in base units.
func ToBaseUnits(amount string, precision int32) (*big.Int, error) {
	if precision < 0 || precision > maxTokenPrecision {
		return nil, ErrInvalidPrecision
	}
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}

	units := d.Shift(precision)
	if !units.Equal(units.Truncate(0)) {
		return nil, ErrTooManyDecimals
	}
	return units.BigInt(), nil
}

// FromBaseUnits returns the amount in base units of a token with the given
// precision as a decimal number.
func FromBaseUnits(units *big.Int, precision int32) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -precision)
}
