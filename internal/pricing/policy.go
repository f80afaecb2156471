package pricing

import (
	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// SurgeThreshold is the attempt count within the window at which surge applies.
	SurgeThreshold = 3
)

var (
	surgeMultiplier = decimal.RequireFromString("1.10")
	refundRate      = decimal.RequireFromString("0.8")
)

type Quote struct {
	PricePerSeat int64
	SurgeApplied bool
}

// Price maps a reference fare and the recent attempt count to the fare charged
// per seat. The count includes the attempt being priced.
func Price(baseFare int64, recentAttempts int) (Quote, error) {
	if baseFare <= 0 {
		return Quote{}, domain.ErrInvalidFare
	}
	if recentAttempts < SurgeThreshold {
		return Quote{PricePerSeat: baseFare}, nil
	}

	surged := decimal.NewFromInt(baseFare).Mul(surgeMultiplier).Round(0)
	if !surged.IsPositive() || !surged.Equal(decimal.NewFromInt(surged.IntPart())) {
		return Quote{}, domain.ErrInvalidFare
	}
	return Quote{PricePerSeat: surged.IntPart(), SurgeApplied: true}, nil
}

// Total is price * seats, rejecting non-positive and overflowing results.
func Total(pricePerSeat int64, seats int) (int64, error) {
	if pricePerSeat <= 0 || seats <= 0 {
		return 0, domain.ErrInvalidFare
	}
	total := decimal.NewFromInt(pricePerSeat).Mul(decimal.NewFromInt(int64(seats)))
	if !total.Equal(decimal.NewFromInt(total.IntPart())) {
		return 0, domain.ErrInvalidFare
	}
	return total.IntPart(), nil
}

// Refund splits a booking total into the refunded part and the cancellation
// fee. The fee is the exact complement of the rounded refund.
func Refund(totalAmount int64) (refund, deduction int64) {
	refund = decimal.NewFromInt(totalAmount).Mul(refundRate).Round(0).IntPart()
	return refund, totalAmount - refund
}
