package service

import (
	"dryclean-pos/internal/model"
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SelectVolumeDiscount returns the percent of the highest threshold the
// quantity reaches. Tiers never stack.
func SelectVolumeDiscount(tiers []model.VolumeDiscount, quantity int) decimal.Decimal {
	sorted := make([]model.VolumeDiscount, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity > sorted[j].MinQuantity
	})

	for _, tier := range sorted {
		if quantity >= tier.MinQuantity {
			return tier.DiscountPercent
		}
	}
	return decimal.Zero
}

type PriceLine struct {
	UnitPrice             decimal.Decimal
	Quantity              int
	VolumeDiscountPercent decimal.Decimal
}

type PriceInput struct {
	Lines                   []PriceLine
	Tax                     decimal.Decimal
	CustomerDiscountPercent decimal.Decimal
	ManualDiscount          decimal.Decimal
}

type LinePrice struct {
	TotalPrice      decimal.Decimal
	DiscountApplied decimal.Decimal
}

type PriceBreakdown struct {
	Lines                  []LinePrice
	Subtotal               decimal.Decimal
	Tax                    decimal.Decimal
	CustomerDiscountAmount decimal.Decimal
	VolumeDiscountAmount   decimal.Decimal
	ManualDiscount         decimal.Decimal
	LoyaltyDiscountAmount  decimal.Decimal
	Total                  decimal.Decimal
}

// Price computes every money field of an order except the loyalty discount,
// which is applied afterwards against the resulting total.
func Price(in PriceInput) *PriceBreakdown {
	b := &PriceBreakdown{
		Lines:          make([]LinePrice, len(in.Lines)),
		Subtotal:       decimal.Zero,
		Tax:            in.Tax.Round(2),
		ManualDiscount: in.ManualDiscount.Round(2),
	}

	volume := decimal.Zero
	for i, line := range in.Lines {
		total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		discount := total.Mul(line.VolumeDiscountPercent).Div(hundred).Round(2)

		b.Lines[i] = LinePrice{TotalPrice: total, DiscountApplied: discount}
		b.Subtotal = b.Subtotal.Add(total)
		volume = volume.Add(discount)
	}

	b.VolumeDiscountAmount = volume
	b.CustomerDiscountAmount = b.Subtotal.Mul(in.CustomerDiscountPercent).Div(hundred).Round(2)
	b.Total = b.Subtotal.
		Add(b.Tax).
		Sub(b.CustomerDiscountAmount).
		Sub(b.VolumeDiscountAmount).
		Sub(b.ManualDiscount)
	b.LoyaltyDiscountAmount = decimal.Zero

	return b
}

func (b *PriceBreakdown) ApplyLoyalty(discount decimal.Decimal) {
	b.LoyaltyDiscountAmount = discount
	b.Total = b.Total.Sub(discount)
}
