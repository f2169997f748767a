package cart

import "github.com/shopspring/decimal"

// Catalog prices travel in a raw minor-unit convention inherited from the
// seed data: display price = raw price / PriceDivisor. The divisor is policy,
// not a currency rate, and DisplayPrice is the only place it is applied.
const (
	DefaultPriceDivisor = 30
	DefaultDeliveryFee  = 12
)

type Pricing struct {
	PriceDivisor int64
	DeliveryFee  decimal.Decimal
	TaxRate      decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		PriceDivisor: DefaultPriceDivisor,
		DeliveryFee:  decimal.NewFromInt(DefaultDeliveryFee),
		TaxRate:      decimal.NewFromFloat(0.05),
	}
}

// DisplayPrice converts a raw catalog price into the displayed and payable
// amount. Callers must not divide again.
func (p Pricing) DisplayPrice(raw int64) decimal.Decimal {
	return decimal.NewFromInt(raw).Div(decimal.NewFromInt(p.PriceDivisor))
}

func (p Pricing) LineTotal(it LineItem) decimal.Decimal {
	return p.DisplayPrice(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Summary is the payable breakdown for a checkout. Subtotal is kept
// unrounded so repeated recomputation cannot compound rounding error,
// rounding happens at the serialization edge.
type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Total       decimal.Decimal `json:"total"`
}

// ComputeSummary derives the checkout totals from the aggregate. Pure and
// safe to call repeatedly, the summary is never cached. An empty cart is not
// eligible for checkout: a fee-only total would be misleading.
func (p Pricing) ComputeSummary(a *Aggregate) (Summary, error) {
	if a.Len() == 0 {
		return Summary{}, ErrEmptyCart
	}

	subtotal := decimal.Zero
	for _, it := range a.Items() {
		subtotal = subtotal.Add(p.LineTotal(it))
	}

	tax := subtotal.Mul(p.TaxRate).Round(2)
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: p.DeliveryFee,
		TaxAmount:   tax,
		Total:       subtotal.Add(p.DeliveryFee).Add(tax),
	}, nil
}
