package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDisplayPrice(t *testing.T) {
	p := DefaultPricing()
	require.Equal(t, "10", p.DisplayPrice(300).String())
	require.Equal(t, "5", p.DisplayPrice(150).String())
}

func TestComputeSummary(t *testing.T) {
	p := DefaultPricing()
	a := New(p)
	require.NoError(t, a.AddItem(Candidate{ItemID: 1, RestaurantID: 7, UnitPrice: 300}, 2))
	require.NoError(t, a.AddItem(Candidate{ItemID: 2, RestaurantID: 7, UnitPrice: 150}, 1))

	s, err := p.ComputeSummary(a)
	require.NoError(t, err)
	require.Equal(t, "25", s.Subtotal.String())
	require.Equal(t, "12", s.DeliveryFee.String())
	require.Equal(t, "1.25", s.TaxAmount.String())
	require.Equal(t, "38.25", s.Total.String())
}

func TestComputeSummaryRoundsTaxOnly(t *testing.T) {
	p := DefaultPricing()
	a := New(p)
	// 100/30 = 3.333..., subtotal stays unrounded
	require.NoError(t, a.AddItem(Candidate{ItemID: 3, RestaurantID: 7, UnitPrice: 100}, 1))

	s, err := p.ComputeSummary(a)
	require.NoError(t, err)
	require.True(t, s.TaxAmount.Equal(decimal.RequireFromString("0.17")))
	require.True(t, s.Total.Equal(s.Subtotal.Add(s.DeliveryFee).Add(s.TaxAmount)))
}

func TestComputeSummaryEmptyCart(t *testing.T) {
	p := DefaultPricing()
	_, err := p.ComputeSummary(New(p))
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestComputeSummaryIsPure(t *testing.T) {
	p := DefaultPricing()
	a := New(p)
	require.NoError(t, a.AddItem(Candidate{ItemID: 1, RestaurantID: 7, UnitPrice: 300}, 2))

	first, err := p.ComputeSummary(a)
	require.NoError(t, err)
	second, err := p.ComputeSummary(a)
	require.NoError(t, err)
	require.True(t, first.Total.Equal(second.Total))
}
