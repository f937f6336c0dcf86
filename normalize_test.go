package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	now := day(2024, 3, 1)
	in := []Txn{
		bankTxn(now, 50, "Debit", "a"),
		bankTxn(now, 40, "debit card purchase", "b"),
		bankTxn(now, 100, "Credit", "c"),
		bankTxn(now, -20, "DEBIT", "d"),
		cardTxn(now, 30, "e"),
		cardTxn(now, -15, "f"),
		{Source: sourceCard, Type: "Refund", Amount: decimal.NewFromInt(5), HasAmount: true},
		{Source: sourceBank, Type: "Debit"},
	}
	out := normalize(in)
	require.Len(t, out, len(in))

	want := []string{"-50", "-40", "100", "-20", "-30", "-15", "-5", "0"}
	for i, w := range want {
		assert.Equal(t, w, out[i].Signed.String(), "row %d", i)
	}

	t.Run("inputUntouched", func(t *testing.T) {
		for _, txn := range in {
			assert.True(t, txn.Signed.IsZero())
		}
	})

	t.Run("debitsNeverPositive", func(t *testing.T) {
		sum := decimal.Zero
		for _, txn := range out {
			if txn.Source == sourceBank && txn.Type != "Credit" {
				sum = sum.Add(txn.Signed)
			}
			if txn.Source == sourceCard {
				assert.False(t, txn.Signed.IsPositive())
			}
		}
		assert.False(t, sum.IsPositive())
	})

	t.Run("missingAmountIsNotSpend", func(t *testing.T) {
		assert.False(t, out[7].isSpend())
		assert.True(t, out[0].isSpend())
		assert.False(t, out[2].isSpend())
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, normalize(nil))
	})
}
