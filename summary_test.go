package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedAggregator(now time.Time, topN int) *aggregator {
	a := newAggregator(newCategorizer(nil), topN)
	a.now = func() time.Time { return now }
	return a
}

func TestAggregateEndToEnd(t *testing.T) {
	now := day(2024, 3, 15)
	bank := []Txn{bankTxn(day(2024, 3, 5), 50, "Debit", "Starbucks")}
	card := []Txn{cardTxn(day(2024, 2, 10), 30, "Amazon")}

	s := fixedAggregator(now, 5).aggregate(bank, card)
	assert.Equal(t, 80.0, s.TotalSpend)
	assert.Equal(t, 50.0, s.BankSpend)
	assert.Equal(t, 30.0, s.CreditCardSpend)
	assert.Equal(t, 50.0, s.CurrentMonthSpend)
	assert.Equal(t, 30.0, s.LastMonthSpend)
	assert.InDelta(t, 66.67, s.MonthOverMonthPct, 0.01)
	assert.Equal(t, "dining", s.MaxSpendingCategory)
	assert.Equal(t, map[string]float64{"dining": 50, "shopping": 30}, s.SpendingByCategory)
	assert.Equal(t, map[string]float64{"2024-03": 50, "2024-02": 30}, s.MonthlySpending)
	assert.Equal(t, 40.0, s.AverageTransaction)
	assert.Equal(t, []MerchantSpend{{"Starbucks", 50}, {"Amazon", 30}}, s.TopMerchants)
}

func TestAggregateEmpty(t *testing.T) {
	s := fixedAggregator(day(2024, 3, 15), 5).aggregate(nil, nil)
	assert.Zero(t, s.TotalSpend)
	assert.Equal(t, s.BankSpend+s.CreditCardSpend, s.TotalSpend)
	assert.NotNil(t, s.SpendingByCategory)
	assert.NotNil(t, s.MonthlySpending)
	assert.NotNil(t, s.TopMerchants)
	assert.Empty(t, s.MaxSpendingCategory)
	assert.Zero(t, s.AverageTransaction)
}

func TestAggregateMonthOverMonth(t *testing.T) {
	t.Run("zeroWhenNoLastMonth", func(t *testing.T) {
		bank := []Txn{bankTxn(day(2024, 3, 1), 500, "Debit", "Rent")}
		s := fixedAggregator(day(2024, 3, 20), 5).aggregate(bank, nil)
		assert.Equal(t, 500.0, s.CurrentMonthSpend)
		assert.Zero(t, s.LastMonthSpend)
		assert.Zero(t, s.MonthOverMonthPct)
	})

	t.Run("endOfMonth", func(t *testing.T) {
		card := []Txn{cardTxn(day(2024, 2, 29), 20, "x"), cardTxn(day(2024, 3, 31), 10, "y")}
		s := fixedAggregator(day(2024, 3, 31), 5).aggregate(nil, card)
		assert.Equal(t, 20.0, s.LastMonthSpend)
		assert.Equal(t, -50.0, s.MonthOverMonthPct)
	})

	t.Run("january", func(t *testing.T) {
		card := []Txn{cardTxn(day(2023, 12, 24), 40, "x")}
		s := fixedAggregator(day(2024, 1, 2), 5).aggregate(nil, card)
		assert.Equal(t, 40.0, s.LastMonthSpend)
		assert.Equal(t, -100.0, s.MonthOverMonthPct)
	})
}

func TestAggregateInvariants(t *testing.T) {
	now := day(2024, 3, 15)
	bank := []Txn{
		bankTxn(day(2024, 3, 1), 12.34, "Debit", "Starbucks"),
		bankTxn(day(2024, 3, 2), 2000, "Credit", "Employer"),
		bankTxn(time.Time{}, 99.99, "Debit", "Walmart"),
		bankTxn(day(2024, 1, 3), 45.5, "Debit", "Mystery Shop"),
		{Source: sourceBank, Type: "Debit", Party: "Broken", Category: categoryOther},
	}
	card := []Txn{
		cardTxn(day(2024, 2, 4), 7.25, "Spotify"),
		cardTxn(day(2024, 2, 5), 120, "Hilton Hotel"),
		cardTxn(day(2024, 3, 6), 60, "Amazon"),
		cardTxn(day(2024, 3, 7), 60, "Airbnb"),
		cardTxn(day(2024, 3, 8), 3, "Gym"),
	}
	card[4].Category, card[4].HasCategory = "Health", true

	s := fixedAggregator(now, 3).aggregate(bank, card)

	t.Run("totalIsSumOfSources", func(t *testing.T) {
		assert.InDelta(t, s.BankSpend+s.CreditCardSpend, s.TotalSpend, 1e-9)
		assert.InDelta(t, 157.83, s.BankSpend, 1e-9)
		assert.InDelta(t, 250.25, s.CreditCardSpend, 1e-9)
	})

	t.Run("categoriesSumToTotal", func(t *testing.T) {
		var sum float64
		for cat, v := range s.SpendingByCategory {
			assert.GreaterOrEqual(t, v, 0.0, cat)
			sum += v
		}
		assert.InDelta(t, s.TotalSpend, sum, 1e-9)
		assert.Contains(t, s.SpendingByCategory, categoryUncategorized)
		assert.Equal(t, 3.0, s.SpendingByCategory["Health"])
	})

	t.Run("undatedRowsSkipMonthly", func(t *testing.T) {
		var sum float64
		for _, v := range s.MonthlySpending {
			sum += v
		}
		assert.InDelta(t, s.TotalSpend-99.99, sum, 1e-9)
	})

	t.Run("topMerchants", func(t *testing.T) {
		require.Len(t, s.TopMerchants, 3)
		assert.Equal(t, []MerchantSpend{{"Hilton Hotel", 120}, {"Walmart", 99.99}, {"Airbnb", 60}}, s.TopMerchants)
		seen := map[string]bool{}
		for i, m := range s.TopMerchants {
			assert.False(t, seen[m.Merchant])
			seen[m.Merchant] = true
			if i > 0 {
				assert.GreaterOrEqual(t, s.TopMerchants[i-1].Amount, m.Amount)
			}
		}
	})

	t.Run("averageOverSpendRows", func(t *testing.T) {
		assert.InDelta(t, s.TotalSpend/8, s.AverageTransaction, 1e-9)
	})

	t.Run("max", func(t *testing.T) {
		assert.Equal(t, "travel", s.MaxSpendingCategory)
	})
}

func TestMonthlyCardSpend(t *testing.T) {
	card := []Txn{
		cardTxn(day(2024, 1, 1), 100, "a"),
		cardTxn(day(2024, 1, 20), 50, "b"),
		cardTxn(day(2024, 2, 1), 50, "c"),
		cardTxn(time.Time{}, 999, "d"),
	}
	assert.Equal(t, 100.0, monthlyCardSpend(card))
	assert.Zero(t, monthlyCardSpend(nil))
}
