package main

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const monthKey = "2006-01"

type MerchantSpend struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
}

// SpendingSummary is recomputed from scratch on every run. All amounts are
// positive magnitudes of spend.
type SpendingSummary struct {
	TotalSpend          float64            `json:"total_spend"`
	BankSpend           float64            `json:"bank_spend"`
	CreditCardSpend     float64            `json:"credit_card_spend"`
	SpendingByCategory  map[string]float64 `json:"spending_by_category"`
	MonthlySpending     map[string]float64 `json:"monthly_spending"`
	CurrentMonthSpend   float64            `json:"current_month_spend"`
	LastMonthSpend      float64            `json:"last_month_spend"`
	MonthOverMonthPct   float64            `json:"month_over_month_change_pct"`
	MaxSpendingCategory string             `json:"max_spending_category,omitempty"`
	AverageTransaction  float64            `json:"average_transaction_amount"`
	TopMerchants        []MerchantSpend    `json:"top_merchants_by_spend"`
}

func emptySummary() SpendingSummary {
	return SpendingSummary{
		SpendingByCategory: map[string]float64{},
		MonthlySpending:    map[string]float64{},
		TopMerchants:       []MerchantSpend{},
	}
}

// topCategories returns up to n categories ordered by spend.
func (s SpendingSummary) topCategories(n int) []string {
	ranked := rank(s.SpendingByCategory)
	out := make([]string, 0, n)
	for i := 0; i < len(ranked) && i < n; i++ {
		out = append(out, ranked[i].Merchant)
	}
	return out
}

// spendRow is one entry of the unified cross-source view.
type spendRow struct {
	source   Source
	date     time.Time
	party    string
	category string
	amount   decimal.Decimal
}

type aggregator struct {
	cat  *categorizer
	topN int
	now  func() time.Time
}

func newAggregator(cat *categorizer, topN int) *aggregator {
	if topN <= 0 {
		topN = 5
	}
	return &aggregator{cat: cat, topN: topN, now: time.Now}
}

// unify normalizes both sources and keeps the spend rows, labelled.
func (a *aggregator) unify(bank, card []Txn) []spendRow {
	var rows []spendRow
	for _, src := range [][]Txn{normalize(bank), normalize(card)} {
		for _, t := range src {
			if !t.isSpend() {
				continue
			}
			rows = append(rows, spendRow{
				source:   t.Source,
				date:     t.Date,
				party:    t.Party,
				category: a.cat.category(t),
				amount:   t.Signed.Abs(),
			})
		}
	}
	return rows
}

func (a *aggregator) aggregate(bank, card []Txn) SpendingSummary {
	s := emptySummary()
	rows := a.unify(bank, card)
	if len(rows) == 0 {
		return s
	}

	var bankSum, cardSum decimal.Decimal
	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)
	byMerchant := make(map[string]decimal.Decimal)
	for _, r := range rows {
		if r.source == sourceCard {
			cardSum = cardSum.Add(r.amount)
		} else {
			bankSum = bankSum.Add(r.amount)
		}
		byCategory[r.category] = byCategory[r.category].Add(r.amount)
		if !r.date.IsZero() {
			m := r.date.Format(monthKey)
			byMonth[m] = byMonth[m].Add(r.amount)
		}
		if len(r.party) > 0 {
			byMerchant[r.party] = byMerchant[r.party].Add(r.amount)
		}
	}

	total := bankSum.Add(cardSum)
	s.BankSpend = bankSum.InexactFloat64()
	s.CreditCardSpend = cardSum.InexactFloat64()
	s.TotalSpend = total.InexactFloat64()
	s.SpendingByCategory = toFloats(byCategory)
	s.MonthlySpending = toFloats(byMonth)

	now := a.now()
	cur := byMonth[now.Format(monthKey)]
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := byMonth[first.AddDate(0, -1, 0).Format(monthKey)]
	s.CurrentMonthSpend = cur.InexactFloat64()
	s.LastMonthSpend = last.InexactFloat64()
	if !last.IsZero() {
		s.MonthOverMonthPct = cur.Sub(last).Div(last).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	if cats := rank(s.SpendingByCategory); len(cats) > 0 {
		s.MaxSpendingCategory = cats[0].Merchant
	}
	s.AverageTransaction = total.Div(decimal.NewFromInt(int64(len(rows)))).InexactFloat64()

	merchants := rank(toFloats(byMerchant))
	if len(merchants) > a.topN {
		merchants = merchants[:a.topN]
	}
	s.TopMerchants = merchants
	return s
}

func toFloats(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v.InexactFloat64()
	}
	return out
}

// rank orders m by value descending, breaking ties by key.
func rank(m map[string]float64) []MerchantSpend {
	out := make([]MerchantSpend, 0, len(m))
	for k, v := range m {
		out = append(out, MerchantSpend{Merchant: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Merchant < out[j].Merchant
	})
	return out
}

// monthlyCardSpend averages the per-month card spend over the months that
// saw any.
func monthlyCardSpend(card []Txn) float64 {
	byMonth := make(map[string]decimal.Decimal)
	for _, t := range normalize(card) {
		if !t.isSpend() || t.Date.IsZero() {
			continue
		}
		m := t.Date.Format(monthKey)
		byMonth[m] = byMonth[m].Add(t.Signed.Abs())
	}
	if len(byMonth) == 0 {
		return 0
	}
	var sum decimal.Decimal
	for _, v := range byMonth {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(byMonth)))).InexactFloat64()
}
