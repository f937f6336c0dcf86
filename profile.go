package main

import (
	"encoding/json"
	"strings"
)

type LocationInsights struct {
	CostOfLiving      string   `json:"cost_of_living"`
	TypicalActivities []string `json:"typical_activities"`
	MarketSegment     string   `json:"market_segment"`
}

type SpendingPatterns struct {
	CommonCategories []string `json:"common_categories"`
	TypicalMerchants []string `json:"typical_merchants"`
	Trend            string   `json:"spending_trend"`
}

// KYCDetails is the profile row plus the insights derived from it.
type KYCDetails struct {
	KYC
	AgeGroup         string           `json:"age_group"`
	LocationInsights LocationInsights `json:"location_insights"`
	SpendingPatterns SpendingPatterns `json:"typical_spending_patterns"`
}

func (d KYCDetails) empty() bool {
	return len(d.AgeGroup) == 0 && len(d.Interests) == 0 && len(d.Hobbies) == 0
}

// MarshalJSON writes {} when no profile row was loaded.
func (d KYCDetails) MarshalJSON() ([]byte, error) {
	if d.empty() {
		return []byte("{}"), nil
	}
	type plain KYCDetails
	return json.Marshal(plain(d))
}

func ageGroup(age int) string {
	switch {
	case age < 25:
		return "young_professional"
	case age < 35:
		return "early_career"
	case age < 45:
		return "mid_career"
	case age < 55:
		return "established_professional"
	}
	return "senior"
}

var highCostCities = []string{"New York", "San Francisco"}

func locationInsights(location string) LocationInsights {
	li := LocationInsights{
		CostOfLiving:      "medium",
		TypicalActivities: []string{"Dining", "Entertainment", "Shopping"},
		MarketSegment:     "suburban",
	}
	for _, city := range highCostCities {
		if strings.Contains(location, city) {
			li.CostOfLiving = "high"
			li.MarketSegment = "urban"
		}
	}
	return li
}

func spendingPatterns(s SpendingSummary) SpendingPatterns {
	sp := SpendingPatterns{
		CommonCategories: s.topCategories(3),
		TypicalMerchants: make([]string, 0, len(s.TopMerchants)),
		Trend:            "stable",
	}
	for _, m := range s.TopMerchants {
		sp.TypicalMerchants = append(sp.TypicalMerchants, m.Merchant)
	}
	switch {
	case s.MonthOverMonthPct > 10:
		sp.Trend = "increasing"
	case s.MonthOverMonthPct < -10:
		sp.Trend = "decreasing"
	}
	return sp
}

func kycDetails(k KYC, s SpendingSummary) KYCDetails {
	return KYCDetails{
		KYC:              k,
		AgeGroup:         ageGroup(k.Age),
		LocationInsights: locationInsights(k.location()),
		SpendingPatterns: spendingPatterns(s),
	}
}

type CreditProfile struct {
	TotalCreditLimit float64 `json:"total_credit_limit"`
	CurrentBalance   float64 `json:"current_balance"`
	UtilizationRate  float64 `json:"utilization_rate"`
	PaymentHistory   string  `json:"payment_history"`
	AvgMonthlySpend  float64 `json:"avg_monthly_spend"`
}

func creditProfile(cards []OwnedCard, card []Txn) CreditProfile {
	cp := CreditProfile{PaymentHistory: "Good"}
	for _, c := range cards {
		cp.TotalCreditLimit += c.CreditLimit
		cp.CurrentBalance += c.Balance
	}
	if cp.TotalCreditLimit > 0 {
		cp.UtilizationRate = cp.CurrentBalance / cp.TotalCreditLimit * 100
	}
	cp.AvgMonthlySpend = monthlyCardSpend(card)
	return cp
}

// Products is the catalog handed to the model.
type Products struct {
	CreditCards []CardProduct `json:"credit_cards"`
	Loans       []record      `json:"loans"`
}

func availableProducts(cards []CardProduct, loans []record) Products {
	p := Products{CreditCards: cards, Loans: loans}
	if p.CreditCards == nil {
		p.CreditCards = []CardProduct{}
	}
	if p.Loans == nil {
		p.Loans = []record{}
	}
	return p
}
