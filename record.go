package main

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source tags where a transaction came from.
type Source string

const (
	sourceBank Source = "bank"
	sourceCard Source = "credit_card"

	categoryOther         = "Other"
	categoryUncategorized = "uncategorized"
)

// Txn is a single bank or credit card transaction. Bank rows carry Type
// (Debit/Credit), card rows never do. Party holds the Receiver for bank rows
// and the Merchant for card rows.
type Txn struct {
	Source      Source
	Date        time.Time // zero when the cell could not be parsed
	Amount      decimal.Decimal
	HasAmount   bool
	Type        string
	Party       string
	Category    string
	HasCategory bool
	Signed      decimal.Decimal
}

func (t Txn) isSpend() bool {
	return t.HasAmount && t.Signed.IsNegative()
}

// CategoryMap maps an exact receiver or merchant name to a category.
type CategoryMap map[string]string

// KYC is the single profile row of the user.
type KYC struct {
	Age              int               `json:"Age"`
	AnnualIncome     float64           `json:"Annual Income (USD)"`
	EmploymentStatus string            `json:"Employment Status"`
	CreditScore      int               `json:"Credit Score"`
	City             string            `json:"City"`
	State            string            `json:"State"`
	Interests        string            `json:"Interests"`
	Hobbies          string            `json:"Hobbies"`
	Extra            map[string]string `json:"extra,omitempty"`
}

func (k KYC) location() string {
	switch {
	case k.City == "":
		return k.State
	case k.State == "":
		return k.City
	}
	return k.City + ", " + k.State
}

// CardProduct is one entry of the credit card catalog.
type CardProduct struct {
	Name         string   `json:"Credit Card Name"`
	AnnualFee    float64  `json:"Annual Fee (USD)"`
	CreditLimit  float64  `json:"Credit Limit (USD)"`
	InterestRate float64  `json:"Interest Rate (%)"`
	Benefits     []string `json:"Benefits"`
	Rewards      string   `json:"Rewards & Cashback,omitempty"`
	Perks        string   `json:"Other Perks,omitempty"`
}

// OwnedCard is a card the user already holds.
type OwnedCard struct {
	Name        string  `json:"name"`
	CreditLimit float64 `json:"credit_limit"`
	Balance     float64 `json:"current_balance"`
}

// record is a catalog or email row whose columns are not fixed. Numeric
// columns hold float64 (or nil when the cell was not a number), everything
// else holds the raw string.
type record map[string]any
