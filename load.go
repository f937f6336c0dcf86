package main

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// loader reads every input table named by the config. None of its methods
// fail: a missing or broken file is logged and yields an empty result.
type loader struct {
	cfg *config
	st  status
}

func newLoader(cfg *config, log zerolog.Logger) *loader {
	return &loader{cfg: cfg, st: status{log: log.With().Str("component", "loader").Logger()}}
}

func (l *loader) open(name string) *table {
	return l.openPath(l.cfg.dataPath(name))
}

func (l *loader) openPath(fpath string) *table {
	t, err := readTable(fpath)
	if err != nil {
		l.st.fail(err, "Unable to load %s", fpath)
		return nil
	}
	l.st.progress("Loaded %d rows from %s", len(t.rows), fpath)
	return t
}

var amountColumns = []string{"Amount (USD)", "Amount ($)", "Amount"}

func (l *loader) transactions(name string, src Source, partyCol string, cm CategoryMap) []Txn {
	t := l.open(name)
	if t == nil {
		return nil
	}
	amountCol, ok := t.column(amountColumns...)
	if !ok {
		l.st.warn("%s has no amount column", name)
	}
	hasCategory := t.has("Category")

	txns := make([]Txn, 0, len(t.rows))
	for _, row := range t.rows {
		txn := Txn{Source: src, Party: t.get(row, partyCol)}
		if ok {
			txn.Amount, txn.HasAmount = parseAmount(t.get(row, amountCol))
		}
		txn.Date, _ = parseDate(t.get(row, "Date"))
		if src == sourceBank {
			txn.Type = t.get(row, "Transaction Type")
		}
		if hasCategory {
			txn.Category = t.get(row, "Category")
		}
		txns = append(txns, txn)
	}
	resolveCategories(txns, hasCategory, cm)
	return txns
}

func (l *loader) bankTransactions(cm CategoryMap) []Txn {
	return l.transactions(l.cfg.Files.Transactions, sourceBank, "Receiver", cm)
}

func (l *loader) cardTransactions(cm CategoryMap) []Txn {
	return l.transactions(l.cfg.Files.CreditCardTransactions, sourceCard, "Merchant", cm)
}

func (l *loader) categoryMap() CategoryMap {
	cm := make(CategoryMap)
	t := l.open(l.cfg.Files.ReceiverCategories)
	if t == nil {
		return cm
	}
	for _, row := range t.rows {
		recv, cat := t.get(row, "Receiver"), t.get(row, "Category")
		if len(recv) > 0 && len(cat) > 0 {
			cm[recv] = cat
		}
	}
	return cm
}

var kycColumns = map[string]bool{
	"Age": true, "Annual Income (USD)": true, "Employment Status": true, "Credit Score": true,
	"City": true, "State": true, "Interests": true, "Hobbies": true,
}

// kyc returns the first profile row. The bool is false when there is none.
func (l *loader) kyc() (KYC, bool) {
	t := l.open(l.cfg.Files.KYC)
	if t == nil || len(t.rows) == 0 {
		return KYC{}, false
	}
	row := t.rows[0]
	k := KYC{
		EmploymentStatus: t.get(row, "Employment Status"),
		City:             t.get(row, "City"),
		State:            t.get(row, "State"),
		Interests:        t.get(row, "Interests"),
		Hobbies:          t.get(row, "Hobbies"),
	}
	if f, ok := parseNumber(t.get(row, "Age")); ok {
		k.Age = int(f)
	}
	if f, ok := parseNumber(t.get(row, "Annual Income (USD)")); ok {
		k.AnnualIncome = f
	}
	if f, ok := parseNumber(t.get(row, "Credit Score")); ok {
		k.CreditScore = int(f)
	}
	for _, h := range t.header {
		if kycColumns[h] {
			continue
		}
		if k.Extra == nil {
			k.Extra = make(map[string]string)
		}
		k.Extra[h] = t.get(row, h)
	}
	return k, true
}

func (l *loader) posts() []string {
	return l.postsAt(l.cfg.dataPath(l.cfg.Files.SocialMedia))
}

// postsAt reads the Post Content column of any posts file.
func (l *loader) postsAt(fpath string) []string {
	t := l.openPath(fpath)
	if t == nil {
		return nil
	}
	var out []string
	for _, row := range t.rows {
		if p := t.get(row, "Post Content"); len(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (l *loader) cardCatalog() []CardProduct {
	t := l.open(l.cfg.Files.CreditCards)
	if t == nil {
		return nil
	}
	out := make([]CardProduct, 0, len(t.rows))
	for _, row := range t.rows {
		p := CardProduct{
			Name:    t.get(row, "Credit Card Name"),
			Rewards: t.get(row, "Rewards & Cashback"),
			Perks:   t.get(row, "Other Perks"),
		}
		p.AnnualFee, _ = parseNumber(t.get(row, "Annual Fee (USD)"))
		p.CreditLimit, _ = parseNumber(t.get(row, "Credit Limit (USD)"))
		p.InterestRate, _ = parseNumber(t.get(row, "Interest Rate (%)"))
		for _, b := range strings.Split(t.get(row, "Benefits"), ",") {
			if b = strings.TrimSpace(b); len(b) > 0 {
				p.Benefits = append(p.Benefits, b)
			}
		}
		out = append(out, p)
	}
	return out
}

func (l *loader) loanCatalog() []record {
	t := l.open(l.cfg.Files.Loans)
	if t == nil {
		return nil
	}
	return t.records("Interest Rate (%)", "Loan Amount (USD)", "Monthly EMI (USD)")
}

func (l *loader) ownedCards() []OwnedCard {
	t := l.open(l.cfg.Files.CreditCardList)
	if t == nil {
		return nil
	}
	nameCol, _ := t.column("Card Name", "Credit Card Name", "Card ID")
	out := make([]OwnedCard, 0, len(t.rows))
	for i, row := range t.rows {
		c := OwnedCard{Name: t.get(row, nameCol)}
		if len(c.Name) == 0 {
			c.Name = "card-" + strconv.Itoa(i+1)
		}
		c.CreditLimit, _ = parseNumber(t.get(row, "Credit Limit (USD)"))
		c.Balance, _ = parseNumber(t.get(row, "Current Balance (USD)"))
		out = append(out, c)
	}
	return out
}

func (l *loader) emails() []record {
	t := l.open(l.cfg.Files.Emails)
	if t == nil {
		return nil
	}
	return t.records()
}
