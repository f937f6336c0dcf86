package main

import "strings"

// normalize fills Signed on a copy of txns so that spend is negative.
//
// Bank rows whose type mentions "debit" become -|amount|; other bank rows keep
// their sign. Every credit card row is spend regardless of any type column,
// so its signed amount is always -|amount|.
func normalize(txns []Txn) []Txn {
	out := make([]Txn, len(txns))
	copy(out, txns)
	for i := range out {
		t := &out[i]
		if !t.HasAmount {
			continue
		}
		switch t.Source {
		case sourceCard:
			t.Signed = t.Amount.Abs().Neg()
		default:
			if strings.Contains(strings.ToLower(t.Type), "debit") {
				t.Signed = t.Amount.Abs().Neg()
			} else {
				t.Signed = t.Amount
			}
		}
	}
	return out
}
