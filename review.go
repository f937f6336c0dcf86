package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/manishrjain/keys"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type unmatched struct {
	party string
	spend decimal.Decimal
	count int
}

// uncategorizedParties lists the parties whose spend the aggregator cannot
// label, biggest spend first.
func uncategorizedParties(cat *categorizer, bank, card []Txn) []unmatched {
	byParty := make(map[string]*unmatched)
	for _, src := range [][]Txn{normalize(bank), normalize(card)} {
		for _, t := range src {
			if !t.isSpend() || len(t.Party) == 0 || cat.category(t) != categoryUncategorized {
				continue
			}
			u, ok := byParty[t.Party]
			if !ok {
				u = &unmatched{party: t.Party}
				byParty[t.Party] = u
			}
			u.spend = u.spend.Add(t.Signed.Abs())
			u.count++
		}
	}
	out := make([]unmatched, 0, len(byParty))
	for _, u := range byParty {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].spend.Cmp(out[j].spend); c != 0 {
			return c > 0
		}
		return out[i].party < out[j].party
	})
	return out
}

// knownCategories are the labels offered during review.
func knownCategories(cat *categorizer, cm CategoryMap) []string {
	seen := make(map[string]bool)
	for _, r := range cat.rules {
		seen[r.Category] = true
	}
	for _, c := range cm {
		seen[c] = true
	}
	return sortedSet(seen)
}

// appendCategoryMappings adds Receiver,Category rows to the map file,
// writing the header first if the file is new.
func appendCategoryMappings(fpath string, picks map[string]string) error {
	if len(picks) == 0 {
		return nil
	}
	_, statErr := os.Stat(fpath)
	f, err := os.OpenFile(fpath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", fpath)
	}
	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		w.Write([]string{"Receiver", "Category"})
	}
	parties := make([]string, 0, len(picks))
	for p := range picks {
		parties = append(parties, p)
	}
	sort.Strings(parties)
	for _, p := range parties {
		w.Write([]string{p, picks[p]})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrapf(err, "while writing %s", fpath)
	}
	return f.Close()
}

func setDefaultMappings(ks *keys.Shortcuts) {
	ks.BestEffortAssign('b', ".back", "default")
	ks.BestEffortAssign('q', ".quit", "default")
	ks.BestEffortAssign('s', ".skip", "default")
}

func printUnmatched(u unmatched, idx, total int) {
	color.New(color.BgBlue, color.FgWhite).Printf(" [%2d of %2d] ", idx+1, total)
	color.New(color.BgWhite, color.FgBlack).Printf(" %-40s", u.party)
	color.New(color.BgYellow, color.FgBlack).Printf(" %3d txns ", u.count)
	color.New(color.BgRed, color.FgWhite).Printf(" %9s ", u.spend.StringFixed(2))
	fmt.Println()
}

// review walks the uncategorized parties and lets the user assign each a
// category with a single key press. Picks are appended to the receiver
// category file so the next run maps them directly.
func (a *app) review(short *keys.Shortcuts) error {
	cm := a.load.categoryMap()
	bank := a.load.bankTransactions(cm)
	card := a.load.cardTransactions(cm)
	todo := uncategorizedParties(a.cat, bank, card)
	if len(todo) == 0 {
		a.st.success("Every transaction already has a category")
		return nil
	}

	setDefaultMappings(short)
	for _, c := range knownCategories(a.cat, cm) {
		short.AutoAssign(c, "default")
	}

	picks := make(map[string]string)
	r := make([]byte, 1)
LOOP:
	for i := 0; i < len(todo); {
		clear()
		printUnmatched(todo[i], i, len(todo))
		if c, ok := picks[todo[i].party]; ok {
			color.New(color.BgGreen, color.FgBlack).Printf(" [TO] %-20s ", c)
			fmt.Println()
		}
		fmt.Println()
		short.Print("default", false)

		_, err := os.Stdin.Read(r)
		checkf(err, "Unable to read stdin")
		opt, has := short.MapsTo(rune(r[0]), "default")
		if !has {
			continue
		}
		switch opt {
		case ".back":
			if i > 0 {
				i--
			}
		case ".skip":
			i++
		case ".quit":
			break LOOP
		default:
			picks[todo[i].party] = opt
			i++
		}
	}

	fpath := a.cfg.dataPath(a.cfg.Files.ReceiverCategories)
	if err := appendCategoryMappings(fpath, picks); err != nil {
		return err
	}
	a.st.success("%d receivers categorized and saved to %s", len(picks), fpath)
	return nil
}
