package main

import (
	"fmt"
	"math"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// resolveCategories applies the table level categorization. If the table had
// a Category column, blanks become Other. Otherwise the party is looked up in
// cm and misses become Other. HasCategory records whether a real label was
// found, which decides whether the keyword rules get a say later on.
func resolveCategories(txns []Txn, hasColumn bool, cm CategoryMap) {
	for i := range txns {
		t := &txns[i]
		if hasColumn {
			t.Category = strings.TrimSpace(t.Category)
			t.HasCategory = len(t.Category) > 0
		} else if cat, ok := cm[t.Party]; ok && len(cat) > 0 {
			t.Category = cat
			t.HasCategory = true
		}
		if !t.HasCategory {
			t.Category = categoryOther
		}
	}
}

type keywordRule struct {
	Category string
	Keywords []string
}

// Order matters, the first rule with a matching keyword wins.
var defaultKeywordRules = []keywordRule{
	{"dining", []string{"restaurant", "starbucks"}},
	{"shopping", []string{"amazon", "walmart", "costco", "best buy", "nike", "apple"}},
	{"entertainment", []string{"netflix", "spotify"}},
	{"travel", []string{"airline", "hotel", "airbnb", "uber"}},
	{"transportation", []string{"tesla", "supercharger"}},
	{"fitness", []string{"gym"}},
	{"insurance", []string{"insurance"}},
	{"investments", []string{"equity", "mutual funds"}},
	{"electronics", []string{"electronic", "gadgets"}},
}

// This function would use a rules.yaml file in this format:
// dining:
//   - restaurant
//   - starbucks
// shopping:
//   - amazon
// ...
// Categories are tried in file order. A missing file keeps the defaults.
func loadKeywordRules(confDir string) ([]keywordRule, error) {
	fpath := path.Join(confDir, "rules.yaml")
	data, err := os.ReadFile(fpath)
	if os.IsNotExist(err) {
		return defaultKeywordRules, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "while reading %s", fpath)
	}
	return parseKeywordRules(data)
}

func parseKeywordRules(data []byte) ([]keywordRule, error) {
	var ms yaml.MapSlice
	if err := yaml.Unmarshal(data, &ms); err != nil {
		return nil, errors.Wrap(err, "unable to parse rules")
	}
	rules := make([]keywordRule, 0, len(ms))
	for _, item := range ms {
		r := keywordRule{Category: fmt.Sprint(item.Key)}
		list, ok := item.Value.([]interface{})
		if !ok {
			return nil, errors.Errorf("rules for %q should be a list", r.Category)
		}
		for _, kw := range list {
			r.Keywords = append(r.Keywords, strings.ToLower(fmt.Sprint(kw)))
		}
		rules = append(rules, r)
	}
	if len(rules) == 0 {
		return defaultKeywordRules, nil
	}
	return rules, nil
}

// categorizer labels transactions for the aggregated view.
type categorizer struct {
	rules     []keywordRule
	cl        *bayesian.Classifier
	classes   []bayesian.Class
	threshold float64
}

func newCategorizer(rules []keywordRule) *categorizer {
	if len(rules) == 0 {
		rules = defaultKeywordRules
	}
	return &categorizer{rules: rules}
}

// byKeyword matches the lower cased merchant against the rules.
func (c *categorizer) byKeyword(merchant string) string {
	m := strings.ToLower(merchant)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(m, kw) {
				return r.Category
			}
		}
	}
	return categoryUncategorized
}

// category resolves the label used when aggregating. A real table label always
// wins. Everything else goes through the keyword rules and, if configured,
// the learned classifier.
func (c *categorizer) category(t Txn) string {
	if t.HasCategory {
		return t.Category
	}
	cat := c.byKeyword(t.Party)
	if cat != categoryUncategorized || c.cl == nil {
		return cat
	}
	if guess, conf := c.predict(t.Party); conf >= c.threshold {
		return guess
	}
	return cat
}

func prepareDescriptionForClassification(desc string) []string {
	desc = strings.ToLower(desc)
	desc = strings.NewReplacer("*", " ", "#", " ", ".", " ").Replace(desc)
	return strings.Fields(desc)
}

// learn trains the fallback classifier on every transaction that resolves to
// a label without it. It needs at least two labels, otherwise the classifier
// stays off.
func (c *categorizer) learn(txns []Txn, threshold float64) int {
	type example struct {
		terms []string
		class string
	}
	var examples []example
	seen := make(map[string]bool)
	for _, t := range txns {
		cat := c.byKeyword(t.Party)
		if t.HasCategory {
			cat = t.Category
		}
		terms := prepareDescriptionForClassification(t.Party)
		if cat == categoryUncategorized || len(terms) == 0 {
			continue
		}
		examples = append(examples, example{terms, cat})
		seen[cat] = true
	}
	if len(seen) < 2 {
		return 0
	}

	c.classes = c.classes[:0]
	for class := range seen {
		c.classes = append(c.classes, bayesian.Class(class))
	}
	sort.Slice(c.classes, func(i, j int) bool { return c.classes[i] < c.classes[j] })
	c.cl = bayesian.NewClassifierTfIdf(c.classes...)
	for _, ex := range examples {
		c.cl.Learn(ex.terms, bayesian.Class(ex.class))
	}
	c.cl.ConvertTermsFreqToTfIdf()
	c.threshold = threshold
	return len(examples)
}

// predict returns the best class and its softmax confidence.
func (c *categorizer) predict(merchant string) (string, float64) {
	terms := prepareDescriptionForClassification(merchant)
	if c.cl == nil || len(terms) == 0 {
		return "", 0
	}
	scores, inx, _ := c.cl.LogScores(terms)
	best := scores[inx]
	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - best)
	}
	return string(c.classes[inx]), 1 / sum
}
