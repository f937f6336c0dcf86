package main

import (
	"sort"
	"strings"
)

// categoryInterests maps a lower cased spend category to interest tags.
var categoryInterests = map[string][]string{
	"dining":         {"food", "restaurants", "culinary"},
	"entertainment":  {"entertainment", "movies", "streaming"},
	"fitness":        {"fitness", "health", "sports"},
	"shopping":       {"shopping", "retail"},
	"transport":      {"travel", "transportation"},
	"transportation": {"travel", "transportation"},
	"grocery":        {"cooking", "food"},
	"subscription":   {"entertainment", "streaming", "digital services"},
	"investment":     {"finance", "investing"},
	"investments":    {"finance", "investing"},
	"fashion":        {"fashion", "clothing", "style"},
	"electronics":    {"technology", "gadgets"},
}

type interestRule struct {
	Tag      string
	Keywords []string
}

var socialKeywords = []interestRule{
	{"travel", []string{"travel", "vacation", "trip", "holiday", "explore", "adventure"}},
	{"technology", []string{"tech", "gadget", "computer", "phone", "coding", "programming"}},
	{"food", []string{"restaurant", "dining", "food", "cuisine", "cooking", "recipe"}},
	{"shopping", []string{"shopping", "store", "mall", "buy", "purchase", "deal"}},
	{"entertainment", []string{"movie", "music", "concert", "show", "theater", "performance"}},
	{"fitness", []string{"gym", "workout", "fitness", "exercise", "sports", "training"}},
	{"education", []string{"study", "course", "learn", "education", "university", "college"}},
	{"finance", []string{"invest", "stock", "savings", "budget", "crypto"}},
	{"outdoor", []string{"hiking", "camping", "nature", "park", "outdoor", "adventure"}},
	{"lifestyle", []string{"fashion", "style", "wellness", "home decor", "self care"}},
}

// inferInterests combines categories that saw more than threshold of spend
// with keyword hits in the posts. The result is lower cased, sorted and free
// of duplicates.
func inferInterests(s SpendingSummary, posts []string, threshold float64) []string {
	tags := make(map[string]bool)
	for cat, amount := range s.SpendingByCategory {
		if amount <= threshold {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(cat))
		if mapped, ok := categoryInterests[key]; ok {
			for _, tag := range mapped {
				tags[tag] = true
			}
			continue
		}
		if key != "" && key != strings.ToLower(categoryOther) && key != categoryUncategorized {
			tags[key] = true
		}
	}
	for _, tag := range postInterests(posts) {
		tags[tag] = true
	}
	return sortedSet(tags)
}

func postInterests(posts []string) []string {
	tags := make(map[string]bool)
	for _, post := range posts {
		p := strings.ToLower(post)
		for _, r := range socialKeywords {
			if tags[r.Tag] {
				continue
			}
			for _, kw := range r.Keywords {
				if strings.Contains(p, kw) {
					tags[r.Tag] = true
					break
				}
			}
		}
	}
	return sortedSet(tags)
}

// mergeInterests is the union callers persist across runs.
func mergeInterests(sets ...[]string) []string {
	tags := make(map[string]bool)
	for _, set := range sets {
		for _, tag := range set {
			if tag = strings.ToLower(strings.TrimSpace(tag)); len(tag) > 0 {
				tags[tag] = true
			}
		}
	}
	return sortedSet(tags)
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
