package service

import "strings"

// ReviewIntent is the coarse focus extracted from a review query.
type ReviewIntent struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	FocusPaths []string `json:"focusPaths"`
	Languages  []string `json:"languages"`
}

var intentCategories = []struct {
	name     string
	keywords []string
}{
	{"security", []string{"security", "auth", "token", "jwt", "secret"}},
	{"performance", []string{"performance", "slow", "optimize", "latency"}},
	{"reliability", []string{"reliability", "error", "exception", "resilience"}},
	{"style", []string{"style", "lint", "format", "readability"}},
}

var intentFocusPaths = []string{"api", "routes", "controllers", "db", "database", "auth", "config", "frontend", "backend"}

var intentLanguages = []struct {
	name     string
	keywords []string
}{
	{"python", []string{"python"}},
	{"typescript", []string{"typescript", "ts"}},
	{"javascript", []string{"javascript", "js"}},
	{"go", []string{"go"}},
	{"java", []string{"java"}},
}

// ParseIntent detects categories, focus paths and languages by substring
// match on the lower-cased query, so "ts" also fires inside "tests".
func ParseIntent(query string) ReviewIntent {
	q := strings.ToLower(query)

	intent := ReviewIntent{
		Name:       query,
		Categories: []string{},
		FocusPaths: []string{},
		Languages:  []string{},
	}

	for _, c := range intentCategories {
		if containsAny(q, c.keywords) {
			intent.Categories = append(intent.Categories, c.name)
		}
	}
	for _, p := range intentFocusPaths {
		if strings.Contains(q, p) {
			intent.FocusPaths = append(intent.FocusPaths, p)
		}
	}
	for _, l := range intentLanguages {
		if containsAny(q, l.keywords) {
			intent.Languages = append(intent.Languages, l.name)
		}
	}

	return intent
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
