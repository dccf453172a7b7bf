package editor

import (
	"regexp"
	"sort"
	"unicode/utf8"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}\}`)

// PlaceholderSummary describes the merge tokens found in a mail body.
type PlaceholderSummary struct {
	Tokens []string
	Length int
}

// SummarizePlaceholders collects the distinct {{token}} names of html in
// sorted order along with its length in characters.
func SummarizePlaceholders(html string) *PlaceholderSummary {
	seen := map[string]struct{}{}
	tokens := []string{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(html, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		tokens = append(tokens, m[1])
	}
	sort.Strings(tokens)
	return &PlaceholderSummary{
		Tokens: tokens,
		Length: utf8.RuneCountInString(html),
	}
}
