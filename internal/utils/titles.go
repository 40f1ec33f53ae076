package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultMatchThreshold is the similarity above which two titles are treated as the same work
const DefaultMatchThreshold = 0.85

const maxExtractedTitleRunes = 100

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`《([^《》]+)》`),
	regexp.MustCompile(`「([^「」]+)」`),
	regexp.MustCompile(`“([^“”]+)”`),
	regexp.MustCompile(`"([^"\n]+)"`),
}

var bulletPattern = regexp.MustCompile(`(?m)^\s*[-*•]\s+(.+?)\s*$`)

// NormalizeTitle folds case and width, and drops punctuation and whitespace
// so "Dune: Part Two" and "dune part two" compare equal.
func NormalizeTitle(title string) string {
	folded := cases.Fold().String(norm.NFKC.String(title))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TitleSimilarity returns a score in [0,1] based on the Levenshtein distance of the normalized titles
func TitleSimilarity(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	longest := utf8.RuneCountInString(na)
	if n := utf8.RuneCountInString(nb); n > longest {
		longest = n
	}

	distance := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(distance)/float64(longest)
}

// MatchTitle reports whether two titles name the same work
func MatchTitle(a, b string) bool {
	return TitleSimilarity(a, b) >= DefaultMatchThreshold
}

// ExtractTitles pulls candidate titles out of free text: quoted titles
// (《》, 「」, “”, "") and bullet list lines. Results are deduplicated by
// normalized form and keep their first-seen order.
func ExtractTitles(content string) []string {
	titles := []string{}
	seen := map[string]bool{}

	add := func(raw string) {
		title := strings.TrimSpace(raw)
		if title == "" || utf8.RuneCountInString(title) > maxExtractedTitleRunes {
			return
		}
		key := NormalizeTitle(title)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		titles = append(titles, title)
	}

	for _, pattern := range titlePatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			add(match[1])
		}
	}

	for _, match := range bulletPattern.FindAllStringSubmatch(content, -1) {
		line := match[1]
		// A bullet that already carries a quoted title was handled above
		if containsQuotedTitle(line) {
			continue
		}
		add(line)
	}

	return titles
}

func containsQuotedTitle(s string) bool {
	for _, pattern := range titlePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}
