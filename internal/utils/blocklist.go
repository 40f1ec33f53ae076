package utils

import (
	"bufio"
	"os"
	"strings"
)

// Blocklist holds terms that must never become media items when mined from the inbox
type Blocklist struct {
	terms []string
}

// NewBlocklist builds a blocklist from in-memory terms
func NewBlocklist(terms ...string) *Blocklist {
	b := &Blocklist{terms: []string{}}
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			b.terms = append(b.terms, term)
		}
	}
	return b
}

// LoadBlocklist loads blocklist terms from a file, one per line
func LoadBlocklist(path string) (*Blocklist, error) {
	// If file doesn't exist, return empty blocklist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Blocklist{terms: []string{}}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" && !strings.HasPrefix(term, "#") {
			terms = append(terms, term)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Blocklist{terms: terms}, nil
}

// Len returns the number of terms
func (b *Blocklist) Len() int {
	return len(b.terms)
}

// IsBlocked checks if a title contains any blocklist term after normalization
// Returns (isBlocked, matchedTerm)
func (b *Blocklist) IsBlocked(title string) (bool, string) {
	normalized := NormalizeTitle(title)

	for _, term := range b.terms {
		if n := NormalizeTitle(term); n != "" && strings.Contains(normalized, n) {
			return true, term
		}
	}

	return false, ""
}
