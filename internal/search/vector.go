// Package search builds the language-stemmed token representation a text
// record is matched against. A vector is always derived from the full page
// text and the resolved document language; it is recomputed whenever either
// changes and never written directly.
package search

import (
	"maps"
	"sort"
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/danish"
	"github.com/blevesearch/snowballstem/dutch"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/finnish"
	"github.com/blevesearch/snowballstem/french"
	"github.com/blevesearch/snowballstem/german"
	"github.com/blevesearch/snowballstem/hungarian"
	"github.com/blevesearch/snowballstem/italian"
	"github.com/blevesearch/snowballstem/norwegian"
	"github.com/blevesearch/snowballstem/portuguese"
	"github.com/blevesearch/snowballstem/romanian"
	"github.com/blevesearch/snowballstem/russian"
	"github.com/blevesearch/snowballstem/spanish"
	"github.com/blevesearch/snowballstem/swedish"
	"github.com/blevesearch/snowballstem/turkish"

	"github.com/Bennexy/edms-local/internal/language"
)

// Vector maps each lexeme to its occurrence weight.
type Vector map[string]int

// stemmers is keyed by the catalog name, mirroring how a text-search
// configuration is selected by name. "simple" is deliberately absent:
// unknown or unset languages tokenize without stemming.
var stemmers = map[string]func(*snowballstem.Env) bool{
	language.Danish.Name:     danish.Stem,
	language.Dutch.Name:      dutch.Stem,
	language.English.Name:    english.Stem,
	language.Finnish.Name:    finnish.Stem,
	language.French.Name:     french.Stem,
	language.German.Name:     german.Stem,
	language.Hungarian.Name:  hungarian.Stem,
	language.Italian.Name:    italian.Stem,
	language.Norwegian.Name:  norwegian.Stem,
	language.Portuguese.Name: portuguese.Stem,
	language.Romanian.Name:   romanian.Stem,
	language.Russian.Name:    russian.Stem,
	language.Spanish.Name:    spanish.Stem,
	language.Swedish.Name:    swedish.Stem,
	language.Turkish.Name:    turkish.Stem,
}

// BuildVector joins pages with single spaces, tokenizes, stems each token
// with the language's stemmer and counts occurrences. The result is a pure
// function of (pages, lang).
func BuildVector(pages []string, lang language.Language) Vector {
	v := make(Vector)
	for _, lexeme := range Lexemes(strings.Join(pages, " "), lang) {
		v[lexeme]++
	}
	return v
}

// Lexemes tokenizes and stems a single string the same way BuildVector
// does, preserving token order and duplicates.
func Lexemes(text string, lang language.Language) []string {
	stem := stemmers[lang.Name]

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if stem != nil {
			env := snowballstem.NewEnv(tok)
			stem(env)
			tok = env.Current()
		}
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Matches reports whether every query lexeme occurs in the vector. An empty
// query matches nothing.
func (v Vector) Matches(query []string) bool {
	if len(query) == 0 {
		return false
	}
	for _, lexeme := range query {
		if v[lexeme] == 0 {
			return false
		}
	}
	return true
}

// Rank sums the weights of the query lexemes, for ordering matches.
func (v Vector) Rank(query []string) int {
	total := 0
	for _, lexeme := range query {
		total += v[lexeme]
	}
	return total
}

// Equal reports whether two vectors hold identical lexemes and weights.
func (v Vector) Equal(o Vector) bool {
	return maps.Equal(v, o)
}

// Terms returns the vector's lexemes in sorted order.
func (v Vector) Terms() []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
