// Package search finds a term in page text with language-aware matching.
package search

import (
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

// Match is a hit in one page, as char indexes [Start, End) into the
// page text.
type Match struct {
	Page  int
	Start int
	End   int
}

type Option func(*Searcher)

// WithLanguage selects language-specific matching rules.
func WithLanguage(tag language.Tag) Option {
	return func(s *Searcher) { s.tag = tag }
}

type Searcher struct {
	tag language.Tag
}

func New(opts ...Option) *Searcher {
	s := &Searcher{tag: language.Und}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find returns every non-overlapping match of term, by page then offset.
// Case-insensitive matching also ignores width.
func (s *Searcher) Find(pages []string, term string, caseSensitive bool) []Match {
	if term == "" {
		return nil
	}
	var opts []search.Option
	if !caseSensitive {
		opts = append(opts, search.IgnoreCase, search.IgnoreWidth)
	}
	pat := search.New(s.tag, opts...).CompileString(term)

	var out []Match
	for page, text := range pages {
		offset, chars := 0, 0
		for offset < len(text) {
			start, end := pat.IndexString(text[offset:])
			if start < 0 {
				break
			}
			startChar := chars + utf8.RuneCountInString(text[offset:offset+start])
			endChar := startChar + utf8.RuneCountInString(text[offset+start:offset+end])
			if end > start {
				out = append(out, Match{Page: page, Start: startChar, End: endChar})
			} else {
				_, w := utf8.DecodeRuneInString(text[offset+start:])
				end = start + w
				endChar = startChar + 1
			}
			chars = endChar
			offset += end
		}
	}
	return out
}

// Find searches with the root language.
func Find(pages []string, term string, caseSensitive bool) []Match {
	return New().Find(pages, term, caseSensitive)
}
