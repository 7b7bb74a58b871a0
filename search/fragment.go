package search

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/search"
)

var ErrBadFragment = errors.New("search: malformed text fragment")

// Fragment is a text fragment directive: textStart with an optional
// textEnd, and context that must sit right before or after the match.
type Fragment struct {
	Prefix string
	Start  string
	End    string
	Suffix string
}

// ParseFragment reads the "[prefix-,]textStart[,textEnd][,-suffix]"
// syntax. Parts are percent-decoded.
func ParseFragment(s string) (Fragment, error) {
	parts := strings.Split(s, ",")
	var f Fragment
	if len(parts) > 1 && strings.HasSuffix(parts[0], "-") {
		f.Prefix = strings.TrimSuffix(parts[0], "-")
		parts = parts[1:]
	}
	if n := len(parts); n > 1 && strings.HasPrefix(parts[n-1], "-") {
		f.Suffix = strings.TrimPrefix(parts[n-1], "-")
		parts = parts[:n-1]
	}
	switch len(parts) {
	case 1:
		f.Start = parts[0]
	case 2:
		f.Start, f.End = parts[0], parts[1]
	default:
		return Fragment{}, fmt.Errorf("%w: %q", ErrBadFragment, s)
	}
	for _, p := range []*string{&f.Prefix, &f.Start, &f.End, &f.Suffix} {
		v, err := url.PathUnescape(*p)
		if err != nil {
			return Fragment{}, fmt.Errorf("%w: %q: %v", ErrBadFragment, s, err)
		}
		*p = v
	}
	if f.Start == "" || strings.HasSuffix(f.Start, "-") {
		return Fragment{}, fmt.Errorf("%w: %q", ErrBadFragment, s)
	}
	return f, nil
}

// FindFragment returns the first match of f. Matching ignores case, and
// the prefix and suffix may be separated from the match by whitespace.
// A match never crosses a page.
func (s *Searcher) FindFragment(pages []string, f Fragment) (Match, bool) {
	runes := make([][]rune, len(pages))
	for _, m := range s.Find(pages, f.Start, false) {
		if runes[m.Page] == nil {
			runes[m.Page] = []rune(pages[m.Page])
		}
		text := runes[m.Page]
		if f.Prefix != "" && !s.endsWith(text[:m.Start], f.Prefix) {
			continue
		}
		end := m.End
		if f.End != "" {
			rest := s.Find([]string{string(text[m.End:])}, f.End, false)
			if len(rest) == 0 {
				continue
			}
			end = m.End + rest[0].End
		}
		if f.Suffix != "" && !s.startsWith(text[end:], f.Suffix) {
			continue
		}
		return Match{Page: m.Page, Start: m.Start, End: end}, true
	}
	return Match{}, false
}

func (s *Searcher) endsWith(before []rune, term string) bool {
	text := strings.TrimRightFunc(string(before), unicode.IsSpace)
	pat := s.fold(term)
	for offset := 0; offset < len(text); {
		start, end := pat.IndexString(text[offset:])
		if start < 0 {
			return false
		}
		if offset+end == len(text) {
			return true
		}
		_, w := utf8.DecodeRuneInString(text[offset+start:])
		offset += start + w
	}
	return false
}

func (s *Searcher) startsWith(after []rune, term string) bool {
	text := strings.TrimLeftFunc(string(after), unicode.IsSpace)
	start, _ := s.fold(term).IndexString(text, search.Anchor)
	return start == 0
}

func (s *Searcher) fold(term string) *search.Pattern {
	return search.New(s.tag, search.IgnoreCase, search.IgnoreWidth).CompileString(term)
}
