package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFragment(t *testing.T) {
	tests := []struct {
		in   string
		want Fragment
	}{
		{"Spanner", Fragment{Start: "Spanner"}},
		{"spanner,database", Fragment{Start: "spanner", End: "database"}},
		{"how,-many", Fragment{Start: "how", Suffix: "many"}},
		{"this,api,-and", Fragment{Start: "this", End: "api", Suffix: "and"}},
		{"is-,Google", Fragment{Prefix: "is", Start: "Google"}},
		{"of-,Google,-'s", Fragment{Prefix: "of", Start: "Google", Suffix: "'s"}},
		{"and-,applications,old,-timestamps", Fragment{Prefix: "and", Start: "applications", End: "old", Suffix: "timestamps"}},
		{"hello%20world", Fragment{Start: "hello world"}},
	}
	for _, tt := range tests {
		got, err := ParseFragment(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "a,b,c", "a-,", "%zz"} {
		_, err := ParseFragment(bad)
		assert.ErrorIs(t, err, ErrBadFragment, bad)
	}
}

func TestFindFragment(t *testing.T) {
	pages := []string{
		"Nothing here",
		"Spanner is Google's database. It is Google scale, and applications see old timestamps.",
	}
	find := func(s string) (Match, bool) {
		f, err := ParseFragment(s)
		require.NoError(t, err, s)
		return New().FindFragment(pages, f)
	}

	m, ok := find("spanner")
	require.True(t, ok)
	assert.Equal(t, Match{Page: 1, Start: 0, End: 7}, m)

	m, ok = find("spanner,database")
	require.True(t, ok)
	assert.Equal(t, Match{Page: 1, Start: 0, End: 28}, m)

	m, ok = find("is-,Google")
	require.True(t, ok)
	assert.Equal(t, Match{Page: 1, Start: 11, End: 17}, m, "first Google follows is")

	m, ok = find("It is-,Google,-scale")
	require.True(t, ok)
	assert.Equal(t, Match{Page: 1, Start: 36, End: 42}, m)

	m, ok = find("and-,applications,old,-timestamps")
	require.True(t, ok)
	assert.Equal(t, Match{Page: 1, Start: 54, End: 74}, m)

	for _, miss := range []string{"apples", "is-,Google,-random", "Google,random", "apples-,Google", "applications,old,-random"} {
		_, ok := find(miss)
		assert.False(t, ok, miss)
	}
}
