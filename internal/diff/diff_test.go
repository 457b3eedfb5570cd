package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_Equal(t *testing.T) {
	log := []string{"document", "heading, Title, level 1", "end of document"}
	res := Compare("golden", "current", log, append([]string(nil), log...))

	assert.True(t, res.Equal())
	assert.Empty(t, res.Hunks)
	assert.Zero(t, res.Added)
	assert.Zero(t, res.Removed)
	assert.Equal(t, "", res.Unified())
}

func TestCompare_ChangedPhrase(t *testing.T) {
	want := []string{"a", "b", "c", "d", "e"}
	got := []string{"a", "b", "X", "d", "e"}

	res := NewComparer(1).Compare("want", "got", want, got)
	require.Len(t, res.Hunks, 1)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Removed)

	wantEntries := []Entry{
		{Kind: Same, Phrase: "b", OldIndex: 1, NewIndex: 1},
		{Kind: Removed, Phrase: "c", OldIndex: 2, NewIndex: -1},
		{Kind: Added, Phrase: "X", OldIndex: -1, NewIndex: 2},
		{Kind: Same, Phrase: "d", OldIndex: 3, NewIndex: 3},
	}
	if diff := cmp.Diff(wantEntries, res.Hunks[0].Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "--- want\n+++ got\n@@ -2,3 +2,3 @@\n b\n-c\n+X\n d\n", res.Unified())
}

func TestCompare_SeparateHunks(t *testing.T) {
	want := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := []string{"a", "B", "c", "d", "e", "F", "g"}

	res := NewComparer(1).Compare("want", "got", want, got)
	require.Len(t, res.Hunks, 2)

	first, second := res.Hunks[0], res.Hunks[1]
	assert.Equal(t, [4]int{1, 3, 1, 3}, [4]int{first.OldStart, first.OldCount, first.NewStart, first.NewCount})
	assert.Equal(t, [4]int{5, 3, 5, 3}, [4]int{second.OldStart, second.OldCount, second.NewStart, second.NewCount})
}

func TestCompare_MergesNearbyChanges(t *testing.T) {
	want := []string{"a", "b", "c", "d", "e"}
	got := []string{"A", "b", "c", "D", "e"}

	res := NewComparer(1).Compare("want", "got", want, got)
	require.Len(t, res.Hunks, 1)
	assert.Equal(t, 5, res.Hunks[0].OldCount)
}

func TestCompare_AllAdded(t *testing.T) {
	res := Compare("empty", "new", nil, []string{"document", "end of document"})
	require.Len(t, res.Hunks, 1)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, "--- empty\n+++ new\n@@ -0,0 +1,2 @@\n+document\n+end of document\n", res.Unified())
}

func TestCompare_EmptyAndMultilinePhrases(t *testing.T) {
	want := []string{"", "two\nlines"}
	got := []string{"", "two\nlines", "tail"}

	res := Compare("w", "g", want, got)
	require.Len(t, res.Hunks, 1)
	entries := res.Hunks[0].Entries
	require.Len(t, entries, 3)
	assert.Equal(t, "", entries[0].Phrase)
	assert.Equal(t, "two\nlines", entries[1].Phrase)
	assert.Equal(t, Entry{Kind: Added, Phrase: "tail", OldIndex: -1, NewIndex: 2}, entries[2])
}

func TestWords(t *testing.T) {
	c := NewComparer(0)
	assert.Equal(t, "checkbox, Agree,[- not-] checked", c.Words("checkbox, Agree, not checked", "checkbox, Agree, checked"))
	assert.Equal(t, "same", c.Words("same", "same"))
}

func TestHighlights(t *testing.T) {
	c := NewComparer(1)
	res := c.Compare("want", "got",
		[]string{"a", "Footer", "b", "gone"},
		[]string{"a", "New Footer", "b", "c", "d"})

	assert.Equal(t, []string{"{+New +}Footer", "[-gone-]{+c+}"}, c.Highlights(res))
	assert.Empty(t, c.Highlights(c.Compare("w", "g", []string{"x"}, []string{"x"})))
}
