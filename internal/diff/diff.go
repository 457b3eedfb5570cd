// Package diff compares two spoken-phrase transcripts line by line using
// sergi/go-diff and renders the result as a unified diff.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies one entry of a comparison.
type Kind int

const (
	Same    Kind = iota // phrase spoken in both transcripts
	Added               // phrase only in the new transcript
	Removed             // phrase only in the expected transcript
)

func (k Kind) prefix() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	}
	return " "
}

// Entry is one phrase in a hunk. OldIndex and NewIndex are zero-based
// positions in the two transcripts, -1 where the phrase is absent.
type Entry struct {
	Kind     Kind
	Phrase   string
	OldIndex int
	NewIndex int
}

// Hunk is a run of changes with surrounding context. Starts are one-based.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Entries  []Entry
}

// Result is the comparison of an expected and an actual transcript.
type Result struct {
	WantName string
	GotName  string
	Hunks    []Hunk
	Added    int
	Removed  int
}

// Equal reports whether the transcripts matched.
func (r *Result) Equal() bool {
	return len(r.Hunks) == 0
}

// Comparer computes transcript diffs.
type Comparer struct {
	dmp     *diffmatchpatch.DiffMatchPatch
	context int
}

// NewComparer creates a comparer keeping context phrases around each change.
func NewComparer(context int) *Comparer {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	if context < 0 {
		context = 0
	}
	return &Comparer{dmp: dmp, context: context}
}

// Compare diffs want against got with three phrases of context.
func Compare(wantName, gotName string, want, got []string) *Result {
	return NewComparer(3).Compare(wantName, gotName, want, got)
}

// Compare diffs want against got.
func (c *Comparer) Compare(wantName, gotName string, want, got []string) *Result {
	res := &Result{WantName: wantName, GotName: gotName}

	a, b, lines := c.dmp.DiffLinesToChars(joinLines(want), joinLines(got))
	diffs := c.dmp.DiffMain(a, b, false)
	diffs = c.dmp.DiffCharsToLines(diffs, lines)

	entries := toEntries(diffs)
	for _, e := range entries {
		switch e.Kind {
		case Added:
			res.Added++
		case Removed:
			res.Removed++
		}
	}
	res.Hunks = c.group(entries)
	return res
}

// joinLines encodes phrases one per line. Embedded newlines are escaped so
// a phrase always maps to exactly one line.
func joinLines(phrases []string) string {
	var sb strings.Builder
	for _, p := range phrases {
		sb.WriteString(strings.ReplaceAll(p, "\n", `\n`))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func toEntries(diffs []diffmatchpatch.Diff) []Entry {
	var entries []Entry
	oldIdx, newIdx := 0, 0
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			line = strings.ReplaceAll(line, `\n`, "\n")
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				entries = append(entries, Entry{Kind: Same, Phrase: line, OldIndex: oldIdx, NewIndex: newIdx})
				oldIdx++
				newIdx++
			case diffmatchpatch.DiffDelete:
				entries = append(entries, Entry{Kind: Removed, Phrase: line, OldIndex: oldIdx, NewIndex: -1})
				oldIdx++
			case diffmatchpatch.DiffInsert:
				entries = append(entries, Entry{Kind: Added, Phrase: line, OldIndex: -1, NewIndex: newIdx})
				newIdx++
			}
		}
	}
	return entries
}

// group merges changed entries whose context windows overlap into hunks.
func (c *Comparer) group(entries []Entry) []Hunk {
	var hunks []Hunk
	for i := 0; i < len(entries); {
		if entries[i].Kind == Same {
			i++
			continue
		}
		start := max(i-c.context, 0)
		end := i
		for j := i; j < len(entries); j++ {
			if entries[j].Kind != Same {
				end = j
				continue
			}
			if j-end > 2*c.context {
				break
			}
		}
		stop := min(end+c.context+1, len(entries))
		hunks = append(hunks, makeHunk(entries, start, stop))
		i = stop
	}
	return hunks
}

func makeHunk(entries []Entry, start, stop int) Hunk {
	h := Hunk{Entries: append([]Entry(nil), entries[start:stop]...)}
	oldPos, newPos := positionsBefore(entries, start)
	for _, e := range h.Entries {
		if e.Kind != Added {
			h.OldCount++
		}
		if e.Kind != Removed {
			h.NewCount++
		}
	}
	h.OldStart, h.NewStart = oldPos, newPos
	if h.OldCount > 0 {
		h.OldStart++
	}
	if h.NewCount > 0 {
		h.NewStart++
	}
	return h
}

// positionsBefore counts the old and new phrases preceding entries[idx].
func positionsBefore(entries []Entry, idx int) (oldPos, newPos int) {
	for _, e := range entries[:idx] {
		if e.Kind != Added {
			oldPos++
		}
		if e.Kind != Removed {
			newPos++
		}
	}
	return oldPos, newPos
}

// Unified renders r in unified diff format. Equal transcripts render as the
// empty string.
func (r *Result) Unified() string {
	if r.Equal() {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", r.WantName, r.GotName)
	for _, h := range r.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, e := range h.Entries {
			sb.WriteString(e.Kind.prefix())
			sb.WriteString(e.Phrase)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Words highlights the changes within a single phrase as [-removed-] and
// {+added+} spans.
func (c *Comparer) Words(oldPhrase, newPhrase string) string {
	diffs := c.dmp.DiffMain(oldPhrase, newPhrase, false)
	diffs = c.dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		}
	}
	return sb.String()
}

// Highlights pairs each run of removed phrases with the added run that
// follows it and returns the word-level highlight of every pair. Unpaired
// phrases are left to the unified view.
func (c *Comparer) Highlights(r *Result) []string {
	var out []string
	for _, h := range r.Hunks {
		var removed, added []string
		flush := func() {
			for i := 0; i < len(removed) && i < len(added); i++ {
				out = append(out, c.Words(removed[i], added[i]))
			}
			removed, added = nil, nil
		}
		for _, e := range h.Entries {
			switch e.Kind {
			case Removed:
				if len(added) > 0 {
					flush()
				}
				removed = append(removed, e.Phrase)
			case Added:
				added = append(added, e.Phrase)
			default:
				flush()
			}
		}
		flush()
	}
	return out
}
