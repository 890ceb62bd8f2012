package export

import (
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestSplitBoldRuns(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []TextRun
	}{
		{
			"mixed",
			"Hello **world**!",
			[]TextRun{{Text: "Hello "}, {Text: "world", Bold: true}, {Text: "!"}},
		},
		{
			"leading bold",
			"**Now** hear this",
			[]TextRun{{Text: "Now", Bold: true}, {Text: " hear this"}},
		},
		{
			"only bold",
			"**all**",
			[]TextRun{{Text: "all", Bold: true}},
		},
		{
			"plain",
			"no markers here",
			[]TextRun{{Text: "no markers here"}},
		},
		{
			"unmatched trailing marker stays literal",
			"a **b",
			[]TextRun{{Text: "a **b"}},
		},
		{
			"empty bold collapses",
			"a ****b",
			[]TextRun{{Text: "a "}, {Text: "b"}},
		},
		{
			"two bold spans",
			"**a** and **b**",
			[]TextRun{{Text: "a", Bold: true}, {Text: " and "}, {Text: "b", Bold: true}},
		},
		{
			"empty content",
			"",
			[]TextRun{{Text: ""}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitBoldRuns(tc.content)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitBoldRuns(%q) = %+v, want %+v", tc.content, got, tc.want)
			}
		})
	}
}

func TestSplitBoldRunsJoinInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		content := rapid.StringMatching(`([a-z ]{0,8}(\*\*)?){0,6}`).Draw(t, "content")
		runs := SplitBoldRuns(content)

		// Joining the runs reproduces the content with matched marker
		// pairs removed.
		joined := JoinRuns(runs)
		pairs := strings.Count(content, "**") / 2
		want := strings.Replace(content, "**", "", pairs*2)
		if joined != want {
			t.Fatalf("JoinRuns = %q, want %q (content %q)", joined, want, content)
		}

		// No run text still carries a matched marker pair.
		for _, r := range runs[:len(runs)-1] {
			if strings.Contains(r.Text, "**") {
				t.Fatalf("run %q retains markers (content %q)", r.Text, content)
			}
		}
	})
}

func TestSplitBoldRunsNeverEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		content := rapid.String().Draw(t, "content")
		if len(SplitBoldRuns(content)) == 0 {
			t.Fatal("runs must never be empty")
		}
	})
}
