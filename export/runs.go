package export

import "strings"

// TextRun is one formatting run of a text object's content.
type TextRun struct {
	Text string
	Bold bool
}

// SplitBoldRuns splits content on **bold** markers into ordered runs.
// Text outside markers is non-bold; an unmatched trailing marker is kept as
// literal text. Concatenating the run texts reproduces the content with the
// markers removed.
func SplitBoldRuns(content string) []TextRun {
	var runs []TextRun
	rest := content
	for {
		start := strings.Index(rest, "**")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start+2:], "**")
		if end == -1 {
			break
		}
		if start > 0 {
			runs = append(runs, TextRun{Text: rest[:start]})
		}
		if end > 0 {
			runs = append(runs, TextRun{Text: rest[start+2 : start+2+end], Bold: true})
		}
		rest = rest[start+2+end+2:]
	}
	if rest != "" {
		runs = append(runs, TextRun{Text: rest})
	}
	if runs == nil {
		runs = []TextRun{{Text: ""}}
	}
	return runs
}

// JoinRuns concatenates run texts; the inverse of SplitBoldRuns up to
// marker removal.
func JoinRuns(runs []TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
