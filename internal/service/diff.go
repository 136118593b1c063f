package service

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine is one line of a line diff.
type DiffLine struct {
	Op   diffmatchpatch.Operation
	Text string
}

// Prefix returns the conventional marker of the line: "+", "-" or " ".
func (line DiffLine) Prefix() string {
	switch line.Op {
	case diffmatchpatch.DiffInsert:
		return "+"
	case diffmatchpatch.DiffDelete:
		return "-"
	default:
		return " "
	}
}

// LineDiff compares before and after line by line.
func LineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()

	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	var out []DiffLine

	for _, diff := range diffs {
		if diff.Text == "" {
			continue
		}

		text := strings.TrimSuffix(diff.Text, "\n")

		for line := range strings.SplitSeq(text, "\n") {
			out = append(out, DiffLine{Op: diff.Type, Text: line})
		}
	}

	return out
}

// ChangedLines keeps the inserted and deleted lines plus context lines of
// unchanged text around them.
func ChangedLines(lines []DiffLine, context int) []DiffLine {
	keep := make([]bool, len(lines))

	for idx, line := range lines {
		if line.Op == diffmatchpatch.DiffEqual {
			continue
		}

		for near := max(0, idx-context); near <= min(len(lines)-1, idx+context); near++ {
			keep[near] = true
		}
	}

	var out []DiffLine

	for idx, line := range lines {
		if keep[idx] {
			out = append(out, line)
		}
	}

	return out
}

// DiffText renders lines with their prefixes.
func DiffText(lines []DiffLine) string {
	var buf strings.Builder

	for _, line := range lines {
		buf.WriteString(line.Prefix())
		buf.WriteString(line.Text)
		buf.WriteByte('\n')
	}

	return buf.String()
}
