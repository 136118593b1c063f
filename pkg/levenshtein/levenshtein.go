// Package levenshtein computes edit distances and suggests the closest match
// for misspelled identifiers such as action keys and provider ids.
package levenshtein

import "strings"

// Context reuses its row buffer across calls. It is not safe for concurrent
// use.
type Context struct {
	row []int
}

// Distance returns the number of single-rune insertions, deletions and
// substitutions that turn a into b.
func (ctx *Context) Distance(a, b string) int {
	left, right := []rune(a), []rune(b)
	if len(left) < len(right) {
		left, right = right, left
	}

	if len(right) == 0 {
		return len(left)
	}

	if cap(ctx.row) < len(right)+1 {
		ctx.row = make([]int, len(right)+1)
	}

	row := ctx.row[:len(right)+1]
	for idx := range row {
		row[idx] = idx
	}

	for i, lr := range left {
		diag := row[0]
		row[0] = i + 1

		for j, rr := range right {
			cost := 1
			if lr == rr {
				cost = 0
			}

			next := min(row[j+1]+1, row[j]+1, diag+cost)
			diag = row[j+1]
			row[j+1] = next
		}
	}

	return row[len(right)]
}

// Closest returns the candidate nearest to target, compared case
// insensitively, when its distance is at most a third of the target length
// (and at least 1). Ties keep the earlier candidate.
func Closest(target string, candidates []string) (string, bool) {
	var ctx Context

	limit := max(1, len([]rune(target))/3)
	lowered := strings.ToLower(target)

	best, bestDistance := "", limit+1

	for _, candidate := range candidates {
		distance := ctx.Distance(lowered, strings.ToLower(candidate))
		if distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}

	return best, best != ""
}
