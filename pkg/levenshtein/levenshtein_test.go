package levenshtein_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/codefix/pkg/levenshtein"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{a: "", b: "", want: 0},
		{a: "abc", b: "", want: 3},
		{a: "", b: "abc", want: 3},
		{a: "kitten", b: "sitting", want: 3},
		{a: "sitting", b: "kitten", want: 3},
		{a: "flaw", b: "lawn", want: 2},
		{a: "héllo", b: "hello", want: 1},
		{a: "InvertIfElse", b: "InvertIfElse", want: 0},
	}

	var ctx levenshtein.Context

	for _, tt := range tests {
		assert.Equal(t, tt.want, ctx.Distance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
	}
}

func TestClosest(t *testing.T) {
	t.Parallel()

	keys := []string{"ReplaceForEachWithFor.ascending", "ReplaceForEachWithFor.descending", "InvertIfElse"}

	tests := []struct {
		name   string
		target string
		want   string
		found  bool
	}{
		{name: "typo", target: "ReplaceForeachWithFor.ascnding", want: "ReplaceForEachWithFor.ascending", found: true},
		{name: "case only", target: "invertifelse", want: "InvertIfElse", found: true},
		{name: "too far", target: "RemoveNewModifier"},
		{name: "short target", target: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, found := levenshtein.Closest(tt.target, keys)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
