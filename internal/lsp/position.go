package lsp

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// ErrPositionOutOfRange is returned when a position lies past the text.
var ErrPositionOutOfRange = errors.New("position out of range")

// Offset converts an LSP position (UTF-16 code units) to a byte offset in
// text. A character past the end of its line clamps to the line end.
func Offset(text string, pos protocol.Position) (int, error) {
	line := uint32(0)
	start := 0

	for line < pos.Line {
		idx := strings.IndexByte(text[start:], '\n')
		if idx < 0 {
			return 0, fmt.Errorf("%w: line %d", ErrPositionOutOfRange, pos.Line)
		}

		start += idx + 1
		line++
	}

	units := uint32(0)
	offset := start

	for offset < len(text) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}

		units += utf16Len(r)
		offset += size
	}

	return offset, nil
}

// Position converts a byte offset in text to an LSP position.
func Position(text string, offset int) (protocol.Position, error) {
	if offset < 0 || offset > len(text) {
		return protocol.Position{}, fmt.Errorf("%w: offset %d", ErrPositionOutOfRange, offset)
	}

	var pos protocol.Position

	for _, r := range text[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Character = 0

			continue
		}

		pos.Character += utf16Len(r)
	}

	return pos, nil
}

// SpanOf converts an LSP range to a span.
func SpanOf(text string, rng protocol.Range) (syntax.Span, error) {
	start, err := Offset(text, rng.Start)
	if err != nil {
		return syntax.Span{}, err
	}

	end, err := Offset(text, rng.End)
	if err != nil {
		return syntax.Span{}, err
	}

	if end < start {
		start, end = end, start
	}

	return syntax.NewSpan(start, end), nil
}

// RangeOf converts a span to an LSP range.
func RangeOf(text string, span syntax.Span) (protocol.Range, error) {
	start, err := Position(text, span.Start)
	if err != nil {
		return protocol.Range{}, err
	}

	end, err := Position(text, span.End())
	if err != nil {
		return protocol.Range{}, err
	}

	return protocol.Range{Start: start, End: end}, nil
}

func utf16Len(r rune) uint32 {
	if r >= 0x10000 {
		return 2
	}

	return 1
}
