package syntax

import "fmt"

// Span locates text in a source as a start offset and a length.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// NewSpan creates a span from start and end offsets.
func NewSpan(start, end int) Span {
	return Span{Start: start, Length: end - start}
}

// End returns the exclusive end offset.
func (s Span) End() int {
	return s.Start + s.Length
}

// IsEmpty reports whether the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Length == 0
}

// Contains reports whether other lies within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End() <= s.End()
}

// ContainsPosition reports whether pos is within [Start, End).
func (s Span) ContainsPosition(pos int) bool {
	return pos >= s.Start && pos < s.End()
}

// IntersectsWith reports whether the spans overlap or touch.
func (s Span) IntersectsWith(other Span) bool {
	return other.Start <= s.End() && other.End() >= s.Start
}

// String renders the span as [start..end).
func (s Span) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End())
}
