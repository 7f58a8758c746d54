package parser

import "strconv"

// Span is a byte-offset range in the template source.
// Start is always less than or equal to End.
type Span struct {
	Start uint
	End   uint
}

func newSpan(start, end int64) Span {
	if end < start {
		end = start
	}
	return Span{Start: uint(start), End: uint(end)}
}

// String renders the span as "start:end".
func (s Span) String() string {
	return strconv.FormatUint(uint64(s.Start), 10) + ":" + strconv.FormatUint(uint64(s.End), 10)
}
