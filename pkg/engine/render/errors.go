package render

import (
	"fmt"
	"strconv"
)

// Kind identifies a rendering failure variant.
type Kind uint8

const (
	KindUnknownFragment Kind = iota
	KindFragmentCycle
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindUnknownFragment:
		return "unknown_fragment"
	case KindFragmentCycle:
		return "fragment_cycle"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every rendering failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Error is a rendering failure. Fragment names the fragment involved.
type Error struct {
	Kind     Kind
	Fragment string
}

func (e *Error) Error() string {
	if e.Kind == KindFragmentCycle {
		return fmt.Sprintf("render: fragment %q references itself", e.Fragment)
	}
	return fmt.Sprintf("render: unknown fragment %q", e.Fragment)
}

func UnknownFragment(name string) *Error {
	return &Error{Kind: KindUnknownFragment, Fragment: name}
}

func FragmentCycle(name string) *Error {
	return &Error{Kind: KindFragmentCycle, Fragment: name}
}
