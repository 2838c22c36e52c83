package value

import "fmt"

// Range is a lazy arithmetic progression, as produced by range().
type Range struct {
	Start, Stop, Step int64
}

// Len returns the number of elements, never negative.
func (r *Range) Len() int64 {
	switch {
	case r.Step > 0 && r.Start < r.Stop:
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	case r.Step < 0 && r.Start > r.Stop:
		return (r.Start - r.Stop - r.Step - 1) / -r.Step
	}
	return 0
}

func (r *Range) String() string {
	if r.Step == 1 {
		return fmt.Sprintf("range(%d, %d)", r.Start, r.Stop)
	}
	return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
}

// Iterator walks a range or the characters of a string.
type Iterator struct {
	next  int64
	left  int64
	step  int64
	runes []rune
}

// NewRangeIterator starts an iteration over r.
func NewRangeIterator(r *Range) *Iterator {
	return &Iterator{next: r.Start, left: r.Len(), step: r.Step}
}

// NewStringIterator starts an iteration over the characters of s.
func NewStringIterator(s string) *Iterator {
	rs := []rune(s)
	return &Iterator{left: int64(len(rs)), runes: rs}
}

// Next returns the next element. ok is false when the iterator is exhausted.
// Strings are returned as Go strings so the caller can place them in its arena.
func (it *Iterator) Next() (v Value, s string, ok bool) {
	if it.left <= 0 {
		return Value{}, "", false
	}
	it.left--

	if it.runes != nil {
		r := it.runes[len(it.runes)-int(it.left)-1]
		return Value{Type: TypeString}, string(r), true
	}

	v = FromInt(it.next)
	it.next += it.step
	return v, "", true
}

// HasNext reports whether Next would yield another element.
func (it *Iterator) HasNext() bool {
	return it.left > 0
}
