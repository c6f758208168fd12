package tracker

import (
	"fmt"
	"math"
)

// Sequence issues unique, monotonically increasing non-negative
// identifiers for one scope. The zero value starts at identifier 0.
// Identifiers are never reused, even for entities that no longer exist,
// so external references (bookmarked dependencies, saved URLs) stay
// stable. It serializes as the next identifier to be issued.
type Sequence int

// Next returns the next identifier in the sequence. Overflow is a fatal
// condition: the process cannot continue issuing unique identifiers.
func (s *Sequence) Next() int {
	if *s == Sequence(math.MaxInt) {
		panic(fmt.Sprintf("identifier sequence overflow at %d", int(*s)))
	}
	id := int(*s)
	*s++
	return id
}

// Peek returns the identifier Next would issue, without consuming it.
func (s Sequence) Peek() int {
	return int(s)
}

// Reconcile advances the sequence past the given identifier if it is not
// already beyond it. Used after loading a document whose counter lags the
// identifiers it actually contains (hand-edited files), so a future Next
// can never collide with an existing entity.
func (s *Sequence) Reconcile(maxSeen int) {
	if int(*s) <= maxSeen {
		*s = Sequence(maxSeen + 1)
	}
}
