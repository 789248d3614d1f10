package cryptotax

import (
	"fmt"
	"slices"
	"strings"
)

// Method is the lot selection strategy used for a whole run. It decides
// which lots a disposal consumes first.
type Method int

const (
	// FIFO (First-In, First-Out) consumes the oldest lots first.
	FIFO Method = iota
	// LIFO (Last-In, First-Out) consumes the newest lots first.
	LIFO
	// HIFO (Highest-In, First-Out) consumes the lots with the highest unit cost first.
	HIFO
)

// Methods lists all the supported methods, in their canonical order.
var Methods = []Method{FIFO, LIFO, HIFO}

func (m Method) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case HIFO:
		return "hifo"
	default:
		return "unknown"
	}
}

// ParseMethod parses a string into a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "hifo":
		return HIFO, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool { return m >= FIFO && m <= HIFO }

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	v, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Order returns the lots in the order they must be consumed. The input
// slice is not modified. Ties are always broken on the lot sequence number
// so the result is a total order.
func (m Method) Order(lots []*Lot) []*Lot {
	ordered := slices.Clone(lots)
	slices.SortFunc(ordered, m.compare)
	return ordered
}

// compare returns a negative number when a must be consumed before b.
func (m Method) compare(a, b *Lot) int {
	switch m {
	case FIFO:
		if c := a.Acquired.Compare(b.Acquired); c != 0 {
			return c
		}
		return cmpSequence(a, b)
	case LIFO:
		if c := b.Acquired.Compare(a.Acquired); c != 0 {
			return c
		}
		return cmpSequence(b, a)
	case HIFO:
		if c := b.unitCost.Cmp(a.unitCost); c != 0 {
			return c
		}
		if c := a.Acquired.Compare(b.Acquired); c != 0 {
			return c
		}
		return cmpSequence(a, b)
	default:
		// unreachable, methods are validated when the ledger is created.
		panic(fmt.Sprintf("%v: lot ordering for method %d", ErrInvariant, int(m)))
	}
}

func cmpSequence(a, b *Lot) int {
	switch {
	case a.Sequence < b.Sequence:
		return -1
	case a.Sequence > b.Sequence:
		return 1
	default:
		return 0
	}
}
