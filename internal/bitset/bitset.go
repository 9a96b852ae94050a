// Package bitset implements an unbounded set of non-negative integer indices
// with a compact string serialization. It backs the activity bitmap embedded
// in authorization tokens: each set bit marks one activity index the token
// holder is authorized for.
package bitset

import (
	"fmt"
	"math/big"

	apperrors "github.com/allisson/authd/internal/errors"
)

// DefaultRadix is the radix used by String and Parse when no explicit radix
// is given. Serialized bitmaps travel inside tokens, so the radix must stay
// stable across releases.
const DefaultRadix = 35

// BitSet represents an indexed set of boolean values with no upper bound on
// the index magnitude. The zero value is not usable; use New or Parse.
type BitSet struct {
	bits *big.Int
}

// New creates a BitSet with the given indices set.
// It panics when any index is negative, since that is a programming error
// rather than a runtime condition.
func New(indices ...int) *BitSet {
	b := &BitSet{bits: new(big.Int)}
	for _, index := range indices {
		b.Add(index)
	}
	return b
}

// Parse creates a BitSet from a string produced by Text with the same radix.
func Parse(s string, radix int) (*BitSet, error) {
	if radix < 2 || radix > 36 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("radix %d out of range", radix))
	}
	bits, ok := new(big.Int).SetString(s, radix)
	if !ok || bits.Sign() < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("malformed bitset %q", s))
	}
	return &BitSet{bits: bits}, nil
}

// ParseDefault creates a BitSet from a string produced by String.
func ParseDefault(s string) (*BitSet, error) {
	return Parse(s, DefaultRadix)
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and static initialization.
func MustParse(s string, radix int) *BitSet {
	b, err := Parse(s, radix)
	if err != nil {
		panic(err)
	}
	return b
}

// Add sets the bit at the given index. Adding an already-set index is a no-op.
// It panics when index is negative.
func (b *BitSet) Add(index int) {
	if index < 0 {
		panic(fmt.Sprintf("bitset: negative index %d", index))
	}
	b.bits.SetBit(b.bits, index, 1)
}

// Has reports whether the bit at the given index is set. A negative index is
// never present; validating that an index exists at all is the caller's
// responsibility.
func (b *BitSet) Has(index int) bool {
	if index < 0 {
		return false
	}
	return b.bits.Bit(index) == 1
}

// Union adds every bit set in other to this BitSet.
func (b *BitSet) Union(other *BitSet) {
	b.bits.Or(b.bits, other.bits)
}

// Equal reports whether both bitsets have exactly the same bits set.
func (b *BitSet) Equal(other *BitSet) bool {
	return other != nil && b.bits.Cmp(other.bits) == 0
}

// Intersects reports whether at least one bit is set in both bitsets.
func (b *BitSet) Intersects(other *BitSet) bool {
	if other == nil {
		return false
	}
	return new(big.Int).And(b.bits, other.bits).Sign() != 0
}

// Text serializes the BitSet using the given radix (2..36).
func (b *BitSet) Text(radix int) string {
	return b.bits.Text(radix)
}

// String serializes the BitSet using DefaultRadix. Parse with ParseDefault.
func (b *BitSet) String() string {
	return b.Text(DefaultRadix)
}

// HasIndex tests bit membership directly on a serialized bitmap without
// exposing the intermediate BitSet. Malformed input and negative indices
// report false, which downstream authorization treats as a denial.
func HasIndex(s string, index int) bool {
	b, err := ParseDefault(s)
	if err != nil {
		return false
	}
	return b.Has(index)
}
