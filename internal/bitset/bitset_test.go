package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndHas(t *testing.T) {
	b := New(0, 3, 7)

	assert.True(t, b.Has(0))
	assert.True(t, b.Has(3))
	assert.True(t, b.Has(7))
	assert.False(t, b.Has(1))
	assert.False(t, b.Has(8))
	assert.False(t, b.Has(-1), "negative index is never present")
}

func TestNew_PanicsOnNegativeIndex(t *testing.T) {
	assert.Panics(t, func() {
		New(-1)
	})
}

func TestAdd_Idempotent(t *testing.T) {
	b := New()
	b.Add(5)
	b.Add(5)

	assert.True(t, b.Has(5))
	assert.True(t, b.Equal(New(5)))
}

func TestEqual(t *testing.T) {
	assert.True(t, New(1, 2, 3).Equal(New(3, 2, 1)))
	assert.False(t, New(1, 2).Equal(New(1, 2, 3)))
	assert.False(t, New(1).Equal(nil))
	assert.True(t, New().Equal(New()))
}

func TestIntersects(t *testing.T) {
	assert.True(t, New(1, 2).Intersects(New(2, 9)))
	assert.False(t, New(1, 2).Intersects(New(3, 4)))
	assert.False(t, New(1, 2).Intersects(New()))
	assert.False(t, New().Intersects(New()))
	assert.False(t, New(1).Intersects(nil))
}

func TestUnion(t *testing.T) {
	b := New(1, 2)
	b.Union(New(2, 64, 1000))

	assert.True(t, b.Equal(New(1, 2, 64, 1000)))
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		indices []int
	}{
		{"empty", nil},
		{"single", []int{0}},
		{"small", []int{0, 1, 2, 3}},
		{"sparse", []int{7, 42, 199}},
		{"beyond 53 bits", []int{53, 54, 63, 64, 127, 128}},
		{"very large index", []int{1, 1024, 4096}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := New(tc.indices...)

			for radix := 2; radix <= 36; radix++ {
				parsed, err := Parse(b.Text(radix), radix)
				require.NoError(t, err)
				assert.True(t, parsed.Equal(b), "radix %d", radix)
			}

			parsed, err := ParseDefault(b.String())
			require.NoError(t, err)
			assert.True(t, parsed.Equal(b))
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := ParseDefault("!!not-a-bitmap!!")
	assert.Error(t, err)

	_, err = Parse("10", 1)
	assert.Error(t, err)

	_, err = Parse("10", 37)
	assert.Error(t, err)

	_, err = ParseDefault("-10")
	assert.Error(t, err)
}

func TestMustParse_PanicsOnMalformed(t *testing.T) {
	assert.Panics(t, func() {
		MustParse("##", DefaultRadix)
	})
}

func TestHasIndex(t *testing.T) {
	b := New(0, 2, 64, 501)
	s := b.String()

	assert.True(t, HasIndex(s, 0))
	assert.True(t, HasIndex(s, 2))
	assert.True(t, HasIndex(s, 64))
	assert.True(t, HasIndex(s, 501))
	assert.False(t, HasIndex(s, 1))
	assert.False(t, HasIndex(s, 500))
	assert.False(t, HasIndex(s, -1))
	assert.False(t, HasIndex("@@@", 0), "malformed bitmap reports not present")
}
