package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeKey_CommaSwap tests that "Last, First" and "First Last"
// produce the same key
func TestNormalizeKey_CommaSwap(t *testing.T) {
	assert.Equal(t, NormalizeKey("Smith, John"), NormalizeKey("John Smith"))
	assert.Equal(t, "johnsmith", NormalizeKey("Smith, John"))
}

// TestNormalizeKey_SuffixOrder tests multi-component comma names
func TestNormalizeKey_SuffixOrder(t *testing.T) {
	// "Griffey, Ken, Jr" reverses to "Jr Ken Griffey".
	assert.Equal(t, "jrkengriffey", NormalizeKey("Griffey, Ken, Jr"))
}

// TestNormalizeKey_CaseAndPunctuation tests lowercasing and stripping
func TestNormalizeKey_CaseAndPunctuation(t *testing.T) {
	assert.Equal(t, NormalizeKey("O'Brien, Patrick"), NormalizeKey("Patrick O'Brien"))
	assert.Equal(t, "patrickobrien", NormalizeKey("PATRICK O'BRIEN"))
	assert.Equal(t, "jtsmith", NormalizeKey("J.T. Smith 2"))
}

// TestNormalizeKey_Diacritics tests that accented characters are folded
// consistently: both forms of the same name map to the same key
func TestNormalizeKey_Diacritics(t *testing.T) {
	// Composed vs decomposed "é" normalize identically before stripping.
	composed := "Jos\u00e9 Alvarez"
	decomposed := "Jose\u0301 Alvarez"
	assert.Equal(t, NormalizeKey(composed), NormalizeKey(decomposed))
}

// TestNormalizeKey_Idempotent tests that normalizing twice is a no-op
func TestNormalizeKey_Idempotent(t *testing.T) {
	key := NormalizeKey("van der Berg, Willem")
	assert.Equal(t, key, NormalizeKey(key))
}

// TestNormalizeKey_Empty tests the empty string
func TestNormalizeKey_Empty(t *testing.T) {
	assert.Equal(t, "", NormalizeKey(""))
}
