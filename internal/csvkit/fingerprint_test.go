package csvkit

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := sampleBundle()
	b := sampleBundle()
	slices.Reverse(b.Accounts)
	slices.Reverse(b.Postings)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 64)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	base := Fingerprint(sampleBundle())

	renamed := sampleBundle()
	renamed.Postings[0].ID = "p-9"
	assert.NotEqual(t, base, Fingerprint(renamed))

	otherCurrency := sampleBundle()
	otherCurrency.Manifest.BaseCurrency = "USD"
	assert.NotEqual(t, base, Fingerprint(otherCurrency))
}
