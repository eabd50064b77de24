// Package bloom tracks already-captured post URLs using Bloom filters.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	xclipper "github.com/ochanuco/x-clipper"
)

// Ensure Filter implements xclipper.SeenFilter at compile time.
var _ xclipper.SeenFilter = (*Filter)(nil)

// Filter wraps a Bloom filter over captured post URLs so re-scans do not
// re-offer a post that was already published.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// AddURL records a captured post URL.
func (f *Filter) AddURL(url string) {
	f.f.AddString(url)
}

// SeenURL returns true if the URL might have been captured already.
// False positives are possible; false negatives are not.
func (f *Filter) SeenURL(url string) bool {
	return f.f.TestString(url)
}

// EstimatedCount returns the approximate number of captured URLs.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
