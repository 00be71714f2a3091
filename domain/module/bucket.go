package module

import (
	"fmt"
	"strings"
)

// Bucket partitions the children of a country switch.
type Bucket string

const (
	BucketNone    Bucket = ""
	BucketUS      Bucket = "US"
	BucketCA      Bucket = "CA"
	BucketAU      Bucket = "AU"
	BucketDefault Bucket = "Default"
)

// Buckets returns the switch buckets in compile priority order.
func Buckets() []Bucket {
	return []Bucket{BucketUS, BucketCA, BucketAU, BucketDefault}
}

// IsValid returns true for the switch buckets (BucketNone is not a switch bucket).
func (b Bucket) IsValid() bool {
	switch b {
	case BucketUS, BucketCA, BucketAU, BucketDefault:
		return true
	}
	return false
}

// IsCountry returns true for buckets that compile to a country condition.
func (b Bucket) IsCountry() bool {
	return b.IsValid() && b != BucketDefault
}

// ParseBucket parses a bucket name case-insensitively.
// The empty string parses to BucketNone.
func ParseBucket(s string) (Bucket, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BucketNone, nil
	}
	for _, b := range Buckets() {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return BucketNone, fmt.Errorf("%w: %q", ErrInvalidBucket, s)
}
