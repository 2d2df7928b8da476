package interaction

import (
	"math"
	"math/rand"
)

// DefaultSeed is the split seed callers have historically relied on
// for reproducible holdouts.
const DefaultSeed = 42

// SplitPolicy configures how the normalized interaction table is
// partitioned into train and test matrices. It is immutable
// configuration supplied at store construction.
type SplitPolicy struct {
	// TestSize is the share of rows assigned to the test partition: a
	// fraction when <= 1, an absolute row count when > 1.
	TestSize float64

	// Random selects a seeded shuffle. When false and TestSize names an
	// absolute count, the first rows become the test partition in their
	// original order.
	Random bool

	// Seed drives the random split.
	Seed int64
}

// DefaultSplitPolicy holds out a random 30% of rows under the default
// seed.
func DefaultSplitPolicy() SplitPolicy {
	return SplitPolicy{
		TestSize: 0.3,
		Random:   true,
		Seed:     DefaultSeed,
	}
}

// Split partitions the normalized records into disjoint train and test
// matrices sharing the store's full dimensions.
//
// With Random disabled and TestSize above one row, the test partition
// is exactly the first floor(TestSize) rows in original order and the
// train partition is the remainder. Any other policy is a seeded
// random split, reproducible across runs for identical input and seed.
func (s *Store) Split() (train, test *Matrix, err error) {
	numUsers, numItems := s.Dimensions()
	train = NewMatrix(numUsers, numItems)
	test = NewMatrix(numUsers, numItems)

	n := len(s.records)
	inTest := make([]bool, n)

	if !s.policy.Random && s.policy.TestSize > 1 {
		cut := int(s.policy.TestSize)
		if cut > n {
			cut = n
		}
		for i := 0; i < cut; i++ {
			inTest[i] = true
		}
	} else {
		count := s.testCount(n)
		rng := rand.New(rand.NewSource(s.policy.Seed))
		for _, idx := range rng.Perm(n)[:count] {
			inTest[idx] = true
		}
	}

	for i, rec := range s.records {
		target := train
		if inTest[i] {
			target = test
		}
		if err := target.Append(rec.UserCode, rec.ItemCode, rec.Value); err != nil {
			return nil, nil, err
		}
	}

	return train, test, nil
}

// testCount resolves TestSize into a row count for the random split:
// fractions round up, absolute counts are clamped to the table size.
func (s *Store) testCount(n int) int {
	size := s.policy.TestSize
	var count int
	if size <= 1 {
		count = int(math.Ceil(size * float64(n)))
	} else {
		count = int(size)
	}
	if count < 0 {
		count = 0
	}
	if count > n {
		count = n
	}
	return count
}
