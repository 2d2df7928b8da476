package interaction

import (
	"sort"
	"strconv"
)

// Record is one normalized interaction: dense user and item codes plus
// the interaction value.
type Record struct {
	UserCode int
	ItemCode int
	Value    float64
}

// Store holds the normalized interaction table together with the ID
// indexes it was built with. It is immutable once constructed; scoring
// and repeated splits read from it without locking.
type Store struct {
	records []Record
	users   *IDIndex
	items   *IDIndex
	seen    map[int]map[int]bool
	policy  SplitPolicy
}

// NewStore normalizes raw tabular input into an interaction store. The
// first three columns of every row are interpreted as (userId, itemId,
// interaction); extra columns are ignored. Raw IDs are remapped to
// dense zero-based codes in first-seen order.
func NewStore(rows [][]string, policy SplitPolicy) (*Store, error) {
	s := &Store{
		records: make([]Record, 0, len(rows)),
		users:   NewIDIndex(),
		items:   NewIDIndex(),
		seen:    make(map[int]map[int]bool),
		policy:  policy,
	}

	for i, row := range rows {
		if len(row) < 3 {
			return nil, &SchemaError{Row: i, Reason: "need at least 3 columns, got " + strconv.Itoa(len(row))}
		}
		value, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, &SchemaError{Row: i, Reason: "interaction value " + strconv.Quote(row[2]) + " is not numeric"}
		}

		rec := Record{
			UserCode: s.users.Code(row[0]),
			ItemCode: s.items.Code(row[1]),
			Value:    value,
		}
		s.records = append(s.records, rec)

		items := s.seen[rec.UserCode]
		if items == nil {
			items = make(map[int]bool)
			s.seen[rec.UserCode] = items
		}
		items[rec.ItemCode] = true
	}

	return s, nil
}

// Dimensions returns (numUsers, numItems), each one plus the maximum
// dense code over the entire normalized dataset. Matrices built from
// any split of this store share this shape.
func (s *Store) Dimensions() (numUsers, numItems int) {
	return s.users.Len(), s.items.Len()
}

// Len returns the number of normalized interaction records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns the normalized interaction table in input order. The
// returned slice is shared and must not be modified.
func (s *Store) Records() []Record {
	return s.records
}

// Users returns the raw-to-dense user ID index.
func (s *Store) Users() *IDIndex {
	return s.users
}

// Items returns the raw-to-dense item ID index.
func (s *Store) Items() *IDIndex {
	return s.items
}

// HasSeen reports whether the user interacted with the item anywhere
// in the full interaction history, train or test.
func (s *Store) HasSeen(userCode, itemCode int) bool {
	return s.seen[userCode][itemCode]
}

// ItemsSeenBy returns every item code the user interacted with in the
// full history, in ascending code order.
func (s *Store) ItemsSeenBy(userCode int) []int {
	items := s.seen[userCode]
	if len(items) == 0 {
		return nil
	}
	codes := make([]int, 0, len(items))
	for code := range items {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
