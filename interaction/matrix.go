package interaction

// Matrix is a sparse user-item matrix in coordinate form. The three
// parallel slices hold one (user, item, value) triplet per stored
// interaction; positions absent from the triplets are implicit zeros.
// The shape is fixed at construction so partitions built from the same
// store always agree on dimensions.
type Matrix struct {
	NumUsers int
	NumItems int
	Users    []int
	Items    []int
	Values   []float64
}

// NewMatrix creates an empty sparse matrix with the given shape.
func NewMatrix(numUsers, numItems int) *Matrix {
	return &Matrix{
		NumUsers: numUsers,
		NumItems: numItems,
	}
}

// Append stores one interaction triplet.
func (m *Matrix) Append(user, item int, value float64) error {
	if user < 0 || user >= m.NumUsers {
		return &InvalidUserError{UserCode: user, NumUsers: m.NumUsers}
	}
	if item < 0 || item >= m.NumItems {
		return &InvalidItemError{ItemCode: item, NumItems: m.NumItems}
	}
	m.Users = append(m.Users, user)
	m.Items = append(m.Items, item)
	m.Values = append(m.Values, value)
	return nil
}

// NNZ returns the number of stored interactions.
func (m *Matrix) NNZ() int {
	return len(m.Values)
}

// ForEach calls fn for every stored triplet in insertion order.
func (m *Matrix) ForEach(fn func(user, item int, value float64)) {
	for i := range m.Values {
		fn(m.Users[i], m.Items[i], m.Values[i])
	}
}

// RowSets groups the stored item codes by user code.
func (m *Matrix) RowSets() map[int]map[int]float64 {
	rows := make(map[int]map[int]float64)
	for i := range m.Values {
		row := rows[m.Users[i]]
		if row == nil {
			row = make(map[int]float64)
			rows[m.Users[i]] = row
		}
		row[m.Items[i]] = m.Values[i]
	}
	return rows
}
