package interaction

import "fmt"

// SchemaError reports tabular input that cannot be interpreted as
// (userId, itemId, interaction) triplets.
type SchemaError struct {
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("interaction: bad input schema at row %d: %s", e.Row, e.Reason)
}

// DimensionError reports mismatched array or matrix shapes.
type DimensionError struct {
	Op   string
	Want string
	Got  string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("interaction: %s: want %s, got %s", e.Op, e.Want, e.Got)
}

// InvalidUserError reports a user code outside the known dense-code
// range.
type InvalidUserError struct {
	UserCode int
	NumUsers int
}

func (e *InvalidUserError) Error() string {
	return fmt.Sprintf("interaction: user code %d outside [0, %d)", e.UserCode, e.NumUsers)
}

// InvalidItemError reports an item code outside the known dense-code
// range.
type InvalidItemError struct {
	ItemCode int
	NumItems int
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("interaction: item code %d outside [0, %d)", e.ItemCode, e.NumItems)
}
