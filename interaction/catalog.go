package interaction

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Catalog is a side table mapping raw item IDs to descriptive display
// attributes. It only enriches final output and takes no part in
// scoring; a missing entry is absent, never an error.
type Catalog struct {
	columns []string
	rows    map[string][]string
}

// NewCatalog creates an empty catalog with the given attribute column
// names.
func NewCatalog(columns []string) *Catalog {
	return &Catalog{
		columns: columns,
		rows:    make(map[string][]string),
	}
}

// Columns returns the attribute column names.
func (c *Catalog) Columns() []string {
	return c.columns
}

// Len returns the number of catalogued items.
func (c *Catalog) Len() int {
	return len(c.rows)
}

// Add stores the attributes for an item, padding or truncating to the
// catalog's column count.
func (c *Catalog) Add(itemID string, attributes []string) {
	row := make([]string, len(c.columns))
	copy(row, attributes)
	c.rows[itemID] = row
}

// Attributes returns the attribute values for an item, or false when
// the item is not catalogued.
func (c *Catalog) Attributes(itemID string) ([]string, bool) {
	row, ok := c.rows[itemID]
	return row, ok
}

// ReadCatalogCSV loads a catalog from a CSV file whose first column is
// the raw item ID and whose header row names the attribute columns.
func ReadCatalogCSV(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Row: 0, Reason: "catalog file is empty"}
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, &SchemaError{Row: 0, Reason: "catalog needs an ID column and at least one attribute column"}
	}

	catalog := NewCatalog(header[1:])
	for _, row := range rows[1:] {
		if len(row) < 1 {
			continue
		}
		catalog.Add(row[0], row[1:])
	}

	return catalog, nil
}
