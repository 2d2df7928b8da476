package interaction

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ReadInteractionsCSV reads a ratings file into tabular rows suitable
// for NewStore. Each row needs at least (userId, itemId, interaction)
// columns; a leading header row is detected by its third column not
// parsing as a number and skipped.
func ReadInteractionsCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open interactions file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read interactions file: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) >= 3 {
		if _, err := strconv.ParseFloat(rows[0][2], 64); err != nil {
			rows = rows[1:]
		}
	}

	return rows, nil
}
