package pipeline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
)

// SaveScoreArchive writes a dense users-by-items score matrix as
// LZ4-compressed little-endian float64 rows behind a dimension header.
// All rows must share one length.
func SaveScoreArchive(path string, scores [][]float64) error {
	users := int32(len(scores))
	if users == 0 {
		return fmt.Errorf("empty score matrix")
	}
	items := int32(len(scores[0]))

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, users)
	binary.Write(&buf, binary.LittleEndian, items)

	for _, row := range scores {
		if int32(len(row)) != items {
			return fmt.Errorf("ragged score matrix: row has %d items, want %d", len(row), items)
		}
		binary.Write(&buf, binary.LittleEndian, row)
	}

	var out bytes.Buffer
	w := lz4.NewWriter(&out)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	w.Close()

	return os.WriteFile(path, out.Bytes(), 0644)
}

// LoadScoreArchive reads a matrix written by SaveScoreArchive.
func LoadScoreArchive(path string) ([][]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := lz4.NewReader(bytes.NewReader(raw))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}

	reader := bytes.NewReader(buf.Bytes())

	var users, items int32
	if err := binary.Read(reader, binary.LittleEndian, &users); err != nil {
		return nil, fmt.Errorf("truncated score archive: %w", err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &items); err != nil {
		return nil, fmt.Errorf("truncated score archive: %w", err)
	}

	scores := make([][]float64, users)
	for i := range scores {
		scores[i] = make([]float64, items)
		if err := binary.Read(reader, binary.LittleEndian, scores[i]); err != nil {
			return nil, fmt.Errorf("truncated score archive: %w", err)
		}
	}

	return scores, nil
}
