package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/farmledger/internal/model"
)

// CSVReader reads a CSV export of a single account sheet. The account is
// named after the file.
type CSVReader struct{}

// Format returns the file extension this reader handles.
func (r *CSVReader) Format() string { return "csv" }

// Read parses the file at path.
func (r *CSVReader) Read(path string) ([]model.RawAccount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return []model.RawAccount{rowsToAccount(name, base, records)}, nil
}
