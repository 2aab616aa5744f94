// Package runlog keeps an append-only CSV record of pipeline runs under a
// ledger repo's logs directory.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/farmledger/internal/pipeline"
)

// Entry is one stage of one run.
type Entry struct {
	Timestamp time.Time
	Step      string
	Accounts  int
	Errors    int
	Details   string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,step,accounts,errors,details"

const (
	numFields   = 5
	logDir      = "logs"
	logFile     = "logs/run-log.csv"
	colTime     = 0
	colStep     = 1
	colAccounts = 2
	colErrors   = 3
	colDetails  = 4
)

// FromProgress records a pipeline progress report.
func FromProgress(ts time.Time, p pipeline.Progress) Entry {
	e := Entry{
		Timestamp: ts,
		Step:      p.Step.String(),
		Errors:    len(p.Errors),
	}
	switch {
	case p.Done && p.State.Final != nil:
		e.Accounts = len(p.State.Final.Originals)
		e.Details = fmt.Sprintf("tax lines %d, mkt lines %d", len(p.State.Final.Tax.Lines), len(p.State.Final.Mkt.Lines))
	case p.Step <= pipeline.StepAssets:
		e.Accounts = len(p.State.Validated) + len(p.State.Synthesized)
	default:
		e.Accounts = len(p.State.Accts)
	}
	if len(p.Errors) > 0 {
		e.Details = p.Errors[0]
		if len(p.Errors) > 1 {
			e.Details += fmt.Sprintf(" (and %d more)", len(p.Errors)-1)
		}
	}
	return e
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colStep] = e.Step
	row[colAccounts] = strconv.Itoa(e.Accounts)
	row[colErrors] = strconv.Itoa(e.Errors)
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	accounts, err := strconv.Atoi(record[colAccounts])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing accounts %q: %w", record[colAccounts], err)
	}
	errs, err := strconv.Atoi(record[colErrors])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing errors %q: %w", record[colErrors], err)
	}

	return Entry{
		Timestamp: ts,
		Step:      record[colStep],
		Accounts:  accounts,
		Errors:    errs,
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to <repoRoot>/logs/run-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
