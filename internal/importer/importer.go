// Package importer reads account sheets from disk into raw accounts. A CSV
// file is one account; every worksheet of an XLSX workbook is one account.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/farmledger/internal/model"
)

// Reader converts one file into raw accounts.
type Reader interface {
	Read(path string) ([]model.RawAccount, error)
	Format() string
}

// Registry holds readers keyed by file extension.
type Registry struct {
	readers map[string]Reader
}

// FileInfo describes a sheet file in the input directory.
type FileInfo struct {
	Name   string
	Path   string
	Format string
	Size   int64
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader. Panics on duplicate format.
func (r *Registry) Register(rd Reader) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate reader format: " + key)
	}
	r.readers[key] = rd
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVReader{})
	r.Register(&XLSXReader{})
	return r
}

// Scan returns the files in dir whose extension is one of formats, sorted by
// name. Office lock files are skipped. A missing dir yields no files.
func Scan(dir string, formats []string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !Matches(e.Name(), formats) {
			continue
		}
		format := formatOf(e.Name())
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Format: format,
			Size:   info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Matches reports whether the file name has one of formats as its
// extension. Office lock files and dot files never match.
func Matches(name string, formats []string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	format := formatOf(base)
	for _, f := range formats {
		if strings.ToLower(strings.TrimPrefix(f, ".")) == format {
			return true
		}
	}
	return false
}

func formatOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ReadAll reads every scanned file in dir with the matching reader.
func (r *Registry) ReadAll(dir string, formats []string) ([]model.RawAccount, error) {
	files, err := Scan(dir, formats)
	if err != nil {
		return nil, err
	}
	var accts []model.RawAccount
	for _, f := range files {
		// A zero-byte sheet is empty or still being saved; it has no header.
		if f.Size == 0 {
			continue
		}
		rd := r.Get(f.Format)
		if rd == nil {
			return nil, fmt.Errorf("no reader for %s files (%s)", f.Format, f.Name)
		}
		got, err := rd.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		accts = append(accts, got...)
	}
	return accts, nil
}

// rowsToAccount turns a header row plus data rows into a raw account.
// Columns with a blank header are dropped; short rows are padded with "".
func rowsToAccount(name, filename string, rows [][]string) model.RawAccount {
	acct := model.RawAccount{Name: name, Filename: filename}
	if len(rows) == 0 {
		return acct
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	for _, rec := range rows[1:] {
		row := make(model.RawRow, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			row[h] = v
		}
		acct.Lines = append(acct.Lines, row)
	}
	return acct
}
