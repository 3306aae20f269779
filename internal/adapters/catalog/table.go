// Package catalog retrieves, caches and decodes the stellar and candidate
// catalog tables.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Default table names of the Q1-Q16 release.
const (
	StellarTable   = "q1_q16_stellar"
	CandidateTable = "q1_q16_koi"
)

// Table is a named CSV table.
type Table struct {
	Name    string
	Header  []string
	Records [][]string
}

// Column returns the index of the named column or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

// Fetcher returns the rows of a table.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (Table, error)
}

// Cache stores tables by name. Get returns ErrCacheMiss for unknown names.
type Cache interface {
	Get(ctx context.Context, name string) (Table, error)
	Put(ctx context.Context, t Table) error
}

// ReadCSV parses a header line followed by records. Lines starting with
// '#' are skipped.
func ReadCSV(name string, r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("%w: %s: empty table", ErrSchema, name)
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: header: %w", ErrSchema, name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: %w", ErrSchema, name, err)
	}
	return Table{Name: name, Header: header, Records: records}, nil
}

// WriteCSV writes t in the format ReadCSV accepts.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Records); err != nil {
		return err
	}
	return cw.Error()
}

// StaticFetcher serves tables held in memory.
type StaticFetcher struct {
	tables map[string]Table
}

// NewStaticFetcher returns a fetcher serving tables by name.
func NewStaticFetcher(tables ...Table) *StaticFetcher {
	f := &StaticFetcher{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		f.tables[t.Name] = t
	}
	return f
}

// Fetch implements Fetcher.
func (f *StaticFetcher) Fetch(ctx context.Context, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}
	t, ok := f.tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}
