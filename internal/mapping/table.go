// Package mapping loads the behavior mapping table: a CSV resource whose rows
// are (behavior name, equivalent behavior, optional reference link).
package mapping

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"sort"

	"github.com/verustcode/rulemap/pkg/errors"
)

// Entry is the target-system equivalent of one source behavior
type Entry struct {
	Equivalent string
	// Link is a reference URL; may be empty
	Link string
}

// HasLink reports whether the entry carries a reference link
func (e Entry) HasLink() bool {
	return e.Link != ""
}

// Table maps a source behavior name to its equivalent
type Table map[string]Entry

// Lookup returns the entry for a behavior name
func (t Table) Lookup(name string) (Entry, bool) {
	e, ok := t[name]
	return e, ok
}

// Keys returns the behavior names in sorted order
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// minColumns is the number of columns every row must carry
const minColumns = 3

// Parse reads CSV rows into a Table. Every row becomes an entry, header
// included; a later row with the same key replaces the earlier one. Columns
// past the third are ignored. Stray quotes inside unquoted cells are kept
// as text.
func Parse(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := make(Table)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				return nil, errors.Wrap(errors.ErrCodeMappingParse,
					fmt.Sprintf("malformed mapping row at line %d", parseErr.Line), err)
			}
			return nil, errors.Wrap(errors.ErrCodeMappingParse, "failed to read mapping table", err)
		}

		if len(record) < minColumns {
			line, _ := reader.FieldPos(0)
			return nil, errors.New(errors.ErrCodeMappingParse,
				fmt.Sprintf("mapping row at line %d has %d column(s), want %d", line, len(record), minColumns))
		}

		table[record[0]] = Entry{Equivalent: record[1], Link: record[2]}
	}
	return table, nil
}
