package main

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// unescaper rewrites backslash escapes found inside quoted CSV fields into
// the form encoding/csv understands: \" becomes "" and \n a newline. Bytes
// outside quotes pass through untouched.
type unescaper struct {
	src     *bufio.Reader
	pending []byte
	inQuote bool
}

func newUnescaper(r io.Reader) *unescaper {
	return &unescaper{src: bufio.NewReader(r)}
}

func (u *unescaper) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(u.pending) > 0 {
			c := copy(p[n:], u.pending)
			u.pending = u.pending[c:]
			n += c
			continue
		}
		b, err := u.src.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		switch {
		case b == '"':
			u.inQuote = !u.inQuote
			p[n] = b
			n++
		case b == '\\' && u.inQuote:
			next, err := u.src.ReadByte()
			if err != nil {
				p[n] = b
				n++
				continue
			}
			switch next {
			case '"':
				u.pending = []byte{'"', '"'}
			case 'n':
				u.pending = []byte{'\n'}
			default:
				u.pending = []byte{next}
			}
		default:
			p[n] = b
			n++
		}
	}
	return n, nil
}

// table is a CSV file indexed by header name.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "while opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(newUnescaper(f))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "while parsing %s", path)
	}
	if len(all) == 0 {
		return nil, errors.Errorf("%s has no header row", path)
	}

	t := &table{header: all[0], index: make(map[string]int), rows: all[1:]}
	for i, h := range t.header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.header[i] = h
		t.index[h] = i
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// column returns the first of cols present in the header.
func (t *table) column(cols ...string) (string, bool) {
	for _, c := range cols {
		if t.has(c) {
			return c, true
		}
	}
	return "", false
}

func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// records turns every row into a record, coercing the numeric columns.
func (t *table) records(numeric ...string) []record {
	isNum := make(map[string]bool, len(numeric))
	for _, n := range numeric {
		isNum[n] = true
	}
	out := make([]record, 0, len(t.rows))
	for _, row := range t.rows {
		rec := make(record, len(t.header))
		for _, h := range t.header {
			v := t.get(row, h)
			if !isNum[h] {
				rec[h] = v
				continue
			}
			if f, ok := parseNumber(v); ok {
				rec[h] = f
			} else {
				rec[h] = nil
			}
		}
		out = append(out, rec)
	}
	return out
}
