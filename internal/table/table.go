// Package table holds raw tabular input as read from a file: a header row and
// string cells. Typing happens later, in the pipeline.
package table

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strings"
)

type Table struct {
	Header []string
	Rows   [][]string
}

// New builds a table and trims surrounding whitespace from header names.
func New(header []string, rows [][]string) Table {
	h := make([]string, len(header))
	for i, name := range header {
		h[i] = strings.TrimSpace(name)
	}
	return Table{Header: h, Rows: rows}
}

// Index returns the position of the named column, or -1.
func (t Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func (t Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Cell returns row[col] or "" when the row is short or col is negative.
func (t Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	c := Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}

// WriteHash feeds a length-prefixed encoding of the table into h, so that
// cell boundaries cannot be confused.
func (t Table) WriteHash(h hash.Hash) {
	writeRecord(h, t.Header)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(t.Rows)))
	h.Write(n[:])
	for _, r := range t.Rows {
		writeRecord(h, r)
	}
}

// Hash returns the hex SHA-256 of the table content.
func (t Table) Hash() string {
	h := sha256.New()
	t.WriteHash(h)
	return hex.EncodeToString(h.Sum(nil))
}

func writeRecord(h hash.Hash, rec []string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(rec)))
	h.Write(n[:])
	for _, cell := range rec {
		binary.BigEndian.PutUint64(n[:], uint64(len(cell)))
		h.Write(n[:])
		h.Write([]byte(cell))
	}
}
