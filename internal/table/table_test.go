package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_IndexAndCell(t *testing.T) {
	tbl := New([]string{" country ", "policy_count"}, [][]string{
		{"Germany", "10"},
		{"France"},
	})

	assert.Equal(t, 0, tbl.Index("country"))
	assert.Equal(t, -1, tbl.Index("missing"))
	assert.True(t, tbl.Has("policy_count"))
	assert.Equal(t, "10", tbl.Cell(0, 1))
	assert.Equal(t, "", tbl.Cell(1, 1), "short rows read as empty")
	assert.Equal(t, "", tbl.Cell(5, 0))
	assert.Equal(t, "", tbl.Cell(0, -1))
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := New([]string{"a"}, [][]string{{"1"}})
	c := tbl.Clone()
	c.Rows[0][0] = "2"
	c.Header[0] = "b"

	require.Equal(t, "1", tbl.Rows[0][0])
	require.Equal(t, "a", tbl.Header[0])
}

func TestTable_HashDistinguishesCellBoundaries(t *testing.T) {
	a := New([]string{"x", "y"}, [][]string{{"ab", "c"}})
	b := New([]string{"x", "y"}, [][]string{{"a", "bc"}})
	same := New([]string{"x", "y"}, [][]string{{"ab", "c"}})

	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Hash(), same.Hash())
}
