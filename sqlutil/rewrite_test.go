package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjectRowid(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		rowid    uint64
		expected string
	}{
		{
			name:     "columns listed, rowid present",
			sql:      "INSERT INTO products (rowid, category) VALUES (99, 'electronics')",
			rowid:    7,
			expected: "INSERT INTO products (rowid, category) VALUES (7, 'electronics')",
		},
		{
			name:     "columns listed, rowid absent",
			sql:      "INSERT INTO products (category, price) VALUES ('electronics', 9.99)",
			rowid:    7,
			expected: "INSERT INTO products (rowid, category, price) VALUES (7, 'electronics', 9.99)",
		},
		{
			name:     "no column list",
			sql:      "INSERT INTO products VALUES ('electronics', 9.99)",
			rowid:    7,
			expected: "INSERT INTO products VALUES (7, 'electronics', 9.99)",
		},
		{
			name:     "unrecognized shape returned unchanged",
			sql:      "INSERT INTO products SELECT * FROM staging",
			rowid:    7,
			expected: "INSERT INTO products SELECT * FROM staging",
		},
		{
			name:     "case insensitive rowid match",
			sql:      "insert into products (ROWID, category) values (1, 'x')",
			rowid:    42,
			expected: "INSERT INTO products (ROWID, category) VALUES (42, 'x')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InjectRowid(tt.sql, tt.rowid))
		})
	}
}

func TestInjectRowidIdempotence(t *testing.T) {
	sql := "INSERT INTO products (rowid, category) VALUES (99, 'electronics')"
	once := InjectRowid(sql, 7)
	twice := InjectRowid(once, 7)
	assert.Equal(t, once, twice)
}

func TestReplaceSelectWithCount(t *testing.T) {
	q := "SELECT * FROM products WHERE category = 'electronics' ORDER BY price"
	assert.Equal(t, "SELECT count(*) FROM products WHERE category = 'electronics' ORDER BY price", ReplaceSelectWithCount(q))
}

func TestReplaceSelectWithRowids(t *testing.T) {
	q := "SELECT * FROM products WHERE category = 'electronics'"
	assert.Equal(t, "SELECT rowid FROM products WHERE category = 'electronics'", ReplaceSelectWithRowids(q))
}

func TestReplaceSelectWithRowidsLeavesSubqueryAlone(t *testing.T) {
	q := "SELECT * FROM products WHERE category IN (SELECT name FROM cats)"
	assert.Equal(t, "SELECT rowid FROM products WHERE category IN (SELECT name FROM cats)", ReplaceSelectWithRowids(q))
}

func TestReplaceSelectWithCountLeavesSubqueryAlone(t *testing.T) {
	q := "SELECT * FROM products WHERE category IN (SELECT name FROM cats)"
	assert.Equal(t, "SELECT count(*) FROM products WHERE category IN (SELECT name FROM cats)", ReplaceSelectWithCount(q))
}

func TestSelectRewriteComposition(t *testing.T) {
	q := "SELECT id, name FROM products p JOIN categories c ON p.cat_id = c.id WHERE c.name = 'electronics'"
	lhs := ReplaceSelectWithCount(ReplaceSelectWithRowids(q))
	rhs := ReplaceSelectWithCount(q)
	assert.Equal(t, rhs, lhs)
}

func TestVectorTableName(t *testing.T) {
	assert.Equal(t, "vt_vector_products", VectorTableName("products"))
}

func TestParseCollectionName(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
		ok       bool
	}{
		{"CREATE TABLE products (id INT)", "products", true},
		{"INSERT INTO products (a) VALUES (1)", "products", true},
		{"SELECT * FROM products WHERE a = 1", "products", true},
		{"not sql at all", "", false},
	}
	for _, tt := range tests {
		name, ok := ParseCollectionName(tt.sql)
		assert.Equal(t, tt.ok, ok)
		if ok {
			assert.Equal(t, tt.expected, name)
		}
	}
}

func TestValidCollectionName(t *testing.T) {
	assert.True(t, ValidCollectionName("products"))
	assert.True(t, ValidCollectionName("_hidden_1"))
	assert.False(t, ValidCollectionName("1products"))
	assert.False(t, ValidCollectionName("prod-ucts"))
	assert.False(t, ValidCollectionName(""))
}
