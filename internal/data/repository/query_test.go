package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	type cond struct {
		sql  string
		args []any
	}

	tests := []struct {
		name          string
		conds         []cond
		limit, offset int
		wantWhere     string
		wantPage      string
		wantArgs      []any
	}{
		{
			name:      "no filters, unpaginated",
			wantWhere: "",
			wantPage:  "",
			wantArgs:  nil,
		},
		{
			name:      "no filters, paginated",
			limit:     10,
			offset:    20,
			wantWhere: "",
			wantPage:  " LIMIT $1 OFFSET $2",
			wantArgs:  []any{10, 20},
		},
		{
			name: "placeholders numbered in insertion order",
			conds: []cond{
				{"city = ?", []any{"Jakarta"}},
				{"is_active = true", nil},
				{"lat BETWEEN ? AND ?", []any{-6.3, -6.1}},
			},
			limit:     5,
			offset:    0,
			wantWhere: " WHERE city = $1 AND is_active = true AND lat BETWEEN $2 AND $3",
			wantPage:  " LIMIT $4 OFFSET $5",
			wantArgs:  []any{"Jakarta", -6.3, -6.1, 5, 0},
		},
		{
			name: "same argument used twice",
			conds: []cond{
				{"(name ILIKE ? OR address ILIKE ?)", []any{"%kopi%", "%kopi%"}},
			},
			wantWhere: " WHERE (name ILIKE $1 OR address ILIKE $2)",
			wantPage:  "",
			wantArgs:  []any{"%kopi%", "%kopi%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w whereBuilder
			for _, c := range tt.conds {
				w.add(c.sql, c.args...)
			}

			assert.Equal(t, tt.wantWhere, w.where())
			clause, args := w.page(tt.limit, tt.offset)
			assert.Equal(t, tt.wantPage, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestWhereBuilder_PageDoesNotMutateArgs(t *testing.T) {
	var w whereBuilder
	w.add("vendor_id = ?", "v1")

	_, args := w.page(10, 0)
	assert.Len(t, args, 3)
	// the count query still sees only the filter args
	assert.Equal(t, []any{"v1"}, w.args)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%kopi%", likePattern("  kopi "))
}
