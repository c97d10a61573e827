package entity

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseNoDelete
	BranchID uuid.UUID `db:"branch_id"`
	UserID   uuid.UUID `db:"user_id"`
	Rating   int       `db:"rating"` // 1-5
	Comment  *string   `db:"comment"`

	Username string `db:"-"`
}

type ReviewStats struct {
	Average      float64
	Total        int64
	MinRating    int
	MaxRating    int
	Distribution map[int]int64 // rating -> count, keys 1..5 always present
}
