package request

type CreateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

type ReviewFilterRequest struct {
	PaginatedRequest
	Rating *int   `validate:"omitempty,min=1,max=5"`
	Sort   string `validate:"omitempty,oneof=newest oldest highest lowest"`
}
