package request

import "marketplace-api/pkg/utils"

// PaginatedRequest is read from the page and limit query params.
// Limit above 100 is clamped, not rejected.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"omitempty,min=1"`
	PerPage int `json:"limit" validate:"omitempty,min=1"`
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	return utils.ClampPerPage(p.PerPage, utils.MaxPerPage)
}

// CurrentPage is Page with the default applied.
func (p PaginatedRequest) CurrentPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}
