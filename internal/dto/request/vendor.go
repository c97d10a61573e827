package request

type CreateVendorRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=255"`
	Image         *string `json:"image,omitempty" validate:"omitempty,url"`
	About         *string `json:"about,omitempty" validate:"omitempty,max=2000"`
	SubscriptDate *string `json:"subscript_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type UpdateVendorRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Image         *string `json:"image,omitempty" validate:"omitempty,url"`
	About         *string `json:"about,omitempty" validate:"omitempty,max=2000"`
	SubscriptDate *string `json:"subscript_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type VendorFilterRequest struct {
	PaginatedRequest
	Search   *string
	IsActive *bool
	// Location is "lat,lng,radius_km".
	Location *string
}
