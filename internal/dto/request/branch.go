package request

import "github.com/shopspring/decimal"

type CreateBranchRequest struct {
	Name         string            `json:"name" validate:"required,min=2,max=255"`
	Image        *string           `json:"image,omitempty" validate:"omitempty,url"`
	Lat          *float64          `json:"lat" validate:"required,latitude"`
	Lng          *float64          `json:"lng" validate:"required,longitude"`
	Address      *string           `json:"address,omitempty" validate:"omitempty,max=500"`
	City         *string           `json:"city,omitempty" validate:"omitempty,max=100"`
	WorkTime     map[string]string `json:"work_time,omitempty" validate:"omitempty,dive,keys,oneof=sun mon tue wed thu fri sat,endkeys,hhmm_range"`
	DeliveryTime *string           `json:"delivery_time,omitempty" validate:"omitempty,max=50"`
	MinOrder     *decimal.Decimal  `json:"min_order,omitempty"`
	DeliveryFee  *decimal.Decimal  `json:"delivery_fee,omitempty"`
	FreeDelivery *bool             `json:"free_delivery,omitempty"`
	IsActive     *bool             `json:"is_active,omitempty"`
}

type UpdateBranchRequest struct {
	Name         *string           `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Image        *string           `json:"image,omitempty" validate:"omitempty,url"`
	Lat          *float64          `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng          *float64          `json:"lng,omitempty" validate:"omitempty,longitude"`
	Address      *string           `json:"address,omitempty" validate:"omitempty,max=500"`
	City         *string           `json:"city,omitempty" validate:"omitempty,max=100"`
	WorkTime     map[string]string `json:"work_time,omitempty" validate:"omitempty,dive,keys,oneof=sun mon tue wed thu fri sat,endkeys,hhmm_range"`
	DeliveryTime *string           `json:"delivery_time,omitempty" validate:"omitempty,max=50"`
	MinOrder     *decimal.Decimal  `json:"min_order,omitempty"`
	DeliveryFee  *decimal.Decimal  `json:"delivery_fee,omitempty"`
	FreeDelivery *bool             `json:"free_delivery,omitempty"`
	IsActive     *bool             `json:"is_active,omitempty"`
}

type BranchFilterRequest struct {
	PaginatedRequest
	Search       *string
	City         *string
	VendorID     *string
	FreeDelivery *bool
	HasOffer     *bool
	MinRating    *float64
	Lat          *float64
	Lng          *float64
	Radius       *float64
}

type NearbyBranchesRequest struct {
	Lat    *float64
	Lng    *float64
	Radius float64
	Limit  int
}
