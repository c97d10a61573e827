package usecase

import (
	"context"
	"testing"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/pricing"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monas, central Jakarta.
const (
	monasLat = -6.1754
	monasLng = 106.8272
)

func newBranch(vendorID uuid.UUID, name string, lat, lng float64) *entity.Branch {
	return &entity.Branch{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		VendorID:     vendorID,
		Name:         name,
		Lat:          lat,
		Lng:          lng,
		IsActive:     true,
	}
}

type catalogFixture struct {
	repo     *repository.Repository
	vendors  *fakeVendorRepo
	branches *fakeBranchRepo
	offers   *fakeOfferRepo
	clock    *clock

	vendorA, vendorB        *entity.Vendor
	kotaTua, senayan, bogor *entity.Branch
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{clock: newClock()}

	f.vendorA = &entity.Vendor{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, Name: "Warung Jakarta", IsActive: true, SubscriptDate: f.clock.Now().AddDate(0, -2, 0)}
	f.vendorB = &entity.Vendor{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, Name: "Bogor Bakery", IsActive: true, SubscriptDate: f.clock.Now().AddDate(-2, 0, 0)}

	f.kotaTua = newBranch(f.vendorA.ID, "Kota Tua", -6.1352, 106.8133)
	f.senayan = newBranch(f.vendorA.ID, "Senayan", -6.2183, 106.8020)
	f.bogor = newBranch(f.vendorB.ID, "Bogor", -6.5971, 106.8060)

	f.vendors = newFakeVendorRepo(f.vendorA, f.vendorB)
	f.branches = newFakeBranchRepo(f.kotaTua, f.senayan, f.bogor)
	f.offers = newFakeOfferRepo()
	f.repo = &repository.Repository{
		Vendor: f.vendors,
		Branch: f.branches,
		Offer:  f.offers,
		Review: newFakeReviewRepo(),
		User:   newFakeUserRepo(),
	}
	return f
}

func (f *catalogFixture) branchService() BranchService {
	srv := NewBranchService(f.repo, pricing.NewEngine(f.offers), testLog)
	srv.(*branchService).now = f.clock.Now
	return srv
}

func (f *catalogFixture) vendorService() VendorService {
	srv := NewVendorService(f.repo, testLog)
	srv.(*vendorService).now = f.clock.Now
	return srv
}

func TestGetNearby_SortedByDistance(t *testing.T) {
	f := newCatalogFixture()
	srv := f.branchService()

	items, err := srv.GetNearby(context.Background(), &request.NearbyBranchesRequest{
		Lat: ptr(monasLat),
		Lng: ptr(monasLng),
	})
	require.NoError(t, err)

	require.Len(t, items, 2, "Bogor is outside the default 10 km")
	assert.Equal(t, "Kota Tua", items[0].Name)
	assert.Equal(t, "Senayan", items[1].Name)

	require.NotNil(t, items[0].Distance)
	assert.InDelta(t, 4.7, *items[0].Distance, 0.2)
	assert.Equal(t, utils.Round2(*items[0].Distance), *items[0].Distance)
	assert.Less(t, *items[0].Distance, *items[1].Distance)

	require.NotNil(t, f.branches.last.Box, "bounding box prefilter must reach the repository")
}

func TestGetNearby_LimitAndRadius(t *testing.T) {
	f := newCatalogFixture()
	srv := f.branchService()

	items, err := srv.GetNearby(context.Background(), &request.NearbyBranchesRequest{
		Lat: ptr(monasLat), Lng: ptr(monasLng), Limit: 1,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Kota Tua", items[0].Name)

	items, err = srv.GetNearby(context.Background(), &request.NearbyBranchesRequest{
		Lat: ptr(monasLat), Lng: ptr(monasLng), Radius: 60,
	})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, "Bogor", items[2].Name)
}

func TestGetNearby_RequiresCoordinates(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.branchService().GetNearby(context.Background(), &request.NearbyBranchesRequest{Lat: ptr(monasLat)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.branchService().GetNearby(context.Background(), &request.NearbyBranchesRequest{Lat: ptr(95.0), Lng: ptr(monasLng)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListBranches_LocationPaginatesAfterHaversine(t *testing.T) {
	f := newCatalogFixture()

	resp, err := f.branchService().ListBranches(context.Background(), &request.BranchFilterRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 2, PerPage: 1},
		Lat:              ptr(monasLat),
		Lng:              ptr(monasLng),
		Radius:           ptr(10.0),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Senayan", resp.Items[0].Name)

	// the repository saw the box without paging
	assert.Zero(t, f.branches.last.Limit)
	assert.Zero(t, f.branches.last.Offset)
}

func TestListBranches_OnlyActive(t *testing.T) {
	f := newCatalogFixture()
	f.senayan.IsActive = false

	resp, err := f.branchService().ListBranches(context.Background(), &request.BranchFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.Total)
	for _, b := range resp.Items {
		assert.NotEqual(t, "Senayan", b.Name)
		assert.Nil(t, b.Distance)
	}
}

func TestListBranches_HasOfferUsesCurrentTime(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.branchService().ListBranches(context.Background(), &request.BranchFilterRequest{HasOffer: ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, f.branches.last.HasOfferAt)
	assert.Equal(t, f.clock.Now(), *f.branches.last.HasOfferAt)
}

func TestGetBranch_ActiveOffersAndOpenFlag(t *testing.T) {
	f := newCatalogFixture()
	now := f.clock.Now() // Monday 10:00 UTC
	f.kotaTua.WorkTime = entity.WorkTime{"mon": "08:00-22:00"}

	f.offers.offers = []*entity.Offer{
		{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			Target:       entity.BranchRef(f.kotaTua.ID),
			Kind:         entity.OfferPercentage,
			Value:        decimal.NewFromInt(10),
			Title:        "Opening week",
			StartDate:    now.Add(-time.Hour),
			EndDate:      now.Add(time.Hour),
			IsActive:     true,
		},
		{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			Target:       entity.BranchRef(f.kotaTua.ID),
			Kind:         entity.OfferFixed,
			Value:        decimal.NewFromInt(5000),
			Title:        "Last month",
			StartDate:    now.AddDate(0, -1, 0),
			EndDate:      now.Add(-time.Hour),
			IsActive:     true,
		},
	}

	detail, err := f.branchService().GetBranch(context.Background(), f.kotaTua.ID.String())
	require.NoError(t, err)
	assert.True(t, detail.IsOpen)
	require.Len(t, detail.ActiveOffers, 1)
	assert.Equal(t, "Opening week", detail.ActiveOffers[0].Title)
	assert.True(t, detail.ActiveOffers[0].IsValid)
}

func TestGetBranch_NotFound(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.branchService().GetBranch(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.branchService().GetBranch(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.EqualError(t, err, "Invalid branch ID")
}

func TestCreateBranch(t *testing.T) {
	f := newCatalogFixture()
	srv := f.branchService()

	req := &request.CreateBranchRequest{
		Name:        "Kemang",
		Lat:         ptr(-6.2607),
		Lng:         ptr(106.8137),
		WorkTime:    map[string]string{"fri": "20:00-02:00"},
		DeliveryFee: ptr(decimal.NewFromInt(-1)),
	}
	_, err := srv.CreateBranch(context.Background(), f.vendorA.ID.String(), req)
	assert.ErrorIs(t, err, ErrValidation)

	req.DeliveryFee = ptr(decimal.NewFromInt(8000))
	_, err = srv.CreateBranch(context.Background(), uuid.NewString(), req)
	assert.ErrorIs(t, err, ErrNotFound)

	resp, err := srv.CreateBranch(context.Background(), f.vendorA.ID.String(), req)
	require.NoError(t, err)
	assert.Equal(t, "8000.00", resp.DeliveryFee)
	assert.Equal(t, f.vendorA.ID.String(), resp.VendorID)
	assert.True(t, resp.IsActive)
}

func TestDeactivateAndActivateBranch(t *testing.T) {
	f := newCatalogFixture()
	srv := f.branchService()

	require.NoError(t, srv.DeactivateBranch(context.Background(), f.kotaTua.ID.String()))
	assert.False(t, f.kotaTua.IsActive)

	// vendor staff still see inactive branches
	all, err := srv.GetVendorBranches(context.Background(), f.vendorA.ID.String())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, srv.ActivateBranch(context.Background(), f.kotaTua.ID.String()))
	assert.True(t, f.kotaTua.IsActive)
}

func TestListVendors_ByLocation(t *testing.T) {
	f := newCatalogFixture()
	srv := f.vendorService()

	resp, err := srv.ListVendors(context.Background(), &request.VendorFilterRequest{
		Location: ptr("-6.1754,106.8272,10"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, f.vendorA.ID.String(), resp.Items[0].ID)
	assert.Len(t, f.vendors.last.IDs, 1, "vendor with two nearby branches is listed once")

	// nothing near the north pole, and that must not mean "no filter"
	resp, err = srv.ListVendors(context.Background(), &request.VendorFilterRequest{
		Location: ptr("89.9,0,5"),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Pagination.Total)
}

func TestListVendors_BadLocation(t *testing.T) {
	f := newCatalogFixture()

	for _, loc := range []string{"-6.1,106.8", "a,b,c", "-6.1,106.8,0"} {
		_, err := f.vendorService().ListVendors(context.Background(), &request.VendorFilterRequest{Location: ptr(loc)})
		assert.ErrorIs(t, err, ErrValidation, loc)
	}
}

func TestVendorSubscription(t *testing.T) {
	f := newCatalogFixture()
	srv := f.vendorService()

	expired, err := srv.GetExpiredSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "Bogor Bakery", expired[0].Name)
	assert.False(t, expired[0].SubscriptionActive)

	detail, err := srv.GetVendor(context.Background(), f.vendorA.ID.String())
	require.NoError(t, err)
	assert.True(t, detail.SubscriptionActive)
	assert.Len(t, detail.Branches, 2)
}

func TestCreateVendor_SubscriptDate(t *testing.T) {
	f := newCatalogFixture()
	srv := f.vendorService()

	resp, err := srv.CreateVendor(context.Background(), &request.CreateVendorRequest{
		Name:          "Sate Senayan",
		SubscriptDate: ptr("2025-01-15"),
	})
	require.NoError(t, err)
	assert.True(t, resp.SubscriptionActive)

	_, err = srv.CreateVendor(context.Background(), &request.CreateVendorRequest{
		Name:          "Sate Senayan",
		SubscriptDate: ptr("15/01/2025"),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteVendor_Soft(t *testing.T) {
	f := newCatalogFixture()

	require.NoError(t, f.vendorService().DeleteVendor(context.Background(), f.vendorB.ID.String()))
	assert.False(t, f.vendorB.IsActive)
	assert.Contains(t, f.vendors.vendors, f.vendorB.ID)
}
