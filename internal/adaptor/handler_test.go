package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testLog = zap.NewNop()

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &usecase.Error{Kind: usecase.ErrValidation, Message: "Validation failed", Fields: map[string]string{"name": "This field is required"}}, http.StatusBadRequest, "Validation failed"},
		{"not found", &usecase.Error{Kind: usecase.ErrNotFound, Message: "Branch not found"}, http.StatusNotFound, "Branch not found"},
		{"conflict", &usecase.Error{Kind: usecase.ErrConflict, Message: "Email already registered"}, http.StatusConflict, "Email already registered"},
		{"unauthorized", &usecase.Error{Kind: usecase.ErrUnauthorized, Message: "Invalid email or password"}, http.StatusUnauthorized, "Invalid email or password"},
		{"forbidden", &usecase.Error{Kind: usecase.ErrForbidden, Message: "You can only modify your own reviews"}, http.StatusForbidden, "You can only modify your own reviews"},
		{"locked", &usecase.Error{Kind: usecase.ErrLocked, Message: "Account is locked"}, http.StatusLocked, "Account is locked"},
		{"unavailable", &usecase.Error{Kind: usecase.ErrUnavailable, Message: "Failed to send OTP"}, http.StatusServiceUnavailable, "Failed to send OTP"},
		{"wrapped", fmt.Errorf("outer: %w", &usecase.Error{Kind: usecase.ErrNotFound, Message: "Offer not found"}), http.StatusNotFound, "Offer not found"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, testLog, tc.err, "test")

			assert.Equal(t, tc.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["status"])
			assert.Equal(t, tc.msg, body["message"])
		})
	}
}

func TestWriteServiceError_InvalidInputCarriesData(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &usecase.Error{
		Kind:    usecase.ErrInvalidInput,
		Message: "Invalid OTP",
		Data:    map[string]int{"attempts_left": 2},
	}
	writeServiceError(rec, testLog, err, "verify otp")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid OTP", body["message"])
	assert.Equal(t, map[string]any{"attempts_left": float64(2)}, body["data"])
}

func TestWriteServiceError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, testLog, &usecase.Error{
		Kind:    usecase.ErrValidation,
		Message: "Validation failed",
		Fields:  map[string]string{"rating": "Must be at most 5"},
	}, "create review")

	body := decodeBody(t, rec)
	assert.Equal(t, map[string]any{"rating": "Must be at most 5"}, body["errors"])
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

func TestPaginationFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=25", nil)
	p := paginationFrom(r)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.PerPage)

	r = httptest.NewRequest(http.MethodGet, "/?page=abc&limit=-1", nil)
	p = paginationFrom(r)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PerPage)
}

// ---------- review handler ----------

type stubReviewService struct {
	usecase.ReviewService
	create func(ctx context.Context, branchID, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	list   func(ctx context.Context, branchID string, req *request.ReviewFilterRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
}

func (s *stubReviewService) CreateReview(ctx context.Context, branchID, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	return s.create(ctx, branchID, userID, req)
}

func (s *stubReviewService) GetBranchReviews(ctx context.Context, branchID string, req *request.ReviewFilterRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	return s.list(ctx, branchID, req)
}

func TestCreateReviewHandler(t *testing.T) {
	userID := uuid.New()
	branchID := uuid.NewString()
	var gotBranch, gotUser string
	srv := &stubReviewService{
		create: func(_ context.Context, b, u string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
			gotBranch, gotUser = b, u
			return &response.ReviewResponse{ID: uuid.NewString(), BranchID: b, UserID: u, Rating: req.Rating}, nil
		},
	}
	h := NewReviewHandler(srv, testLog)

	router := chi.NewRouter()
	router.Post("/reviews/branches/{id}", h.CreateReview)

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/reviews/branches/"+branchID, strings.NewReader(`{"rating":5}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/reviews/branches/"+branchID, strings.NewReader(`{rating`))
		req = req.WithContext(utils.SetUserContext(req.Context(), userID, "CUSTOMER"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeBody(t, rec)["message"])
	})

	t.Run("created", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/reviews/branches/"+branchID, strings.NewReader(`{"rating":4,"comment":"Mantap"}`))
		req = req.WithContext(utils.SetUserContext(req.Context(), userID, "CUSTOMER"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, branchID, gotBranch)
		assert.Equal(t, userID.String(), gotUser)
		body := decodeBody(t, rec)
		assert.Equal(t, "Review added successfully", body["message"])
		assert.Equal(t, float64(1), body["count"])
	})
}

func TestGetBranchReviewsHandler_ParsesQuery(t *testing.T) {
	var got *request.ReviewFilterRequest
	srv := &stubReviewService{
		list: func(_ context.Context, _ string, req *request.ReviewFilterRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
			got = req
			return response.NewPaginatedResponse([]response.ReviewResponse{{Rating: 5}}, req.Page, req.PerPage, 7), nil
		},
	}
	router := chi.NewRouter()
	router.Get("/reviews/branches/{id}", NewReviewHandler(srv, testLog).GetBranchReviews)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/branches/x?rating=5&sort=highest&page=2&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating)
	assert.Equal(t, "highest", got.Sort)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.PerPage)
	assert.Equal(t, float64(7), decodeBody(t, rec)["count"])
}

// ---------- branch handler ----------

type stubBranchService struct {
	usecase.BranchService
	nearby func(ctx context.Context, req *request.NearbyBranchesRequest) ([]response.BranchResponse, error)
}

func (s *stubBranchService) GetNearby(ctx context.Context, req *request.NearbyBranchesRequest) ([]response.BranchResponse, error) {
	return s.nearby(ctx, req)
}

func TestGetNearbyHandler(t *testing.T) {
	var got *request.NearbyBranchesRequest
	srv := &stubBranchService{
		nearby: func(_ context.Context, req *request.NearbyBranchesRequest) ([]response.BranchResponse, error) {
			got = req
			if req.Lat == nil {
				return nil, &usecase.Error{Kind: usecase.ErrValidation, Message: "Validation failed", Fields: map[string]string{"lat": "This field is required"}}
			}
			return []response.BranchResponse{{Name: "Kota Tua"}, {Name: "Senayan"}}, nil
		},
	}
	h := NewBranchHandler(srv, testLog)

	rec := httptest.NewRecorder()
	h.GetNearby(rec, httptest.NewRequest(http.MethodGet, "/branches/nearby?lat=-6.1754&lng=106.8272&radius=7.5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, -6.1754, *got.Lat, 1e-9)
	assert.Equal(t, 7.5, got.Radius)
	assert.Equal(t, 0, got.Limit)
	assert.Equal(t, float64(2), decodeBody(t, rec)["count"])

	rec = httptest.NewRecorder()
	h.GetNearby(rec, httptest.NewRequest(http.MethodGet, "/branches/nearby?lng=106.8", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"lat": "This field is required"}, decodeBody(t, rec)["errors"])
}

// ---------- product handler ----------

type stubProductService struct {
	usecase.ProductService
	list func(ctx context.Context, branchID string, req *request.ProductFilterRequest) (*response.PaginatedResponse[response.ProductResponse], error)
}

func (s *stubProductService) ListBranchProducts(ctx context.Context, branchID string, req *request.ProductFilterRequest) (*response.PaginatedResponse[response.ProductResponse], error) {
	return s.list(ctx, branchID, req)
}

func TestListBranchProductsHandler_PriceParams(t *testing.T) {
	var got *request.ProductFilterRequest
	srv := &stubProductService{
		list: func(_ context.Context, _ string, req *request.ProductFilterRequest) (*response.PaginatedResponse[response.ProductResponse], error) {
			got = req
			return response.NewPaginatedResponse[response.ProductResponse](nil, 1, 10, 0), nil
		},
	}
	router := chi.NewRouter()
	router.Get("/products/branches/{id}", NewProductHandler(srv, testLog).ListBranchProducts)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/branches/b?min_price=10000&max_price=25000.50&has_offer=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10000", got.MinPrice.String())
	assert.Equal(t, "25000.5", got.MaxPrice.String())
	require.NotNil(t, got.HasOffer)
	assert.True(t, *got.HasOffer)

	got = nil
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/branches/b?min_price=murah", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, got)
}

// ---------- notification handler ----------

type stubNotificationService struct {
	usecase.NotificationService
	markRead func(ctx context.Context, notificationID, userID string) error
}

func (s *stubNotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.markRead(ctx, notificationID, userID)
}

func TestMarkReadHandler_Forbidden(t *testing.T) {
	srv := &stubNotificationService{
		markRead: func(context.Context, string, string) error {
			return &usecase.Error{Kind: usecase.ErrForbidden, Message: "You can only modify your own notifications"}
		},
	}
	router := chi.NewRouter()
	router.Patch("/notifications/{id}/mark-read", NewNotificationHandler(srv, testLog).MarkRead)

	req := httptest.NewRequest(http.MethodPatch, "/notifications/"+uuid.NewString()+"/mark-read", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), uuid.New(), "CUSTOMER"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
