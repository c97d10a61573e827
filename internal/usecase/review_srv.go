package usecase

import (
	"context"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	CreateReview(ctx context.Context, branchID, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetBranchReviews(ctx context.Context, branchID string, req *request.ReviewFilterRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	UpdateReview(ctx context.Context, reviewID, userID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, reviewID, userID string) error

	// Stats
	GetBranchReviewStats(ctx context.Context, branchID string) (*response.ReviewStatsResponse, error)
}

type reviewService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, branchID, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	// Parse IDs
	userUUID, err := parseCallerID(userID)
	if err != nil {
		return nil, err
	}
	branchUUID, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}

	// Check if branch exists
	branch, err := s.repo.Branch.FindByID(ctx, branchUUID)
	if err != nil {
		return nil, fmt.Errorf("find branch: %w", err)
	}
	if branch == nil {
		return nil, notFound("Branch")
	}

	// One review per user per branch
	existing, err := s.repo.Review.FindByUserAndBranch(ctx, userUUID, branchUUID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err))
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "You have already reviewed this branch")
	}

	now := s.now()
	review := &entity.Review{
		BaseNoDelete: entity.NewBaseNoDelete(now),
		BranchID:     branchUUID,
		UserID:       userUUID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("branch_id", branchID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("user_id", userID),
		zap.String("branch_id", branchID),
		zap.Int("rating", req.Rating),
	)

	return s.buildReviewResponse(ctx, review), nil
}

func (s *reviewService) GetBranchReviews(ctx context.Context, branchID string, req *request.ReviewFilterRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	branchUUID, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}

	filter := repository.ReviewFilter{
		BranchID: &branchUUID,
		Rating:   req.Rating,
		Sort:     repository.ReviewSort(req.Sort),
		Limit:    req.Limit(),
		Offset:   req.Offset(),
	}

	return s.list(ctx, filter, req.PaginatedRequest)
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	userUUID, err := parseCallerID(userID)
	if err != nil {
		return nil, err
	}

	filter := repository.ReviewFilter{
		UserID: &userUUID,
		Sort:   repository.ReviewSortNewest,
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}

	return s.list(ctx, filter, *req)
}

func (s *reviewService) UpdateReview(ctx context.Context, reviewID, userID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}

	// Update fields if provided
	updated := false

	if req.Rating != nil && *req.Rating != review.Rating {
		review.Rating = *req.Rating
		updated = true
	}

	if req.Comment != nil {
		review.Comment = req.Comment
		updated = true
	}

	if !updated {
		return s.buildReviewResponse(ctx, review), nil
	}

	review.Touch(s.now())
	if err := s.repo.Review.Update(ctx, review); err != nil {
		s.log.Error("Failed to update review",
			zap.Error(err),
			zap.String("review_id", reviewID),
		)
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.log.Info("Review updated",
		zap.String("review_id", reviewID),
		zap.String("user_id", userID),
	)

	return s.buildReviewResponse(ctx, review), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Review.Delete(ctx, review.ID); err != nil {
		s.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", reviewID),
		)
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("Review deleted",
		zap.String("review_id", reviewID),
		zap.String("user_id", userID),
		zap.String("branch_id", review.BranchID.String()),
	)

	return nil
}

func (s *reviewService) GetBranchReviewStats(ctx context.Context, branchID string) (*response.ReviewStatsResponse, error) {
	branchUUID, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Review.GetBranchStats(ctx, branchUUID)
	if err != nil {
		s.log.Error("Failed to get branch review stats",
			zap.Error(err),
			zap.String("branch_id", branchID),
		)
		return nil, fmt.Errorf("get branch review stats: %w", err)
	}

	resp := response.ReviewStatsToResponse(stats)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) list(ctx context.Context, filter repository.ReviewFilter, page request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	reviews, err := s.repo.Review.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list reviews", zap.Error(err))
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	total, err := s.repo.Review.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count reviews", zap.Error(err))
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	items := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		items[i] = response.ReviewToResponse(review)
	}

	return response.NewPaginatedResponse(items, page.CurrentPage(), page.Limit(), total), nil
}

// ownedReview loads a review and checks it was written by userID.
func (s *reviewService) ownedReview(ctx context.Context, reviewID, userID string) (*entity.Review, error) {
	reviewUUID, err := parseID(reviewID, "review")
	if err != nil {
		return nil, err
	}
	userUUID, err := parseCallerID(userID)
	if err != nil {
		return nil, err
	}

	review, err := s.repo.Review.FindByID(ctx, reviewUUID)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return nil, notFound("Review")
	}

	if review.UserID != userUUID {
		s.log.Warn("Review owner mismatch",
			zap.String("review_id", reviewID),
			zap.String("user_id", userID),
		)
		return nil, newError(ErrForbidden, "You can only modify your own reviews")
	}

	return review, nil
}

func (s *reviewService) buildReviewResponse(ctx context.Context, review *entity.Review) *response.ReviewResponse {
	if review.Username == "" {
		if user, _ := s.repo.User.FindByID(ctx, review.UserID); user != nil {
			review.Username = user.Username
		}
	}

	reviewResp := response.ReviewToResponse(review)
	return &reviewResp
}
