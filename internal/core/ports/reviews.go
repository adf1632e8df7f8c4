package ports

import (
	"context"

	"github.com/reviewhub/review-api/internal/core/domain"
)

// ReviewRepository stores reviews. Create must rely on the store's unique
// (title, author) constraint and surface a violation as
// domain.ErrReviewExists; any earlier existence check is advisory only.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) (*domain.Review, error)
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	FindByTitleAndAuthor(ctx context.Context, titleID, authorID string) (*domain.Review, error)
	ListByTitle(ctx context.Context, titleID string, page, limit int) ([]domain.Review, int64, error)
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id string) error
	// AverageScore computes the mean score for a title in the store; nil when
	// the title has no reviews.
	AverageScore(ctx context.Context, titleID string) (*float64, error)
	// Cascade hooks.
	DeleteByTitle(ctx context.Context, titleID string) ([]string, error)
	DeleteByAuthor(ctx context.Context, authorID string) ([]string, error)
}

// CommentRepository stores comments on reviews.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByReview(ctx context.Context, reviewID string, page, limit int) ([]domain.Comment, int64, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id string) error
	// Cascade hooks.
	DeleteByReview(ctx context.Context, reviewID string) error
	DeleteByReviews(ctx context.Context, reviewIDs []string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}

// ListReviewsResult is a page of reviews for one title.
type ListReviewsResult struct {
	Items []domain.Review
	Total int64
	Page  int
	Limit int
}

// ListCommentsResult is a page of comments for one review.
type ListCommentsResult struct {
	Items []domain.Comment
	Total int64
	Page  int
	Limit int
}

// ReviewService implements review and comment use-cases, including the
// one-review-per-(title, author) integrity rule and ownership gating.
type ReviewService interface {
	ListReviews(ctx context.Context, titleID string, page, limit int) (*ListReviewsResult, error)
	GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error)
	CreateReview(ctx context.Context, p domain.Principal, titleID, text string, score int) (*domain.Review, error)
	UpdateReview(ctx context.Context, p domain.Principal, titleID, reviewID string, text *string, score *int) (*domain.Review, error)
	DeleteReview(ctx context.Context, p domain.Principal, titleID, reviewID string) error

	ListComments(ctx context.Context, reviewID string, page, limit int) (*ListCommentsResult, error)
	GetComment(ctx context.Context, reviewID, commentID string) (*domain.Comment, error)
	CreateComment(ctx context.Context, p domain.Principal, reviewID, text string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, p domain.Principal, reviewID, commentID, text string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, p domain.Principal, reviewID, commentID string) error
}
