package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/reviewhub/review-api/internal/api/metrics"
	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// ReviewService implements review and comment use-cases. It owns the
// one-review-per-(title, author) rule: an advisory existence check runs
// first for a friendly error, but the store's unique index is what decides
// the race between two concurrent first-time reviews.
type ReviewService struct {
	titles   ports.TitleRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

func NewReviewService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{titles: titles, reviews: reviews, comments: comments, audit: audit, log: log}
}

// --- Reviews ---

func (s *ReviewService) ListReviews(ctx context.Context, titleID string, page, limit int) (*ports.ListReviewsResult, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.reviews.ListByTitle(ctx, titleID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &ports.ListReviewsResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.TitleID != titleID {
		return nil, domain.ErrReviewNotFound
	}
	return r, nil
}

func (s *ReviewService) CreateReview(ctx context.Context, p domain.Principal, titleID, text string, score int) (*domain.Review, error) {
	if err := domain.Authorize(p, domain.ActionCreateContent, ""); err != nil {
		return nil, s.deny("review", err, p)
	}
	if !domain.ValidScore(score) {
		return nil, domain.ErrScoreOutOfRange
	}
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}

	// Advisory pre-check; the unique index on (title, author) remains the
	// source of truth under concurrency.
	if _, err := s.reviews.FindByTitleAndAuthor(ctx, titleID, p.ID()); err == nil {
		metrics.ReviewConflictsTotal.Inc()
		return nil, domain.ErrReviewExists
	} else if err != domain.ErrReviewNotFound {
		return nil, fmt.Errorf("create review: %w", err)
	}

	review := &domain.Review{
		TitleID:        titleID,
		AuthorID:       p.ID(),
		AuthorUsername: p.Account.Username,
		Text:           text,
		Score:          score,
		PubDate:        time.Now().UTC(),
	}
	created, err := s.reviews.Create(ctx, review)
	if err != nil {
		if err == domain.ErrReviewExists {
			metrics.ReviewConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.ReviewsCreatedTotal.Inc()
	s.log.Info().Str("title_id", titleID).Str("author", review.AuthorUsername).Int("score", score).Msg("review created")
	return created, nil
}

// UpdateReview edits an existing review. The uniqueness rule does not apply:
// the record already exists, no new (title, author) pair is introduced.
func (s *ReviewService) UpdateReview(ctx context.Context, p domain.Principal, titleID, reviewID string, text *string, score *int) (*domain.Review, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionModifyContent, review.AuthorID); err != nil {
		return nil, s.deny("review", err, p)
	}
	if text != nil {
		review.Text = *text
	}
	if score != nil {
		if !domain.ValidScore(*score) {
			return nil, domain.ErrScoreOutOfRange
		}
		review.Score = *score
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes a review and cascades to its comments.
func (s *ReviewService) DeleteReview(ctx context.Context, p domain.Principal, titleID, reviewID string) error {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionModifyContent, review.AuthorID); err != nil {
		return s.deny("review", err, p)
	}
	if err := s.comments.DeleteByReview(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: cascade comments: %w", err)
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.log.Info().Str("review_id", reviewID).Str("deleted_by", p.Account.Username).Msg("review deleted")
	return nil
}

// --- Comments ---

func (s *ReviewService) ListComments(ctx context.Context, reviewID string, page, limit int) (*ports.ListCommentsResult, error) {
	if _, err := s.reviews.FindByID(ctx, reviewID); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.comments.ListByReview(ctx, reviewID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &ports.ListCommentsResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ReviewService) GetComment(ctx context.Context, reviewID, commentID string) (*domain.Comment, error) {
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.ReviewID != reviewID {
		return nil, domain.ErrCommentNotFound
	}
	return c, nil
}

func (s *ReviewService) CreateComment(ctx context.Context, p domain.Principal, reviewID, text string) (*domain.Comment, error) {
	if err := domain.Authorize(p, domain.ActionCreateContent, ""); err != nil {
		return nil, s.deny("comment", err, p)
	}
	if _, err := s.reviews.FindByID(ctx, reviewID); err != nil {
		return nil, err
	}
	comment := &domain.Comment{
		ReviewID:       reviewID,
		AuthorID:       p.ID(),
		AuthorUsername: p.Account.Username,
		Text:           text,
		PubDate:        time.Now().UTC(),
	}
	created, err := s.comments.Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, p domain.Principal, reviewID, commentID, text string) (*domain.Comment, error) {
	comment, err := s.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionModifyContent, comment.AuthorID); err != nil {
		return nil, s.deny("comment", err, p)
	}
	comment.Text = text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, p domain.Principal, reviewID, commentID string) error {
	comment, err := s.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionModifyContent, comment.AuthorID); err != nil {
		return s.deny("comment", err, p)
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// deny records the denial in the audit trail and metrics before passing the
// error through unchanged.
func (s *ReviewService) deny(resource string, err error, p domain.Principal) error {
	reason := "forbidden"
	if err == domain.ErrUnauthenticated {
		reason = "unauthenticated"
	}
	metrics.PermissionDenialsTotal.WithLabelValues(resource, reason).Inc()
	if s.audit != nil && p.Account != nil {
		s.audit.Record(domain.AuditEvent{
			Kind:      domain.AuditPermissionDenied,
			Username:  p.Account.Username,
			Detail:    resource,
			Timestamp: time.Now().UTC(),
		})
	}
	return err
}
