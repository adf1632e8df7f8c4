package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// CatalogService implements category, genre and title use-cases. Listing and
// retrieval are open to anonymous callers; every mutation is admin-gated.
type CatalogService struct {
	categories ports.CategoryRepository
	genres     ports.GenreRepository
	titles     ports.TitleRepository
	reviews    ports.ReviewRepository
	comments   ports.CommentRepository
	log        zerolog.Logger
}

func NewCatalogService(
	categories ports.CategoryRepository,
	genres ports.GenreRepository,
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		genres:     genres,
		titles:     titles,
		reviews:    reviews,
		comments:   comments,
		log:        log,
	}
}

// --- Categories ---

func (s *CatalogService) ListCategories(ctx context.Context, search string, page, limit int) ([]domain.Category, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.categories.List(ctx, search, page, limit)
}

func (s *CatalogService) CreateCategory(ctx context.Context, p domain.Principal, name, slug string) (*domain.Category, error) {
	if err := domain.Authorize(p, domain.ActionWriteCatalog, ""); err != nil {
		return nil, err
	}
	c := &domain.Category{Name: name, Slug: slug}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Str("slug", slug).Msg("category created")
	return c, nil
}

// DeleteCategory removes the category and detaches it from any titles that
// referenced it. Titles survive with no category.
func (s *CatalogService) DeleteCategory(ctx context.Context, p domain.Principal, slug string) error {
	if err := domain.Authorize(p, domain.ActionWriteCatalog, ""); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, slug); err != nil {
		return err
	}
	if err := s.titles.ClearCategory(ctx, slug); err != nil {
		return fmt.Errorf("delete category: detach titles: %w", err)
	}
	s.log.Info().Str("slug", slug).Msg("category deleted")
	return nil
}

// --- Genres ---

func (s *CatalogService) ListGenres(ctx context.Context, search string, page, limit int) ([]domain.Genre, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.genres.List(ctx, search, page, limit)
}

func (s *CatalogService) CreateGenre(ctx context.Context, p domain.Principal, name, slug string) (*domain.Genre, error) {
	if err := domain.Authorize(p, domain.ActionWriteCatalog, ""); err != nil {
		return nil, err
	}
	g := &domain.Genre{Name: name, Slug: slug}
	if err := s.genres.Create(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info().Str("slug", slug).Msg("genre created")
	return g, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, p domain.Principal, slug string) error {
	if err := domain.Authorize(p, domain.ActionWriteCatalog, ""); err != nil {
		return err
	}
	if err := s.genres.Delete(ctx, slug); err != nil {
		return err
	}
	if err := s.titles.RemoveGenre(ctx, slug); err != nil {
		return fmt.Errorf("delete genre: detach titles: %w", err)
	}
	s.log.Info().Str("slug", slug).Msg("genre deleted")
	return nil
}

// --- Titles ---

func (s *CatalogService) ListTitles(ctx context.Context, f ports.TitleFilter, page, limit int) (*ports.ListTitlesResult, error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.titles.List(ctx, f, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	for i := range items {
		if err := s.attachRating(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return &ports.ListTitlesResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id string) (*domain.Title, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRating(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) CreateTitle(ctx context.Context, p domain.Principal, in ports.TitleInput) (*domain.Title, error) {
	if err := domain.Authorize(p, domain.ActionWriteCatalog, ""); err != nil {
		return nil, err
	}
	if err := s.checkSlugs(ctx, in.CategorySlug, in.GenreSlugs); err != nil {
		return nil, err
	}
	t := &domain.Title{
		Name:         in.Name,
		Year:         in.Year,
		Description:  in.Description,
		CategorySlug: in.CategorySlug,
		GenreSlugs:   in.GenreSlugs,
	}
	created, err := s.titles.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}
	s.log.Info().Str("title_id", created.ID).Str("name", created.Name).Msg("title created")
	return created, nil
}

func (s *CatalogService) UpdateTitle(ctx context.Context, p domain.Principal, id string, patch ports.TitlePatch) (*domain.Title, error) {
	if err := domain.Authorize(p, domain.ActionWriteCatalog, ""); err != nil {
		return nil, err
	}
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Year != nil {
		t.Year = *patch.Year
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.CategorySlug != nil {
		if err := s.checkSlugs(ctx, *patch.CategorySlug, nil); err != nil {
			return nil, err
		}
		t.CategorySlug = *patch.CategorySlug
	}
	if patch.GenreSlugs != nil {
		if err := s.checkSlugs(ctx, "", *patch.GenreSlugs); err != nil {
			return nil, err
		}
		t.GenreSlugs = *patch.GenreSlugs
	}
	if err := s.titles.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}
	if err := s.attachRating(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTitle removes the title and cascades to its reviews and their
// comments.
func (s *CatalogService) DeleteTitle(ctx context.Context, p domain.Principal, id string) error {
	if err := domain.Authorize(p, domain.ActionWriteCatalog, ""); err != nil {
		return err
	}
	if _, err := s.titles.FindByID(ctx, id); err != nil {
		return err
	}
	reviewIDs, err := s.reviews.DeleteByTitle(ctx, id)
	if err != nil {
		return fmt.Errorf("delete title: cascade reviews: %w", err)
	}
	if len(reviewIDs) > 0 {
		if err := s.comments.DeleteByReviews(ctx, reviewIDs); err != nil {
			return fmt.Errorf("delete title: cascade comments: %w", err)
		}
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	s.log.Info().Str("title_id", id).Int("reviews_removed", len(reviewIDs)).Msg("title deleted")
	return nil
}

// attachRating computes the live average score for a title. Never cached; the
// value always reflects the current review set.
func (s *CatalogService) attachRating(ctx context.Context, t *domain.Title) error {
	avg, err := s.reviews.AverageScore(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("compute rating: %w", err)
	}
	t.Rating = avg
	return nil
}

// checkSlugs validates referenced category/genre slugs exist. Unknown slugs
// are a validation failure, not a 404: the title is the resource here.
func (s *CatalogService) checkSlugs(ctx context.Context, categorySlug string, genreSlugs []string) error {
	if categorySlug != "" {
		if _, err := s.categories.FindBySlug(ctx, categorySlug); err != nil {
			if err == domain.ErrCategoryNotFound {
				return domain.ErrUnknownCategory
			}
			return fmt.Errorf("check category: %w", err)
		}
	}
	for _, slug := range genreSlugs {
		if _, err := s.genres.FindBySlug(ctx, slug); err != nil {
			if err == domain.ErrGenreNotFound {
				return domain.ErrUnknownGenre
			}
			return fmt.Errorf("check genre: %w", err)
		}
	}
	return nil
}
