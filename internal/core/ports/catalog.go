package ports

import (
	"context"

	"github.com/reviewhub/review-api/internal/core/domain"
)

// CategoryRepository stores categories. Slug is the natural key.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context, search string, page, limit int) ([]domain.Category, int64, error)
	Delete(ctx context.Context, slug string) error
}

// GenreRepository stores genres. Slug is the natural key.
type GenreRepository interface {
	Create(ctx context.Context, g *domain.Genre) error
	FindBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	List(ctx context.Context, search string, page, limit int) ([]domain.Genre, int64, error)
	Delete(ctx context.Context, slug string) error
}

// TitleFilter narrows a title listing. Zero values mean "no filter".
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
}

// TitleRepository stores titles. Ratings are not stored; the service attaches
// them from the review side on read.
type TitleRepository interface {
	Create(ctx context.Context, t *domain.Title) (*domain.Title, error)
	FindByID(ctx context.Context, id string) (*domain.Title, error)
	List(ctx context.Context, f TitleFilter, page, limit int) ([]domain.Title, int64, error)
	Update(ctx context.Context, t *domain.Title) error
	Delete(ctx context.Context, id string) error
	// ClearCategory detaches a deleted category from all titles referencing it.
	ClearCategory(ctx context.Context, slug string) error
	// RemoveGenre removes a deleted genre slug from all titles carrying it.
	RemoveGenre(ctx context.Context, slug string) error
}

// TitleInput carries title create/update fields. For updates, nil pointer
// fields are left unchanged.
type TitleInput struct {
	Name         string
	Year         int
	Description  string
	CategorySlug string
	GenreSlugs   []string
}

type TitlePatch struct {
	Name         *string
	Year         *int
	Description  *string
	CategorySlug *string
	GenreSlugs   *[]string
}

// ListTitlesResult is a page of titles with ratings attached.
type ListTitlesResult struct {
	Items []domain.Title
	Total int64
	Page  int
	Limit int
}

// CatalogService implements category, genre and title use-cases.
// Reads are open to everyone; writes are admin-gated.
type CatalogService interface {
	ListCategories(ctx context.Context, search string, page, limit int) ([]domain.Category, int64, error)
	CreateCategory(ctx context.Context, p domain.Principal, name, slug string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, p domain.Principal, slug string) error

	ListGenres(ctx context.Context, search string, page, limit int) ([]domain.Genre, int64, error)
	CreateGenre(ctx context.Context, p domain.Principal, name, slug string) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, p domain.Principal, slug string) error

	ListTitles(ctx context.Context, f TitleFilter, page, limit int) (*ListTitlesResult, error)
	GetTitle(ctx context.Context, id string) (*domain.Title, error)
	CreateTitle(ctx context.Context, p domain.Principal, in TitleInput) (*domain.Title, error)
	UpdateTitle(ctx context.Context, p domain.Principal, id string, patch TitlePatch) (*domain.Title, error)
	DeleteTitle(ctx context.Context, p domain.Principal, id string) error
}
