package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reviewhub/review-api/internal/core/domain"
)

const (
	categoryCollection = "categories"
	genreCollection    = "genres"
)

// slugDoc is the shared storage shape for categories and genres.
type slugDoc struct {
	Name string `bson:"name"`
	Slug string `bson:"slug"`
}

// slugRepository holds the logic shared by the two slug-keyed collections.
type slugRepository struct {
	coll     *mongo.Collection
	notFound error
}

func (r *slugRepository) create(ctx context.Context, name, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, slugDoc{Name: name, Slug: slug})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert %s: %w", r.coll.Name(), err)
	}
	return nil
}

func (r *slugRepository) findBySlug(ctx context.Context, slug string) (*slugDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc slugDoc
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}
	return &doc, nil
}

func (r *slugRepository) list(ctx context.Context, search string, page, limit int) ([]slugDoc, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.coll.Name(), err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "slug", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.coll.Name(), err)
	}
	defer cur.Close(ctx)

	var docs []slugDoc
	for cur.Next(ctx) {
		var doc slugDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", r.coll.Name(), err)
		}
		docs = append(docs, doc)
	}
	return docs, total, cur.Err()
}

func (r *slugRepository) delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return r.notFound
	}
	return nil
}

func (r *slugRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_slug"),
	})
	return err
}

// --- Categories ---

type CategoryRepository struct {
	slugRepository
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{slugRepository{
		coll:     db.Collection(categoryCollection),
		notFound: domain.ErrCategoryNotFound,
	}}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return r.create(ctx, c.Name, c.Slug)
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	doc, err := r.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &domain.Category{Name: doc.Name, Slug: doc.Slug}, nil
}

func (r *CategoryRepository) List(ctx context.Context, search string, page, limit int) ([]domain.Category, int64, error) {
	docs, total, err := r.list(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Category, len(docs))
	for i, d := range docs {
		out[i] = domain.Category{Name: d.Name, Slug: d.Slug}
	}
	return out, total, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, slug string) error {
	return r.delete(ctx, slug)
}

func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	return r.ensureIndexes(ctx)
}

// --- Genres ---

type GenreRepository struct {
	slugRepository
}

func NewGenreRepository(db *mongo.Database) *GenreRepository {
	return &GenreRepository{slugRepository{
		coll:     db.Collection(genreCollection),
		notFound: domain.ErrGenreNotFound,
	}}
}

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) error {
	return r.create(ctx, g.Name, g.Slug)
}

func (r *GenreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	doc, err := r.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &domain.Genre{Name: doc.Name, Slug: doc.Slug}, nil
}

func (r *GenreRepository) List(ctx context.Context, search string, page, limit int) ([]domain.Genre, int64, error) {
	docs, total, err := r.list(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Genre, len(docs))
	for i, d := range docs {
		out[i] = domain.Genre{Name: d.Name, Slug: d.Slug}
	}
	return out, total, nil
}

func (r *GenreRepository) Delete(ctx context.Context, slug string) error {
	return r.delete(ctx, slug)
}

func (r *GenreRepository) EnsureIndexes(ctx context.Context) error {
	return r.ensureIndexes(ctx)
}
