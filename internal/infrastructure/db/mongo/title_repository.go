package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

const titleCollection = "titles"

type TitleRepository struct {
	coll *mongo.Collection
}

func NewTitleRepository(db *mongo.Database) *TitleRepository {
	return &TitleRepository{coll: db.Collection(titleCollection)}
}

type titleDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Year         int                `bson:"year"`
	Description  string             `bson:"description,omitempty"`
	CategorySlug string             `bson:"category_slug,omitempty"`
	GenreSlugs   []string           `bson:"genre_slugs,omitempty"`
}

func (d titleDoc) toDomain() *domain.Title {
	genres := d.GenreSlugs
	if genres == nil {
		genres = []string{}
	}
	return &domain.Title{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Year:         d.Year,
		Description:  d.Description,
		CategorySlug: d.CategorySlug,
		GenreSlugs:   genres,
	}
}

func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := titleDoc{
		Name:         t.Name,
		Year:         t.Year,
		Description:  t.Description,
		CategorySlug: t.CategorySlug,
		GenreSlugs:   t.GenreSlugs,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert title: %w", err)
	}
	created := *t
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	if created.GenreSlugs == nil {
		created.GenreSlugs = []string{}
	}
	return &created, nil
}

func (r *TitleRepository) FindByID(ctx context.Context, id string) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTitleNotFound
	}
	var doc titleDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TitleRepository) List(ctx context.Context, f ports.TitleFilter, page, limit int) ([]domain.Title, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.CategorySlug != "" {
		filter["category_slug"] = f.CategorySlug
	}
	if f.GenreSlug != "" {
		filter["genre_slugs"] = f.GenreSlug
	}
	if f.Name != "" {
		filter["name"] = bson.M{"$regex": f.Name, "$options": "i"}
	}
	if f.Year != 0 {
		filter["year"] = f.Year
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	defer cur.Close(ctx)

	var titles []domain.Title
	for cur.Next(ctx) {
		var doc titleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode title: %w", err)
		}
		titles = append(titles, *doc.toDomain())
	}
	return titles, total, cur.Err()
}

func (r *TitleRepository) Update(ctx context.Context, t *domain.Title) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return domain.ErrTitleNotFound
	}
	update := bson.M{"$set": bson.M{
		"name":          t.Name,
		"year":          t.Year,
		"description":   t.Description,
		"category_slug": t.CategorySlug,
		"genre_slugs":   t.GenreSlugs,
	}}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

func (r *TitleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTitleNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

// ClearCategory detaches a deleted category from every title referencing it.
func (r *TitleRepository) ClearCategory(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"category_slug": slug},
		bson.M{"$unset": bson.M{"category_slug": ""}},
	)
	if err != nil {
		return fmt.Errorf("clear category: %w", err)
	}
	return nil
}

// RemoveGenre pulls a deleted genre slug out of every title carrying it.
func (r *TitleRepository) RemoveGenre(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"genre_slugs": slug},
		bson.M{"$pull": bson.M{"genre_slugs": slug}},
	)
	if err != nil {
		return fmt.Errorf("remove genre: %w", err)
	}
	return nil
}

func (r *TitleRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category_slug", Value: 1}}},
		{Keys: bson.D{{Key: "genre_slugs", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
