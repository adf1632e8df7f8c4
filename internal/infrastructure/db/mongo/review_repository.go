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
)

const reviewCollection = "reviews"

type ReviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(reviewCollection)}
}

type reviewDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	TitleID        string             `bson:"title_id"`
	AuthorID       string             `bson:"author_id"`
	AuthorUsername string             `bson:"author_username"`
	Text           string             `bson:"text"`
	Score          int                `bson:"score"`
	PubDate        int64              `bson:"pub_date"`
}

func (d reviewDoc) toDomain() *domain.Review {
	return &domain.Review{
		ID:             d.ID.Hex(),
		TitleID:        d.TitleID,
		AuthorID:       d.AuthorID,
		AuthorUsername: d.AuthorUsername,
		Text:           d.Text,
		Score:          d.Score,
		PubDate:        unixToTime(d.PubDate),
	}
}

// Create inserts a review. A duplicate-key error from the unique
// (title, author) index is the authoritative duplicate rejection: when two
// first-time reviews race, the index decides and the loser gets
// domain.ErrReviewExists.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := reviewDoc{
		TitleID:        review.TitleID,
		AuthorID:       review.AuthorID,
		AuthorUsername: review.AuthorUsername,
		Text:           review.Text,
		Score:          review.Score,
		PubDate:        review.PubDate.Unix(),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrReviewExists
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	created := *review
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReviewNotFound
	}
	var doc reviewDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) FindByTitleAndAuthor(ctx context.Context, titleID, authorID string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reviewDoc
	err := r.coll.FindOne(ctx, bson.M{"title_id": titleID, "author_id": authorID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) ListByTitle(ctx context.Context, titleID string, page, limit int) ([]domain.Review, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"title_id": titleID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "pub_date", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer cur.Close(ctx)

	var reviews []domain.Review
	for cur.Next(ctx) {
		var doc reviewDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode review: %w", err)
		}
		reviews = append(reviews, *doc.toDomain())
	}
	return reviews, total, cur.Err()
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(review.ID)
	if err != nil {
		return domain.ErrReviewNotFound
	}
	update := bson.M{"$set": bson.M{
		"text":  review.Text,
		"score": review.Score,
	}}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrReviewNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// AverageScore computes the mean score for a title with a single aggregation.
// Nil when the title has no reviews.
func (r *ReviewRepository) AverageScore(ctx context.Context, titleID string) (*float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"title_id": titleID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"rating": bson.M{"$avg": "$score"},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}
	defer cur.Close(ctx)

	var result struct {
		Rating float64 `bson:"rating"`
	}
	if !cur.Next(ctx) {
		return nil, cur.Err()
	}
	if err := cur.Decode(&result); err != nil {
		return nil, fmt.Errorf("average score: decode: %w", err)
	}
	return &result.Rating, nil
}

// DeleteByTitle removes all reviews for a title and returns their ids so the
// caller can cascade to comments.
func (r *ReviewRepository) DeleteByTitle(ctx context.Context, titleID string) ([]string, error) {
	return r.deleteMany(ctx, bson.M{"title_id": titleID})
}

// DeleteByAuthor removes all reviews written by an account and returns their
// ids so the caller can cascade to comments.
func (r *ReviewRepository) DeleteByAuthor(ctx context.Context, authorID string) ([]string, error) {
	return r.deleteMany(ctx, bson.M{"author_id": authorID})
}

func (r *ReviewRepository) deleteMany(ctx context.Context, filter bson.M) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("collect review ids: %w", err)
	}
	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			cur.Close(ctx)
			return nil, fmt.Errorf("decode review id: %w", err)
		}
		ids = append(ids, doc.ID.Hex())
	}
	cur.Close(ctx)
	if err := cur.Err(); err != nil {
		return nil, err
	}

	if _, err := r.coll.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("delete reviews: %w", err)
	}
	return ids, nil
}

// EnsureIndexes creates the compound unique index that enforces
// one-review-per-(title, author).
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title_id", Value: 1}, {Key: "author_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_title_author"),
		},
		{Keys: bson.D{{Key: "title_id", Value: 1}, {Key: "pub_date", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
