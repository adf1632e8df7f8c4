package domain

import "time"

// Score bounds for a review.
const (
	ScoreMin = 1
	ScoreMax = 10
)

// ValidScore reports whether s is inside the allowed range.
func ValidScore(s int) bool {
	return s >= ScoreMin && s <= ScoreMax
}

// Review is one user's score and text for one title. At most one review
// exists per (title, author) pair; the backing store's unique index is the
// authoritative enforcement of that invariant.
type Review struct {
	ID             string    `json:"id"`
	TitleID        string    `json:"title_id"`
	AuthorID       string    `json:"-"`
	AuthorUsername string    `json:"author"`
	Text           string    `json:"text"`
	Score          int       `json:"score"`
	PubDate        time.Time `json:"pub_date"`
}

// Comment is a remark on a review.
type Comment struct {
	ID             string    `json:"id"`
	ReviewID       string    `json:"review_id"`
	AuthorID       string    `json:"-"`
	AuthorUsername string    `json:"author"`
	Text           string    `json:"text"`
	PubDate        time.Time `json:"pub_date"`
}

// AverageScore returns the arithmetic mean of the given reviews' scores, or
// nil for an empty set.
func AverageScore(reviews []Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Score
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}
