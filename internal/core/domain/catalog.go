package domain

// Category classifies a title (a title has zero or one category).
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Genre tags a title (a title has zero or more genres).
type Genre struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is the reviewable catalog item.
type Title struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description,omitempty"`
	// CategorySlug is empty when the category was deleted or never set.
	CategorySlug string   `json:"category,omitempty"`
	GenreSlugs   []string `json:"genres"`
	// Rating is the arithmetic mean of review scores, computed on read.
	// Nil when the title has no reviews.
	Rating *float64 `json:"rating"`
}
