package domain

import "errors"

var (
	// Identity errors.
	ErrAccountNotFound  = errors.New("account not found")
	ErrUsernameTaken    = errors.New("username: already taken")
	ErrEmailTaken       = errors.New("email: already registered")
	ErrUsernameReserved = errors.New("username: \"me\" is reserved")
	ErrInvalidRole      = errors.New("role: must be one of user, moderator, admin")
	ErrInvalidCode      = errors.New("confirmation_code: invalid")
	ErrCodeDelivery     = errors.New("confirmation code delivery failed")
	ErrSignupThrottled  = errors.New("too many signup requests for this email")

	// Authorization errors. ErrUnauthenticated means no valid credential was
	// presented; ErrForbidden means the credential was valid but the tier or
	// ownership check failed. The two must never be collapsed.
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")

	// Catalog errors.
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrSlugTaken        = errors.New("slug: already taken")
	ErrUnknownCategory  = errors.New("category: unknown slug")
	ErrUnknownGenre     = errors.New("genre: unknown slug")

	// Review/comment errors.
	ErrReviewNotFound  = errors.New("review not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrReviewExists    = errors.New("review for this title already exists")
	ErrScoreOutOfRange = errors.New("score: must be between 1 and 10")
)
