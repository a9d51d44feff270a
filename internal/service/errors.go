package service

import "errors"

// Domain errors surfaced to handlers for status mapping.
var (
	// ErrInvalidDate is returned when a date parameter is not a valid
	// YYYY-MM-DD day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMoodScoreNotFound is returned when a referenced mood score
	// does not exist or belongs to another user.
	ErrMoodScoreNotFound = errors.New("mood score not found")

	// ErrRecommendationNotFound is returned when a referenced
	// recommendation does not exist or belongs to another user's data.
	ErrRecommendationNotFound = errors.New("recommendation not found")

	// ErrRatingWindowClosed is returned when feedback targets a
	// recommendation whose date falls outside the current Monday-start
	// week. Older recommendations are immutable for rating purposes.
	ErrRatingWindowClosed = errors.New("rating window closed")
)
