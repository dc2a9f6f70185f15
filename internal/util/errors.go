package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrQuestionNotFound = errors.New("question not found")

	ErrCourseExists = errors.New("course already exists")

	ErrInvalidRating = errors.New("invalid rating")

	// Upstream generator failures, classified by HTTP status:
	// 429 → ErrRateLimited, 5xx → ErrUpstreamUnavailable,
	// other 4xx → ErrUpstreamBadRequest.
	ErrRateLimited         = errors.New("generator rate limited")
	ErrUpstreamUnavailable = errors.New("generator unavailable")
	ErrUpstreamBadRequest  = errors.New("generator rejected request")

	ErrGenerationInProgress = errors.New("generation already in progress")
)
