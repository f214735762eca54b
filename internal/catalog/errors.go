package catalog

import "errors"

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrNoActivePromo       = errors.New("no active promo found")
	ErrDuplicateSubscriber = errors.New("email already subscribed")
)
