package catalog

import (
	"context"
	"fmt"
	"time"
)

// Service holds catalog business logic on top of the repository.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a new catalog Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListCourses returns the catalog with active promo codes only.
func (s *Service) ListCourses(ctx context.Context) ([]Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []Course{}
	}
	return courses, nil
}

// CreatePromo attaches a promo code to a course. An empty requested code is
// replaced by a generated "CCC-{courseID}-{unix}" code; a zero DaysValid
// falls back to the default validity.
func (s *Service) CreatePromo(ctx context.Context, courseID int64, req *CreatePromoRequest) (*PromoCode, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	code := req.Code
	if code == "" {
		code = fmt.Sprintf("CCC-%d-%d", courseID, now.Unix())
	}

	days := req.DaysValid
	if days == 0 {
		days = DefaultPromoDaysValid
	}

	return s.repo.InsertPromo(ctx, courseID, code, now.AddDate(0, 0, days))
}

// DeletePromos removes every promo code of a course.
func (s *Service) DeletePromos(ctx context.Context, courseID int64) error {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return err
	}
	return s.repo.DeletePromos(ctx, courseID)
}

// Subscribe adds an email to the newsletter list.
func (s *Service) Subscribe(ctx context.Context, email string) (*Subscriber, error) {
	return s.repo.InsertSubscriber(ctx, email)
}
