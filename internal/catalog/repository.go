package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles course, promo code and subscriber PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new catalog Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCourses returns all courses with their unexpired promo codes.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, price, image_url, course_url
		 FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	byID := map[int64]int{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Price, &c.ImageURL, &c.CourseURL); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		c.PromoCodes = []PromoCode{}
		byID[c.ID] = len(courses)
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}

	promoRows, err := r.pool.Query(ctx,
		`SELECT id, course_id, code, expires_at
		 FROM promo_codes WHERE expires_at > NOW() ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying promo codes: %w", err)
	}
	defer promoRows.Close()

	for promoRows.Next() {
		var p PromoCode
		var courseID int64
		if err := promoRows.Scan(&p.ID, &courseID, &p.Code, &p.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning promo code: %w", err)
		}
		if idx, ok := byID[courseID]; ok {
			courses[idx].PromoCodes = append(courses[idx].PromoCodes, p)
		}
	}
	if err := promoRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating promo codes: %w", err)
	}

	return courses, nil
}

// GetCourse returns one course or ErrCourseNotFound.
func (r *Repository) GetCourse(ctx context.Context, id int64) (*Course, error) {
	var c Course
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, price, image_url, course_url FROM courses WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Price, &c.ImageURL, &c.CourseURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("querying course %d: %w", id, err)
	}
	return &c, nil
}

// InsertPromo attaches a promo code to a course.
func (r *Repository) InsertPromo(ctx context.Context, courseID int64, code string, expiresAt time.Time) (*PromoCode, error) {
	p := PromoCode{Code: code, ExpiresAt: expiresAt}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO promo_codes (course_id, code, expires_at)
		 VALUES ($1, $2, $3) RETURNING id`,
		courseID, code, expiresAt).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting promo code: %w", err)
	}
	return &p, nil
}

// DeletePromos removes all promo codes of a course. Returns ErrNoActivePromo
// when the course had none.
func (r *Repository) DeletePromos(ctx context.Context, courseID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promo_codes WHERE course_id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("deleting promo codes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActivePromo
	}
	return nil
}

// InsertSubscriber stores a newsletter signup. Returns ErrDuplicateSubscriber
// when the email is already on the list.
func (r *Repository) InsertSubscriber(ctx context.Context, email string) (*Subscriber, error) {
	s := Subscriber{Email: email}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subscribers (email) VALUES ($1) RETURNING id, created_at`,
		email).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSubscriber
		}
		return nil, fmt.Errorf("inserting subscriber: %w", err)
	}
	return &s, nil
}

// SeedCourses inserts the demo catalog, skipping titles that already exist.
func (r *Repository) SeedCourses(ctx context.Context, courses []Course) error {
	for _, c := range courses {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO courses (title, price, image_url, course_url)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (title) DO NOTHING`,
			c.Title, c.Price, c.ImageURL, c.CourseURL)
		if err != nil {
			return fmt.Errorf("seeding course %q: %w", c.Title, err)
		}
	}
	return nil
}
