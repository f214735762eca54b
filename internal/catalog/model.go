package catalog

import "time"

// Course is a promoted crash course with its currently active promo codes.
type Course struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	Price      float64     `json:"price"`
	ImageURL   string      `json:"image_url"`
	CourseURL  string      `json:"course_url"`
	PromoCodes []PromoCode `json:"promo_codes"`
}

// PromoCode is a time-limited discount code attached to one course.
type PromoCode struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePromoRequest is the body of POST /courses/{courseID}/promo.
// An empty Code asks the server to generate one.
type CreatePromoRequest struct {
	Code      string `json:"code" validate:"omitempty,max=64"`
	DaysValid int    `json:"days_valid" validate:"omitempty,min=1,max=365"`
}

// DefaultPromoDaysValid applies when the request omits days_valid.
const DefaultPromoDaysValid = 5

// SubscribeRequest is the body of POST /newsletter.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}
