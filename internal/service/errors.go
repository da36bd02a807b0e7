package service

import "errors"

var (
	// ErrPromotionNotFound is returned when no promotion has the requested promotion_id
	ErrPromotionNotFound = errors.New("promotion not found")

	// ErrInvalidPromotion is returned when the store rejects promotion data
	// (constraint violation, out-of-range number, invalid characters)
	ErrInvalidPromotion = errors.New("invalid promotion data")
)
